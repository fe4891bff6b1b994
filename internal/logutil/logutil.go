// Package logutil holds the process-wide logger used by the clients and
// commands.
package logutil

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	logger           = log.NewWithOptions(out, log.Options{Prefix: "skyframe", ReportTimestamp: true, Level: log.InfoLevel})
)

// SetVerbose switches debug output on or off.
func SetVerbose(enable bool) {
	if enable {
		logger.SetLevel(log.DebugLevel)
		return
	}
	logger.SetLevel(log.InfoLevel)
}

// SetOutput redirects log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	logger.SetOutput(w)
}

// Silence drops all log output until the returned func is called, which
// restores the previous writer. The interactive browser uses it to keep log
// lines off the alternate screen.
func Silence() (restore func()) {
	mu.Lock()
	prev := out
	mu.Unlock()

	SetOutput(io.Discard)
	return func() { SetOutput(prev) }
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
}
