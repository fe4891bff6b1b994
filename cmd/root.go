/*
Copyright © 2025 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/blacktop/skyframe/internal/config"
	"github.com/blacktop/skyframe/internal/logutil"
	"github.com/blacktop/skyframe/internal/render"
	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// newSource builds the client for the selected source. Tests replace it.
var newSource = func(cfg *config.Config, name string) (skyframe.Source, error) {
	return cfg.NewSource(name)
}

type rootOptions struct {
	configFile string
	source     string
	verbose    bool
	jsonOutput bool
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "skyframe",
		Short: "Browse image posts from Bluesky",
		Long: "skyframe shows the image posts from your Bluesky home timeline and " +
			"lets you search Bluesky for posts with pictures. Credentials come from " +
			"BLUESKY_IDENTIFIER and BLUESKY_PASSWORD, a .env file or config.yaml.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  skyframe timeline
  skyframe search "#photography"
  skyframe --json search sunset | jq '.[].images[0].fullsize'
  skyframe browse`,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a config file (default ./config.yaml or ~/.config/skyframe/config.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.source, "source", "s", "", "Network to read from (bluesky, mastodon)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print posts as JSON")
	cmd.PersistentFlags().SortFlags = false

	cmd.AddCommand(
		newTimelineCommand(opts),
		newSearchCommand(opts),
		newLoginCommand(opts),
		newBrowseCommand(opts),
		newCompletionCommand(),
	)

	return cmd
}

// open loads configuration and constructs the selected source. Missing
// credentials are reported here but only fail once a login is attempted.
func (o *rootOptions) open() (skyframe.Source, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	logutil.SetVerbose(o.verbose || cfg.Verbose)

	name := cfg.Source
	if o.source != "" {
		name = strings.ToLower(strings.TrimSpace(o.source))
	}

	src, err := newSource(cfg, name)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(name); err != nil {
		logutil.Errorf("%v", err)
	}
	logutil.Debugf("using source %s", src.Name())
	return src, nil
}

func (o *rootOptions) formatter(out io.Writer, empty string) render.Formatter {
	if o.jsonOutput {
		return render.NewJSON()
	}
	return render.NewTerminal(isTerminal(out), empty)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
