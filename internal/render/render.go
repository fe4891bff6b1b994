// Package render prints post lists for the CLI.
package render

import (
	"io"
	"strings"

	"github.com/blacktop/skyframe/internal/skyframe"
)

// EmptySearchMessage is shown when a search has nothing to display.
const EmptySearchMessage = "Search for posts on Bluesky"

// EmptyTimelineMessage is shown when the timeline has no image posts.
const EmptyTimelineMessage = "No image posts in your timeline"

// Formatter writes a list of posts.
type Formatter interface {
	Format(w io.Writer, posts []skyframe.Post) error
}

// Preview returns at most n lines of text, marking truncation with an ellipsis.
func Preview(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" || n <= 0 {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.TrimRight(strings.Join(lines[:n], "\n"), " ") + "…"
}

// Handle formats an author handle for display.
func Handle(a skyframe.Author) string {
	if a.Handle == "" {
		return ""
	}
	return "@" + strings.TrimPrefix(a.Handle, "@")
}

// SourceTitle capitalises a source name for display. An empty name is the
// default source, Bluesky.
func SourceTitle(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return "Bluesky"
	}
	return strings.ToUpper(source[:1]) + source[1:]
}

// SearchPrompt is the empty-search message for source.
func SearchPrompt(source string) string {
	return "Search for posts on " + SourceTitle(source)
}
