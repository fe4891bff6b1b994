package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/charmbracelet/lipgloss"
)

var (
	authorStyle = lipgloss.NewStyle().Bold(true)
	handleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	imageStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// TerminalFormatter prints one card per post.
type TerminalFormatter struct {
	color bool
	empty string
}

// NewTerminal creates a terminal formatter. empty is printed when there are
// no posts. Set color=true for styled output.
func NewTerminal(color bool, empty string) *TerminalFormatter {
	return &TerminalFormatter{color: color, empty: empty}
}

// Format writes posts to w.
func (f *TerminalFormatter) Format(w io.Writer, posts []skyframe.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, f.empty)
		return err
	}

	for i, post := range posts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := f.writeCard(w, post); err != nil {
			return err
		}
	}
	return nil
}

func (f *TerminalFormatter) writeCard(w io.Writer, post skyframe.Post) error {
	var b strings.Builder

	b.WriteString(f.style(authorStyle, post.Author.Name()))
	if h := Handle(post.Author); h != "" && post.Author.DisplayName != "" {
		b.WriteString(" " + f.style(handleStyle, h))
	}
	b.WriteByte('\n')

	if text := Preview(post.Text, 2); text != "" {
		for _, line := range strings.Split(text, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if len(post.Images) > 0 {
		img := post.Images[0]
		line := fmt.Sprintf("image %s (aspect %.2f)", img.Thumb, img.AspectRatio())
		if n := len(post.Images); n > 1 {
			line += fmt.Sprintf(" +%d more", n-1)
		}
		b.WriteString("  " + f.style(imageStyle, line) + "\n")
	}

	if post.URI != "" {
		b.WriteString("  " + f.style(dimStyle, post.URI) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TerminalFormatter) style(s lipgloss.Style, text string) string {
	if !f.color {
		return text
	}
	return s.Render(text)
}
