package cmd

import (
	"github.com/blacktop/skyframe/internal/logutil"
	"github.com/blacktop/skyframe/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive timeline and search browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.open()
			if err != nil {
				return err
			}

			defer logutil.Silence()()

			model := tui.New(src.Name(), src.Timeline, src.Search)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
}
