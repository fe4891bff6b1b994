package cmd

import (
	"fmt"

	"github.com/blacktop/skyframe/internal/render"
	"github.com/spf13/cobra"
)

func newTimelineCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "timeline",
		Aliases: []string{"home"},
		Short:   "Show image posts from your home timeline",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.open()
			if err != nil {
				return err
			}

			posts, err := src.Timeline(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}

			out := cmd.OutOrStdout()
			return opts.formatter(out, render.EmptyTimelineMessage).Format(out, posts)
		},
	}
}
