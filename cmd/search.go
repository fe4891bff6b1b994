package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/blacktop/skyframe/internal/render"
	"github.com/spf13/cobra"
)

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Search for posts with images",
		Example: `  skyframe search cats
  skyframe search "#photography"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("search query is required")
			}

			src, err := opts.open()
			if err != nil {
				return err
			}

			posts, err := src.Search(cmd.Context(), query)
			if err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}

			out := cmd.OutOrStdout()
			return opts.formatter(out, render.SearchPrompt(src.Name())).Format(out, posts)
		},
	}
}
