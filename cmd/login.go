package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check that the configured credentials can sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.open()
			if err != nil {
				return err
			}
			if err := src.Login(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", src.Name(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in to %s\n", src.Name())
			return nil
		},
	}
}
