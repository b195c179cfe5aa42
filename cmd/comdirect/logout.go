package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLogoutCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}

			// Close drops the in-memory credential and removes the token
			// file.
			if err := client.Close(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "logged out, stored tokens removed")
			return nil
		},
	}
}
