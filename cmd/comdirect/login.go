package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the bank (triggers a TAN challenge)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}

			if err := client.Authenticate(cmd.Context()); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "login successful, tokens stored")
			return nil
		},
	}
}
