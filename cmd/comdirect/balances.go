package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBalancesCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "List account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}

			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}

			balances, err := client.AccountBalances(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tBALANCE\tAVAILABLE")
			for _, b := range balances {
				fmt.Fprintf(w, "%s\t%s %s\t%s %s\n",
					b.AccountID,
					b.Balance.Value, b.Balance.Unit,
					b.AvailableCashAmount.Value, b.AvailableCashAmount.Unit,
				)
			}
			return w.Flush()
		},
	}
}
