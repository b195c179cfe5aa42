package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTransactionsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <account-id>",
		Short: "List transactions for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}

			if err := client.Authenticate(cmd.Context()); err != nil {
				return err
			}

			txns, err := client.AccountTransactions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tSTATUS\tAMOUNT\tPURPOSE")
			for _, t := range txns {
				fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
					t.BookingDate, t.BookingStatus,
					t.Amount.Value, t.Amount.Unit,
					t.RemittanceInfo,
				)
			}
			return w.Flush()
		},
	}
}
