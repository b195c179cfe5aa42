package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ledgerlane/comdirect/pkg/banksdk"
)

type rootFlags struct {
	baseURL      string
	clientID     string
	clientSecret string
	username     string
	password     string
	tokenFile    string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "comdirect",
		Short: "comdirect banking API client",
		Long: `comdirect drives the comdirect banking API from the command line:
login performs the full TAN flow, balances and transactions read account
data, logout revokes the stored credential.

Credentials can also come from the environment: COMDIRECT_CLIENT_ID,
COMDIRECT_CLIENT_SECRET, COMDIRECT_USERNAME, COMDIRECT_PASSWORD.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.baseURL, "base-url", "https://api.comdirect.de", "API base URL (point at a bankmock instance for testing)")
	pf.StringVar(&flags.clientID, "client-id", os.Getenv("COMDIRECT_CLIENT_ID"), "OAuth client id")
	pf.StringVar(&flags.clientSecret, "client-secret", os.Getenv("COMDIRECT_CLIENT_SECRET"), "OAuth client secret")
	pf.StringVar(&flags.username, "username", os.Getenv("COMDIRECT_USERNAME"), "online banking username")
	pf.StringVar(&flags.password, "password", os.Getenv("COMDIRECT_PASSWORD"), "online banking password")
	pf.StringVar(&flags.tokenFile, "token-file", defaultTokenFile(), "where to persist the token pair")

	rootCmd.AddCommand(newLoginCommand(flags))
	rootCmd.AddCommand(newBalancesCommand(flags))
	rootCmd.AddCommand(newTransactionsCommand(flags))
	rootCmd.AddCommand(newLogoutCommand(flags))

	return rootCmd
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "comdirect-tokens.json"
	}
	return filepath.Join(dir, "comdirect", "tokens.json")
}

// newClient builds an SDK client from the shared flags. TAN progress is
// reported on stderr so piping stdout stays clean.
func newClient(flags *rootFlags) (*banksdk.Client, error) {
	return banksdk.New(banksdk.Config{
		ClientID:     flags.clientID,
		ClientSecret: flags.clientSecret,
		Username:     flags.username,
		Password:     flags.password,
		BaseURL:      flags.baseURL,
		TokenFile:    flags.tokenFile,
		OnTANStatus: func(status banksdk.TANStatus, info banksdk.TANStatusInfo) {
			switch status {
			case banksdk.TANStatusRequested:
				fmt.Fprintf(os.Stderr, "TAN challenge requested (%s), confirm it in your banking app\n", info.Kind)
			case banksdk.TANStatusPending:
				if info.Elapsed > 0 {
					fmt.Fprintf(os.Stderr, "still waiting for TAN approval (%s left)\n", info.Remaining)
				}
			case banksdk.TANStatusApproved:
				fmt.Fprintln(os.Stderr, "TAN approved")
			case banksdk.TANStatusTimeout:
				fmt.Fprintln(os.Stderr, "TAN approval timed out")
			}
		},
		OnReauthRequired: func(reason banksdk.ReauthReason) {
			fmt.Fprintf(os.Stderr, "re-authentication required (%s), run 'comdirect login'\n", reason)
		},
	})
}
