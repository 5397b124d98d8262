package cmd

import (
	"github.com/spf13/cobra"

	"crossback/internal/render"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show buying power of the configured brokerage account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		acct, err := newBroker(cfg).GetAccount(cmd.Context())
		if err != nil {
			return err
		}
		return render.WriteAccount(cmd.OutOrStdout(), acct)
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
}
