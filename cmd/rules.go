package cmd

import (
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage the vulnerability rules on the server",
	Long: `List, inspect and manage the rule catalog of a running mitigationDB server.
Write operations require an authenticated admin session (mitigationdb login).`,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
