package cmd

import (
	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the evaluation audit trail",
	Long:  `View the server's audit records of past evaluations. Requires an authenticated admin session (mitigationdb login).`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
