package cmd

import (
	"github.com/spf13/cobra"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and trigger background tasks",
	Long:  `List the server's background tasks (like the rule source sync), trigger them manually and read their logs. Requires an authenticated admin session (mitigationdb login).`,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}
