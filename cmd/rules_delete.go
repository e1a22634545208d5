package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rulesDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a rule from the server",
	Long: `Permanently removes a rule. Prefer setting a retired date via an update
when the rule's history should stay queryable with as-of listings.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing rule ID: %w", err)
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		if err := cli.DeleteRule(cmd.Context(), id); err != nil {
			return logError(err, "", fmt.Sprintf("failed to delete rule %d", id))
		}

		logSuccess("deleted rule %d", id)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesDeleteCmd)
}
