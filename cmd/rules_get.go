package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var rulesGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print a single rule as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing rule ID: %w", err)
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		rule, err := cli.GetRule(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("retrieving rule: %w", err)
		}

		return yaml.NewEncoder(os.Stdout).Encode(rule)
	},
}

func init() {
	rulesCmd.AddCommand(rulesGetCmd)
}
