package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/logging"
	"github.com/breardon2011/mitigationDB/internal/source"
	"github.com/breardon2011/mitigationDB/pkg/client"
)

var rulesLoadCmd = &cobra.Command{
	Use:   "load FILE",
	Short: "Upload rules from a YAML file to the server",
	Long: `Reads rule definitions from a local YAML file and upserts them on the
server by name. Existing rules keep their ID and effective date.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher, err := source.NewFileFetcher(config.FileSourceConfig{Path: args[0]})
		if err != nil {
			return err
		}

		rules, err := fetcher.Fetch(cmd.Context(), logging.NewZLogger(log.Logger))
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		existing, err := cli.ListRules(cmd.Context(), client.ListRulesOpts{All: true})
		if err != nil {
			return fmt.Errorf("listing existing rules: %w", err)
		}
		byName := make(map[string]int64, len(existing))
		for _, rule := range existing {
			byName[rule.Name] = rule.ID
		}

		var created, updated int
		for _, rule := range rules {
			if id, ok := byName[rule.Name]; ok {
				rule.ID = id
				if _, err := cli.UpdateRule(cmd.Context(), rule); err != nil {
					return logError(err, "", fmt.Sprintf("failed to update rule %q", rule.Name))
				}
				updated++
			} else {
				if _, err := cli.CreateRule(cmd.Context(), rule); err != nil {
					return logError(err, "", fmt.Sprintf("failed to create rule %q", rule.Name))
				}
				created++
			}
		}

		logSuccess("loaded %d rules (%d created, %d updated)", len(rules), created, updated)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesLoadCmd)
}
