package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/breardon2011/mitigationDB/pkg/client"
)

var (
	rulesListAll  bool
	rulesListAsOf string
)

var rulesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List rules on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		asOf, err := parseAsOf(rulesListAsOf)
		if err != nil {
			return err
		}

		log.Debug().Msg("Retrieving rules...")
		rules, err := cli.ListRules(cmd.Context(), client.ListRulesOpts{
			All:  rulesListAll,
			AsOf: asOf,
		})
		if err != nil {
			return fmt.Errorf("listing rules: %w", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Category", "Conditions", "Effective", "Retired"})

		now := time.Now()
		for _, rule := range rules {
			retired := ""
			if rule.RetiredDate != nil {
				retired = rule.RetiredDate.Format(time.DateOnly)
			}

			name := rule.Name
			if rule.ActiveAt(now) {
				name = color.New(color.Bold).Sprint(name)
			} else {
				name = color.New(color.Faint).Sprint(name)
			}

			t.AppendRow(table.Row{
				rule.ID,
				name,
				rule.Category,
				len(rule.Conditions),
				rule.EffectiveDate.Format(time.DateOnly),
				retired,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)

	rulesListCmd.Flags().BoolVarP(&rulesListAll, "all", "a", false,
		"Include retired and not-yet-effective rules")
	rulesListCmd.Flags().StringVar(&rulesListAsOf, "as-of", "",
		"List the rules active at this RFC3339 instant instead of now")
}
