package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/service"
	"github.com/breardon2011/mitigationDB/pkg/client"
)

var (
	whyObservationPath string
	whyAsOf            string
	whyRuleFilter      string
)

var whyCmd = &cobra.Command{
	Use:   "why",
	Short: "Explain why an observation matches (or does not match) rules",
	Long: `Evaluates an observation and returns a detailed trace of every rule,
	condition by condition. Useful for debugging why a property is flagged
	with a specific vulnerability, or why an expected rule did not hit.

With --server set, the trace is requested from the remote server, which
requires an admin session (mitigationdb login). Otherwise the rules are
loaded locally from the --config file.`,
	Example: `  # why is this property flagged?
  mitigationdb why -o property.json

  # why is it not matching the 'Vegetation Near Window' rule?
  mitigationdb why -o property.json --rule "Vegetation Near Window"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		observation, err := readObservation(whyObservationPath)
		if err != nil {
			return err
		}
		asOf, err := parseAsOf(whyAsOf)
		if err != nil {
			return err
		}

		var trace *core.EvaluationTrace
		if viper.GetString(ServerAddrKey) != "" || f.RemoteAddr != "" {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			var correlation string
			trace, correlation, err = cli.ExplainTrace(cmd.Context(), observation, client.EvaluateOptions{AsOf: asOf})
			if err != nil {
				return logError(err, correlation, "explain failed")
			}
		} else {
			svc, err := f.GetLocalService(cmd.Context())
			if err != nil {
				return err
			}
			trace, err = svc.Explain(cmd.Context(), service.ExplainRequest{
				Observation: observation,
				AsOf:        asOf,
			})
			if err != nil {
				return logError(err, "", "explain failed")
			}
		}

		printTrace(trace)
		return nil
	},
}

func printTrace(trace *core.EvaluationTrace) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s\n", bold("Evaluation Trace"))
	fmt.Println(faint("---------------------------------------------------"))

	for _, res := range trace.Outcomes {
		if whyRuleFilter != "" && res.RuleName != whyRuleFilter {
			continue
		}

		var icon string
		switch res.Status {
		case core.OutcomeMatched:
			icon = green("✔")
		case core.OutcomeSkipped:
			icon = yellow("~")
		default:
			icon = red("✖")
		}

		fmt.Printf("%s Rule: %s %s\n", icon, bold(res.RuleName), faint(fmt.Sprintf("(#%d)", res.RuleID)))
		if res.Status == core.OutcomeSkipped && res.Reason != "" {
			fmt.Printf("  %s\n", yellow("skipped: "+res.Reason))
		}

		for _, cond := range res.Conditions {
			condIcon := red("✖")
			if cond.Matched {
				condIcon = green("✔")
			}
			fmt.Printf("    %s %s\n", condIcon, cond.Expression)

			if cond.Reason != "" {
				reason := cond.Reason
				if cond.Matched {
					reason = faint(reason)
				} else {
					reason = yellow(reason)
				}
				fmt.Printf("      ↳ %s\n", reason)
			}
		}

		fmt.Println()
	}

	fmt.Println("---------------------------------------------------")
	if len(trace.Matches) > 0 {
		fmt.Printf("Result: %s\n", bold(red(fmt.Sprintf("%d vulnerabilities detected", len(trace.Matches)))))
		for _, m := range trace.Matches {
			fmt.Printf("  %s %s\n", red("✖"), bold(m.Vulnerability))
		}
	} else {
		fmt.Printf("Result: %s\n", bold(green("no vulnerabilities detected")))
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(whyCmd)

	whyCmd.Flags().StringVarP(&whyObservationPath, "observation", "o", "-",
		"Path to the observation JSON file ('-' for stdin)")
	whyCmd.Flags().StringVarP(&whyRuleFilter, "rule", "r", "", "Filter output to specific rule name (optional)")
	whyCmd.Flags().StringVar(&whyAsOf, "as-of", "", "Trace against the rules active at this RFC3339 instant")

	f.bindConfigFlag(whyCmd.Flags())
}
