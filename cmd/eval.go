package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/breardon2011/mitigationDB/internal/service"
	"github.com/breardon2011/mitigationDB/pkg/client"
)

var (
	evalObservationPath string
	evalAsOf            string
	evalJSON            bool
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate an observation against the vulnerability rules",
	Long: `Matches a property observation (a JSON document) against the active rules
	and prints the detected vulnerabilities with their mitigations.

With --server set, the evaluation runs on the remote mitigationDB server.
Otherwise the rules are loaded locally from the --config file.`,
	Example: `  # evaluate against a running server
  mitigationdb eval -o property.json --server http://localhost:8080

  # evaluate locally against a rule file
  mitigationdb eval -o property.json -f mitigationdb.yaml

  # evaluate against the ruleset as it was last year
  mitigationdb eval -o property.json --as-of 2025-08-30T00:00:00Z`,
	RunE: func(cmd *cobra.Command, args []string) error {
		observation, err := readObservation(evalObservationPath)
		if err != nil {
			return err
		}
		asOf, err := parseAsOf(evalAsOf)
		if err != nil {
			return err
		}

		var resp *service.EvaluateResponse
		if viper.GetString(ServerAddrKey) != "" || f.RemoteAddr != "" {
			cli, err := f.GetClient()
			if err != nil {
				return err
			}
			var correlation string
			resp, correlation, err = cli.Evaluate(cmd.Context(), observation, client.EvaluateOptions{AsOf: asOf})
			if err != nil {
				return logError(err, correlation, "evaluation failed")
			}
		} else {
			svc, err := f.GetLocalService(cmd.Context())
			if err != nil {
				return err
			}
			resp, err = svc.Evaluate(cmd.Context(), service.EvaluateRequest{
				Observation: observation,
				AsOf:        asOf,
			})
			if err != nil {
				return logError(err, "", "evaluation failed")
			}
		}

		if evalJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		printEvaluateResponse(resp)
		return nil
	},
}

func printEvaluateResponse(resp *service.EvaluateResponse) {
	if resp.Matched == 0 {
		log.Info().Msgf("%s no vulnerabilities detected", greenCheck)
		return
	}

	log.Info().Msgf("%s detected %s", redCross,
		color.New(color.Bold).Sprintf("%d vulnerabilities", resp.Matched))

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Rule", "Vulnerability", "Category", "Mitigations"})

	for _, v := range resp.Vulnerabilities {
		mitigations := ""
		if len(v.Mitigations) > 0 {
			raw, err := json.Marshal(v.Mitigations)
			if err == nil {
				mitigations = truncate(string(raw), 60)
			}
		}
		t.AppendRow(table.Row{
			v.MatchedRuleID,
			color.New(color.Bold).Sprint(v.Vulnerability),
			v.Category,
			mitigations,
		})
	}

	applyTableFormat(t)
	t.Render()
}

// readObservation decodes a JSON observation from path, or stdin for "-".
func readObservation(path string) (map[string]any, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading observation: %w", err)
	}

	var observation map[string]any
	if err := json.Unmarshal(data, &observation); err != nil {
		return nil, fmt.Errorf("parsing observation: %w", err)
	}
	return observation, nil
}

func parseAsOf(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parsing as-of time: %w", err)
	}
	return &t, nil
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalObservationPath, "observation", "o", "-",
		"Path to the observation JSON file ('-' for stdin)")
	evalCmd.Flags().StringVar(&evalAsOf, "as-of", "", "Evaluate against the rules active at this RFC3339 instant")
	evalCmd.Flags().BoolVar(&evalJSON, "json", false, "Print the raw JSON response")

	f.bindConfigFlag(evalCmd.Flags())
}
