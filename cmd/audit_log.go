package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/breardon2011/mitigationDB/pkg/client"
)

var (
	auditLogCorrelation string
	auditLogFingerprint string
	auditLogAction      string
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit records",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Fetching audit records...")
		audits, correlation, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         uint(limit),
			CorrelationID: auditLogCorrelation,
			Fingerprint:   auditLogFingerprint,
			Action:        auditLogAction,
		})
		if err != nil {
			return logError(err, correlation, "failed to fetch audit records")
		}

		log.Info().Msgf("Retrieved %d audit records", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Action", "Fingerprint", "Rules", "Matched", "Error",
		})

		for _, e := range audits {
			matched := ""
			if len(e.MatchedRules) > 0 {
				matched = truncate(strings.Join(e.MatchedRules, ", "), 40)
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.Action,
				truncate(e.ObservationFingerprint, 16),
				e.RulesEvaluated,
				matched,
				e.Error,
			})
		}

		applyTableFormat(t)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit records to retrieve")
	auditLogCmd.Flags().StringVar(&auditLogCorrelation, "correlation", "", "Filter by correlation ID")
	auditLogCmd.Flags().StringVar(&auditLogFingerprint, "fingerprint", "", "Filter by observation fingerprint")
	auditLogCmd.Flags().StringVar(&auditLogAction, "action", "", "Filter by action (evaluate, explain)")
}
