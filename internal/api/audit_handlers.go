package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/breardon2011/mitigationDB/internal/api/presenter"
	"github.com/breardon2011/mitigationDB/internal/core"
)

// handleAdminAudit processes requests to retrieve audit records.
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	filterCorrelationID := q.Get("correlation_id")
	filterFingerprint := q.Get("fingerprint")
	filterAction := q.Get("action")

	limit := 50
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil {
			logger.Warn().Err(err).Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", http.StatusBadRequest)
			return
		}
		limit = v
	}
	if limit < 0 {
		limit = 0
	}

	var records []core.AuditRecord
	var err error

	if filterCorrelationID != "" || filterFingerprint != "" || filterAction != "" {
		logger.Info().Msgf("applying audit record filters")
		records, err = s.auditor.Find(func(record core.AuditRecord) bool {
			if filterCorrelationID != "" && record.ID != filterCorrelationID {
				return false
			}
			if filterFingerprint != "" && record.ObservationFingerprint != filterFingerprint {
				return false
			}
			if filterAction != "" && record.Action != filterAction {
				return false
			}
			return true
		}, limit)
	} else {
		logger.Debug().Msgf("retrieving recent audit records")
		records, err = s.auditor.GetRecent(limit)
	}

	if err != nil {
		logger.Error().Err(err).Msg("failed to retrieve audit records")
		presenter.Error(w, r, "failed to retrieve audit records", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, records, http.StatusOK)
}
