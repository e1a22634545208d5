package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breardon2011/mitigationDB/internal/api/presenter"
	"github.com/breardon2011/mitigationDB/internal/service"
)

// EvaluatePayload is the request body for evaluation endpoints.
type EvaluatePayload struct {
	// Observation is the property description to match rules against.
	Observation map[string]any `json:"observation"`

	// AsOf pins the active-rule window to a point in time (RFC 3339).
	AsOf *time.Time `json:"as_of,omitempty"`
}

func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	switch r.Header.Get("Content-Type") {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}

// handleEvaluate matches an observation against the active rules and responds
// with the matched vulnerabilities.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload EvaluatePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode evaluate request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	resp, err := s.evalService.Evaluate(ctx, service.EvaluateRequest{
		Observation: payload.Observation,
		AsOf:        payload.AsOf,
	})
	if err != nil {
		presenter.Err(w, r, err, "evaluation failed")
		return
	}

	presenter.JSON(w, r, resp, http.StatusOK)
}

// handleReflect echoes the parsed observation and its resolvable fact paths.
func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload EvaluatePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode reflect request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	resp, err := s.evalService.Reflect(ctx, payload.Observation)
	if err != nil {
		presenter.Err(w, r, err, "reflect failed")
		return
	}

	presenter.JSON(w, r, resp, http.StatusOK)
}

// handleExplain returns the outcome of every rule for the given observation,
// including not-matched and skipped ones.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload EvaluatePayload
	if err := DecodePayload(r, &payload, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode explain request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	trace, err := s.evalService.Explain(ctx, service.ExplainRequest{
		Observation: payload.Observation,
		AsOf:        payload.AsOf,
	})
	if err != nil {
		presenter.Err(w, r, err, "explain failed")
		return
	}

	presenter.JSON(w, r, trace, http.StatusOK)
}
