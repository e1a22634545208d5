package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breardon2011/mitigationDB/internal/api/presenter"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/validation"
)

// handleListRules lists rules. By default only the currently active ones;
// ?all=true includes retired and pending rules, ?as_of=<RFC3339> pins the
// window to another point in time.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	q := r.URL.Query()

	var (
		rules []core.Rule
		err   error
	)
	switch {
	case q.Get("all") == "true":
		rules, err = s.store.List(ctx)
	case q.Get("as_of") != "":
		asOf, parseErr := time.Parse(time.RFC3339, q.Get("as_of"))
		if parseErr != nil {
			presenter.Error(w, r, "invalid as_of parameter", http.StatusBadRequest)
			return
		}
		rules, err = s.store.ListActive(ctx, asOf)
	default:
		rules, err = s.store.ListActive(ctx, time.Now())
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to list rules")
		presenter.Error(w, r, "failed to list rules", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, rules, http.StatusOK)
}

// handleGetRule returns a single rule by ID.
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		presenter.Error(w, r, "invalid rule id", http.StatusBadRequest)
		return
	}

	rule, err := s.store.Get(ctx, id)
	if errors.Is(err, core.ErrRuleNotFound) {
		presenter.Error(w, r, "rule not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("rule_id", id).Msg("failed to load rule")
		presenter.Error(w, r, "failed to load rule", http.StatusInternalServerError)
		return
	}

	presenter.JSON(w, r, rule, http.StatusOK)
}

// handleCreateRule stores a new rule and refreshes the engine snapshot.
func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var rule core.Rule
	if err := DecodePayload(r, &rule, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode rule payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateRule(rule); err != nil {
		presenter.Error(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Create(ctx, &rule); err != nil {
		logger.Error().Err(err).Msg("failed to create rule")
		presenter.Error(w, r, "failed to create rule", http.StatusInternalServerError)
		return
	}
	s.refreshSnapshot(ctx)

	logger.Info().Int64("rule_id", rule.ID).Str("rule", rule.Name).Msg("rule created")
	presenter.JSON(w, r, rule, http.StatusCreated)
}

// handleUpdateRule overwrites an existing rule and refreshes the snapshot.
func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		presenter.Error(w, r, "invalid rule id", http.StatusBadRequest)
		return
	}

	var rule core.Rule
	if err := DecodePayload(r, &rule, false); err != nil {
		logger.Warn().Err(err).Msg("failed to decode rule payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}
	rule.ID = id
	if err := validation.ValidateRule(rule); err != nil {
		presenter.Error(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.store.Update(ctx, &rule); err != nil {
		if errors.Is(err, core.ErrRuleNotFound) {
			presenter.Error(w, r, "rule not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("rule_id", id).Msg("failed to update rule")
		presenter.Error(w, r, "failed to update rule", http.StatusInternalServerError)
		return
	}
	s.refreshSnapshot(ctx)

	logger.Info().Int64("rule_id", id).Str("rule", rule.Name).Msg("rule updated")
	presenter.JSON(w, r, rule, http.StatusOK)
}

// handleDeleteRule removes a rule and refreshes the snapshot. Prefer setting
// a retired_date over deletion to keep as_of queries reproducible.
func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		presenter.Error(w, r, "invalid rule id", http.StatusBadRequest)
		return
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, core.ErrRuleNotFound) {
			presenter.Error(w, r, "rule not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Int64("rule_id", id).Msg("failed to delete rule")
		presenter.Error(w, r, "failed to delete rule", http.StatusInternalServerError)
		return
	}
	s.refreshSnapshot(ctx)

	logger.Info().Int64("rule_id", id).Msg("rule deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) refreshSnapshot(ctx context.Context) {
	if err := s.evalService.RefreshSnapshot(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to refresh engine snapshot after rule mutation")
	}
}
