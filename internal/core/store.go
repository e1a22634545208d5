package core

import (
	"context"
	"errors"
	"time"
)

var ErrRuleNotFound = errors.New("rule not found")

// RuleStore manages the lifecycle of rule definitions. The engine never
// talks to a store directly; callers fetch rules and hand them over as
// immutable snapshots.
type RuleStore interface {
	// Create inserts a new rule and assigns its ID and timestamps.
	Create(ctx context.Context, rule *Rule) error

	// Get returns the rule with the given ID, or ErrRuleNotFound.
	Get(ctx context.Context, id int64) (*Rule, error)

	// Update overwrites the stored rule identified by rule.ID.
	Update(ctx context.Context, rule *Rule) error

	// Delete removes the rule with the given ID.
	Delete(ctx context.Context, id int64) error

	// List returns all rule versions, ordered by ID.
	List(ctx context.Context) ([]Rule, error)

	// ListActive returns the rules whose effective window contains asOf,
	// ordered by ID.
	ListActive(ctx context.Context, asOf time.Time) ([]Rule, error)

	// UpsertByName inserts the rule, or updates the existing rule with the
	// same name when the definition changed. Used by seeding and rule
	// sources.
	UpsertByName(ctx context.Context, rule Rule) (created bool, err error)

	Close() error
}
