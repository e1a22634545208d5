package core

import "time"

// AuditRecord captures one evaluation request for the audit trail.
type AuditRecord struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "evaluate", "explain")
	Action string `json:"action"`

	// ObservationFingerprint is a hash of the submitted observation, so
	// repeated submissions can be correlated without storing the payload.
	ObservationFingerprint string `json:"observation_fingerprint,omitempty"`

	// AsOf is set when the caller pinned the active-rule window.
	AsOf *time.Time `json:"as_of,omitempty"`

	// Decision details
	RulesEvaluated int      `json:"rules_evaluated"`
	Matched        int      `json:"matched"`
	MatchedRules   []string `json:"matched_rules,omitempty"`

	// SkippedRules lists rules the engine refused to evaluate, with the
	// reason, e.g. "bad-operator: unknown operator 'frobnicate'".
	SkippedRules []string `json:"skipped_rules,omitempty"`

	Error string `json:"error,omitempty"`
}

type Auditor interface {
	Log(record AuditRecord) error
	GetRecent(limit int) ([]AuditRecord, error)
	Find(filter func(record AuditRecord) bool, limit int) ([]AuditRecord, error)
	Close() error
}
