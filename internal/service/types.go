package service

import (
	"time"

	"github.com/breardon2011/mitigationDB/internal/core"
)

type EvaluateRequest struct {
	// Observation is the decoded property description to evaluate.
	Observation map[string]any

	// AsOf pins the active-rule window. If nil, the current snapshot is
	// used.
	AsOf *time.Time
}

type EvaluateResponse struct {
	// Matched is the number of rules that hit.
	Matched int `json:"matched"`

	// Vulnerabilities lists the matched rules with their remediation
	// payloads, in rule order.
	Vulnerabilities []core.MatchResult `json:"vulnerabilities"`
}

type ExplainRequest struct {
	Observation map[string]any
	AsOf        *time.Time
}

type ReflectResponse struct {
	// Observation echoes the parsed observation so callers can see what
	// the evaluator actually received.
	Observation any `json:"observation"`

	// Facts lists every resolvable dotted path in the observation.
	Facts []string `json:"facts"`
}
