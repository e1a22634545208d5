package client

import (
	"context"
	"time"

	"github.com/breardon2011/mitigationDB/internal/api"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/service"
)

// EvaluateOptions contains optional parameters for an evaluation request.
type EvaluateOptions struct {
	// AsOf pins the active-rule window to a point in time.
	AsOf *time.Time
}

// Evaluate matches an observation against the service's active rules.
func (c *Client) Evaluate(
	ctx context.Context,
	observation map[string]any,
	opts EvaluateOptions,
) (*service.EvaluateResponse, string, error) {
	payload := api.EvaluatePayload{
		Observation: observation,
		AsOf:        opts.AsOf,
	}
	var resp service.EvaluateResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.EvaluateRoute).
		build(), payload, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// Reflect parses an observation server-side and returns its fact paths.
func (c *Client) Reflect(
	ctx context.Context,
	observation map[string]any,
) (*service.ReflectResponse, string, error) {
	payload := api.EvaluatePayload{Observation: observation}
	var resp service.ReflectResponse
	correlation, err := c.post(ctx, c.url().
		setPath(api.ReflectRoute).
		build(), payload, &resp)
	if err != nil {
		return nil, correlation, err
	}
	return &resp, correlation, nil
}

// ExplainTrace runs an observation through the engine and returns the
// outcome of every rule. Requires an admin session token.
func (c *Client) ExplainTrace(
	ctx context.Context,
	observation map[string]any,
	opts EvaluateOptions,
) (*core.EvaluationTrace, string, error) {
	payload := api.EvaluatePayload{
		Observation: observation,
		AsOf:        opts.AsOf,
	}
	var trace core.EvaluationTrace
	correlation, err := c.post(ctx, c.url().
		setPath(api.ExplainRoute).
		build(), payload, &trace)
	if err != nil {
		return nil, correlation, err
	}
	return &trace, correlation, nil
}
