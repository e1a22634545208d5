package client

import (
	"context"
	"time"

	"github.com/breardon2011/mitigationDB/internal/api"
	"github.com/breardon2011/mitigationDB/internal/core"
)

type ListRulesOpts struct {
	// All includes retired and not-yet-effective rules.
	All bool

	// AsOf lists the rules active at the given instant instead of now.
	AsOf *time.Time
}

func (c *Client) ListRules(ctx context.Context, opts ListRulesOpts) ([]core.Rule, error) {
	ub := c.url().setPath(api.ListRulesRoute)
	if opts.All {
		ub = ub.addQueryParam("all", "true")
	}
	if opts.AsOf != nil {
		ub = ub.addQueryParam("as_of", opts.AsOf.Format(time.RFC3339))
	}
	var rules []core.Rule
	_, err := c.get(ctx, ub.build(), &rules)
	return rules, err
}

func (c *Client) GetRule(ctx context.Context, id int64) (*core.Rule, error) {
	var rule core.Rule
	_, err := c.get(ctx, c.url().
		setPath(api.GetRuleRoute).
		setPathParam("id", id).
		build(), &rule)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func (c *Client) CreateRule(ctx context.Context, rule core.Rule) (*core.Rule, error) {
	var created core.Rule
	_, err := c.post(ctx, c.url().
		setPath(api.CreateRuleRoute).
		build(), rule, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateRule(ctx context.Context, rule core.Rule) (*core.Rule, error) {
	var updated core.Rule
	_, err := c.put(ctx, c.url().
		setPath(api.UpdateRuleRoute).
		setPathParam("id", rule.ID).
		build(), rule, &updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteRule(ctx context.Context, id int64) error {
	_, err := c.delete(ctx, c.url().
		setPath(api.DeleteRuleRoute).
		setPathParam("id", id).
		build())
	return err
}
