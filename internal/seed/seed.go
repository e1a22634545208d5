package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/validation"
)

// Result summarizes one seeding run.
type Result struct {
	Created int
	Updated int
}

// Apply validates the given rule definitions and upserts them into the store
// by name. Existing rules keep their ID and creation timestamp; definitions
// that changed are overwritten. Seeding is idempotent.
func Apply(ctx context.Context, store core.RuleStore, rules []core.Rule) (Result, error) {
	var res Result

	valid, err := validation.ValidateRules(rules)
	if err != nil {
		return res, fmt.Errorf("validating seed rules: %w", err)
	}

	for _, rule := range valid {
		created, err := store.UpsertByName(ctx, rule)
		if err != nil {
			return res, fmt.Errorf("seeding rule '%s': %w", rule.Name, err)
		}
		if created {
			res.Created++
			log.Debug().Str("rule", rule.Name).Msg("seeded new rule")
		} else {
			res.Updated++
			log.Debug().Str("rule", rule.Name).Msg("updated seeded rule")
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Msg("rule seeding complete")
	return res, nil
}
