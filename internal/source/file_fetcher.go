package source

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/logging"
	"github.com/breardon2011/mitigationDB/internal/validation"
)

type FileFetcher struct {
	cfg config.FileSourceConfig
}

func NewFileFetcher(cfg config.FileSourceConfig) (*FileFetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid file source config: %w", err)
	}
	return &FileFetcher{cfg: cfg}, nil
}

// ruleFile is the on-disk document shape: either a bare rule list or a
// document with a top-level "rules" key.
type ruleFile struct {
	Rules []core.Rule `yaml:"rules"`
}

func (f *FileFetcher) Fetch(_ context.Context, logger logging.InternalLogger) ([]core.Rule, error) {
	logger.Info("Loading rules from %s", f.cfg.Path)

	data, err := os.ReadFile(f.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.cfg.Path, err)
	}

	var (
		doc   ruleFile
		rules []core.Rule
	)
	if err := yaml.Unmarshal(data, &doc); err == nil && doc.Rules != nil {
		rules = doc.Rules
	} else if listErr := yaml.Unmarshal(data, &rules); listErr != nil {
		// neither a {rules: [...]} document nor a bare list
		if err != nil {
			return nil, fmt.Errorf("syntax error in %s: %w", f.cfg.Path, err)
		}
		return nil, fmt.Errorf("syntax error in %s: %w", f.cfg.Path, listErr)
	}

	valid, err := validation.ValidateRules(rules)
	if err != nil {
		return nil, fmt.Errorf("validating rules from %s: %w", f.cfg.Path, err)
	}

	logger.Info("Fetch complete. Total rules loaded: %d", len(valid))
	return valid, nil
}
