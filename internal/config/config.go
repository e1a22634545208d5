package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mitchellh/mapstructure"

	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/validation"
)

type Config struct {
	Store      StoreConfig `yaml:"store"`
	Audit      AuditConfig `yaml:"audit"`
	RuleSource *RuleSource `yaml:"rule_source"`

	// Rules are seeded into the store on startup (upsert by name).
	Rules []core.Rule `yaml:"rules"`
}

// StoreConfig selects and configures the rule store backend.
type StoreConfig struct {
	Type   string         `yaml:"type"`    // e.g. "sqlite", "memory"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// SQLiteOptions are the backend options for the sqlite store,
// decoded from the inline store config.
type SQLiteOptions struct {
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

// SQLiteOptions decodes the inline store config into sqlite options.
func (s *StoreConfig) SQLiteOptions() (*SQLiteOptions, error) {
	opts := &SQLiteOptions{
		BusyTimeout: 5 * time.Second,
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     opts,
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating store option decoder: %w", err)
	}
	if err := dec.Decode(s.Config); err != nil {
		return nil, fmt.Errorf("decoding sqlite store options: %w", err)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("sqlite store requires a path")
	}
	return opts, nil
}

type RuleSourceSync struct {
	Interval time.Duration `yaml:"interval"`
}

// FileSourceConfig loads rule definitions from a YAML file on disk.
type FileSourceConfig struct {
	Path string `yaml:"path"`
}

func (c *FileSourceConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

type GitHubSourceConfig struct {
	// AppID is the GitHub App ID.
	AppID int64 `yaml:"app_id"`

	// InstallationID is the GitHub App installation ID.
	InstallationID int64 `yaml:"installation_id"`

	// ServerURL is the GitHub Enterprise server URL.
	// For GitHub.com, this can be left empty.
	ServerURL string `yaml:"server"`

	// PrivateKey is the GitHub App private key in PEM format.
	PrivateKey string `yaml:"private_key"`

	// Owner of the GitHub repository.
	Owner string `yaml:"owner"`

	// Repo is the name of the GitHub repository.
	Repo string `yaml:"repo"`

	// Path is the directory path within the repository to load rules from.
	// For example, "rules/".
	Path string `yaml:"path"`

	// Ref is the git reference to use (e.g. a branch).
	// For example, "main".
	Ref string `yaml:"ref"`

	// WebhookSecret enables the push webhook endpoint when set.
	WebhookSecret string `yaml:"webhook_secret"`
}

func (c *GitHubSourceConfig) Validate() error {
	if c.AppID == 0 {
		return fmt.Errorf("app_id is required")
	}
	if c.InstallationID == 0 {
		return fmt.Errorf("installation_id is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private_key is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	return nil
}

// RuleSource holds configuration for an external rule source the service
// periodically syncs into the store.
type RuleSource struct {
	// File loads rules from a local YAML file.
	File *FileSourceConfig `yaml:"file,omitempty"`

	// GitHub loads rules from a repository via a GitHub App.
	GitHub *GitHubSourceConfig `yaml:"github,omitempty"`

	Sync RuleSourceSync `yaml:"sync"`
}

func (s *RuleSource) Validate() error {
	switch {
	case s.File != nil && s.GitHub != nil:
		return fmt.Errorf("only one rule source may be configured")
	case s.File != nil:
		if err := s.File.Validate(); err != nil {
			return fmt.Errorf("validating file rule source: %w", err)
		}
	case s.GitHub != nil:
		if err := s.GitHub.Validate(); err != nil {
			return fmt.Errorf("validating GitHub rule source: %w", err)
		}
	default:
		return fmt.Errorf("no valid rule source configured")
	}
	return nil
}

// AuditConfig holds configuration for the evaluation audit trail.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Type {
	case "", "memory":
		// nothing to check
	case "sqlite":
		if _, err := c.Store.SQLiteOptions(); err != nil {
			return fmt.Errorf("validating store config: %w", err)
		}
	default:
		return fmt.Errorf("unknown store type '%s'", c.Store.Type)
	}

	validRules, err := validation.ValidateRules(c.Rules)
	if err != nil {
		return fmt.Errorf("validating rules: %w", err)
	}
	c.Rules = validRules

	if c.RuleSource != nil {
		if err := c.RuleSource.Validate(); err != nil {
			return fmt.Errorf("validating rule source: %w", err)
		}
	}

	return nil
}
