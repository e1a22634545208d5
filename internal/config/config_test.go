package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
store:
  type: sqlite
  path: /tmp/rules.db
  busy_timeout: 10s
audit:
  enabled: true
  type: memory
rules:
  - name: Ember-vulnerable vents
    category: structure
    effective_date: 2024-01-01T00:00:00Z
    conditions:
      - fact: attic_vent_has_screens
        operator: "=="
        value: "False"
    mitigations:
      steps:
        - Install 1/8 inch metal mesh screens
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	opts, err := cfg.Store.SQLiteOptions()
	if err != nil {
		t.Fatalf("SQLiteOptions() error = %v", err)
	}
	if opts.Path != "/tmp/rules.db" {
		t.Errorf("sqlite path = %q", opts.Path)
	}
	if opts.BusyTimeout != 10*time.Second {
		t.Errorf("busy timeout = %v, want 10s", opts.BusyTimeout)
	}

	if len(cfg.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(cfg.Rules))
	}
	rule := cfg.Rules[0]
	if rule.Name != "Ember-vulnerable vents" || len(rule.Conditions) != 1 {
		t.Errorf("unexpected rule: %+v", rule)
	}
	if rule.Conditions[0].Value != "False" {
		t.Errorf("condition value = %v, want the string False", rule.Conditions[0].Value)
	}
}

func TestLoad_RejectsBadRule(t *testing.T) {
	path := writeConfig(t, `
rules:
  - name: broken
    conditions:
      - fact: roof_type
        operator: frobnicate
        value: x
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown operator") {
		t.Fatalf("Load() error = %v, want operator validation error", err)
	}
}

func TestLoad_RejectsUnknownStore(t *testing.T) {
	path := writeConfig(t, `
store:
  type: etcd
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown store type") {
		t.Fatalf("Load() error = %v, want store type error", err)
	}
}

func TestLoad_SQLiteRequiresPath(t *testing.T) {
	path := writeConfig(t, `
store:
  type: sqlite
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "requires a path") {
		t.Fatalf("Load() error = %v, want missing path error", err)
	}
}

func TestRuleSource_Validate(t *testing.T) {
	src := &RuleSource{}
	if err := src.Validate(); err == nil {
		t.Error("empty rule source should not validate")
	}

	src = &RuleSource{File: &FileSourceConfig{Path: "rules.yaml"}}
	if err := src.Validate(); err != nil {
		t.Errorf("file rule source: %v", err)
	}

	src = &RuleSource{
		File:   &FileSourceConfig{Path: "rules.yaml"},
		GitHub: &GitHubSourceConfig{},
	}
	if err := src.Validate(); err == nil {
		t.Error("two rule sources should not validate")
	}
}
