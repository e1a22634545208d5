package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/breardon2011/mitigationDB/internal/config"
	"github.com/breardon2011/mitigationDB/internal/logging"
)

func testLogger() logging.InternalLogger {
	return logging.NewZLogger(zerolog.Nop())
}

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}
	return path
}

func TestFileFetcher_Fetch(t *testing.T) {
	path := writeRules(t, `
rules:
  - name: Ember-vulnerable vents
    effective_date: 2024-01-01T00:00:00Z
    conditions:
      - fact: attic_vent_has_screens
        operator: "=="
        value: "False"
  - name: High risk zone
    effective_date: 2024-01-01T00:00:00Z
    conditions:
      - fact: wildfire_risk_category
        operator: in
        value: ["C", "D"]
`)

	f, err := NewFileFetcher(config.FileSourceConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFileFetcher() error = %v", err)
	}

	rules, err := f.Fetch(context.Background(), testLogger())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Fetch() returned %d rules, want 2", len(rules))
	}
	if rules[0].Name != "Ember-vulnerable vents" {
		t.Errorf("first rule = %q", rules[0].Name)
	}
}

func TestFileFetcher_BareList(t *testing.T) {
	path := writeRules(t, `
- name: Bare list rule
  effective_date: 2024-01-01T00:00:00Z
  conditions:
    - fact: roof_type
      operator: exists
`)

	f, err := NewFileFetcher(config.FileSourceConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFileFetcher() error = %v", err)
	}

	rules, err := f.Fetch(context.Background(), testLogger())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Name != "Bare list rule" {
		t.Fatalf("Fetch() = %+v, want the bare list rule", rules)
	}
}

func TestFileFetcher_RejectsInvalidRules(t *testing.T) {
	path := writeRules(t, `
rules:
  - name: broken
    conditions:
      - fact: roof_type
        operator: frobnicate
`)

	f, err := NewFileFetcher(config.FileSourceConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFileFetcher() error = %v", err)
	}
	if _, err := f.Fetch(context.Background(), testLogger()); err == nil {
		t.Fatal("Fetch() should reject rules with unknown operators")
	}
}

func TestFileFetcher_MissingFile(t *testing.T) {
	f, err := NewFileFetcher(config.FileSourceConfig{Path: "/does/not/exist.yaml"})
	if err != nil {
		t.Fatalf("NewFileFetcher() error = %v", err)
	}
	if _, err := f.Fetch(context.Background(), testLogger()); err == nil {
		t.Fatal("Fetch() should fail for a missing file")
	}
}
