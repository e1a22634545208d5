package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/breardon2011/mitigationDB/internal/core"
)

func goodRule(name string) core.Rule {
	return core.Rule{
		Name: name,
		Conditions: []core.Condition{
			{Fact: "roof_type", Operator: core.OpEqual, Value: "Class A"},
		},
		EffectiveDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *core.Rule)
		wantErr string
	}{
		{
			name:   "valid rule passes",
			mutate: func(r *core.Rule) {},
		},
		{
			name:    "missing name",
			mutate:  func(r *core.Rule) { r.Name = "" },
			wantErr: "missing name",
		},
		{
			name:    "no conditions",
			mutate:  func(r *core.Rule) { r.Conditions = nil },
			wantErr: "has no conditions",
		},
		{
			name: "missing fact",
			mutate: func(r *core.Rule) {
				r.Conditions[0].Fact = ""
			},
			wantErr: "missing fact",
		},
		{
			name: "unknown operator",
			mutate: func(r *core.Rule) {
				r.Conditions[0].Operator = "frobnicate"
			},
			wantErr: "unknown operator 'frobnicate'",
		},
		{
			name: "in requires list",
			mutate: func(r *core.Rule) {
				r.Conditions[0].Operator = core.OpIn
				r.Conditions[0].Value = "not-a-list"
			},
			wantErr: "requires a list value",
		},
		{
			name: "comparison requires value",
			mutate: func(r *core.Rule) {
				r.Conditions[0].Operator = core.OpLess
				r.Conditions[0].Value = nil
			},
			wantErr: "requires a value",
		},
		{
			name: "exists without value is fine",
			mutate: func(r *core.Rule) {
				r.Conditions[0].Operator = core.OpExists
				r.Conditions[0].Value = nil
			},
		},
		{
			name: "retired before effective",
			mutate: func(r *core.Rule) {
				ret := r.EffectiveDate.Add(-time.Hour)
				r.RetiredDate = &ret
			},
			wantErr: "retired_date must be after effective_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := goodRule("test-rule")
			tt.mutate(&rule)

			_, err := ValidateRules([]core.Rule{rule})
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateRules() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("ValidateRules() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRules_DuplicateNames(t *testing.T) {
	_, err := ValidateRules([]core.Rule{goodRule("dup"), goodRule("dup")})
	if err == nil || !strings.Contains(err.Error(), "not unique") {
		t.Fatalf("ValidateRules() error = %v, want name-uniqueness error", err)
	}
}
