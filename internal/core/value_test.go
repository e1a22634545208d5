package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFromAny_RoundTrip(t *testing.T) {
	in := map[string]any{
		"name":  "structure",
		"score": 12.5,
		"flags": []any{true, false},
		"nested": map[string]any{
			"empty": nil,
			"list":  []any{map[string]any{"id": "a"}},
		},
	}

	got := FromAny(in).Interface()
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("round trip mismatch (-in +out):\n%s", diff)
	}
}

func TestFromAny_NumericNormalization(t *testing.T) {
	cases := []any{int(90), int64(90), float64(90), uint32(90), json.Number("90")}
	for _, c := range cases {
		v := FromAny(c)
		if v.Kind() != KindNumber {
			t.Fatalf("FromAny(%T) kind = %s, want number", c, v.Kind())
		}
		if v.NumberVal() != 90 {
			t.Errorf("FromAny(%T) = %v, want 90", c, v.NumberVal())
		}
	}
}

func TestFromAny_UnsupportedCollapsesToNull(t *testing.T) {
	type opaque struct{ X int }
	if v := FromAny(opaque{X: 1}); v.Kind() != KindNull {
		t.Errorf("FromAny(struct) kind = %s, want null", v.Kind())
	}
}

func TestValue_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int equals float", 90, 90.0, true},
		{"string case sensitive", "Class A", "class a", false},
		{"bool not string", true, "true", false},
		{"arrays ordered", []any{1, 2}, []any{2, 1}, false},
		{"deep objects", map[string]any{"a": []any{1}}, map[string]any{"a": []any{1}}, true},
		{"null equals null", nil, nil, true},
		{"null not zero", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromAny(tt.a).Equal(FromAny(tt.b)); got != tt.want {
				t.Errorf("Equal(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestValue_Field(t *testing.T) {
	obj := FromAny(map[string]any{"roof_type": "Class A"})

	if _, ok := obj.Field("missing"); ok {
		t.Error("Field() found a key that does not exist")
	}
	if v, ok := obj.Field("roof_type"); !ok || v.StringVal() != "Class A" {
		t.Errorf("Field(roof_type) = (%v, %v)", v, ok)
	}

	// field lookup on a non-object is a clean miss, not a panic
	if _, ok := FromAny("scalar").Field("roof_type"); ok {
		t.Error("Field() on a scalar should miss")
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func TestRule_ActiveAt(t *testing.T) {
	eff := mustTime(t, "2024-01-01T00:00:00Z")
	ret := mustTime(t, "2025-01-01T00:00:00Z")

	open := Rule{EffectiveDate: eff}
	closed := Rule{EffectiveDate: eff, RetiredDate: &ret}

	tests := []struct {
		name       string
		rule       Rule
		at         string
		wantActive bool
	}{
		{"before effective", open, "2023-12-31T23:59:59Z", false},
		{"at effective", open, "2024-01-01T00:00:00Z", true},
		{"open ended", open, "2030-01-01T00:00:00Z", true},
		{"inside window", closed, "2024-06-01T00:00:00Z", true},
		{"at retirement", closed, "2025-01-01T00:00:00Z", false},
		{"after retirement", closed, "2025-06-01T00:00:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.ActiveAt(mustTime(t, tt.at)); got != tt.wantActive {
				t.Errorf("ActiveAt(%s) = %v, want %v", tt.at, got, tt.wantActive)
			}
		})
	}
}
