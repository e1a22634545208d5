package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/breardon2011/mitigationDB/internal/core"
)

func TestFingerprintObservation_Deterministic(t *testing.T) {
	a := core.FromAny(map[string]any{"roof_type": "Class A", "window_type": "Single"})
	b := core.FromAny(map[string]any{"window_type": "Single", "roof_type": "Class A"})

	fa, fb := FingerprintObservation(a), FingerprintObservation(b)
	if fa != fb {
		t.Errorf("fingerprints differ for equal observations: %s vs %s", fa, fb)
	}

	c := core.FromAny(map[string]any{"roof_type": "Class B"})
	if FingerprintObservation(c) == fa {
		t.Error("different observations share a fingerprint")
	}
}

func TestInMemoryAuditor(t *testing.T) {
	a := NewInMemoryAuditor()
	defer a.Close()

	for i := 0; i < 5; i++ {
		err := a.Log(core.AuditRecord{
			ID:      fmt.Sprintf("req-%d", i),
			Time:    time.Now(),
			Action:  "evaluate",
			Matched: i,
		})
		if err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	recent, err := a.GetRecent(2)
	if err != nil {
		t.Fatalf("GetRecent() error = %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "req-3" || recent[1].ID != "req-4" {
		t.Errorf("GetRecent(2) = %+v, want the two newest records", recent)
	}

	hits, err := a.Find(func(r core.AuditRecord) bool { return r.Matched > 2 }, 10)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if len(hits) != 2 {
		t.Errorf("Find() returned %d records, want 2", len(hits))
	}
}
