package audit

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// FingerprintObservation hashes an observation so repeated submissions of
// the same property can be correlated in the audit trail without storing
// the payload itself.
func FingerprintObservation(obs core.Value) string {
	data, err := json.Marshal(obs)
	if err != nil {
		return "(n/a)"
	}
	hash := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(hash[:])
}
