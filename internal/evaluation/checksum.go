// Package evaluation computes content checksums, stability guardrails and
// aggregate KPIs over decision output. Equal inputs always yield equal
// checksums; that equality is how regressions across runs are detected.
package evaluation

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// volatileKeys are stripped before hashing so wall-clock fields never leak
// into content checksums.
var volatileKeys = map[string]bool{
	"generated_at":     true,
	"observed_at_utc":  true,
	"evaluated_at_utc": true,
	"recorded_at":      true,
	"run_id":           true,
}

// Checksum returns the SHA-256 hex digest of v's canonical JSON form:
// map keys sorted, volatile timestamp fields removed.
func Checksum(v any) (string, error) {
	normalized, err := normalize(v)
	if err != nil {
		return "", err
	}
	// encoding/json emits map keys in sorted order, which makes the output
	// canonical once every object is a map.
	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("marshal normalized payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// MustChecksum is Checksum for payloads that cannot fail to marshal
// (our own report types). Panics otherwise.
func MustChecksum(v any) string {
	s, err := Checksum(v)
	if err != nil {
		panic(err)
	}
	return s
}

func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return stripVolatile(generic), nil
}

func stripVolatile(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if volatileKeys[k] {
				continue
			}
			out[k] = stripVolatile(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripVolatile(val)
		}
		return out
	default:
		return v
	}
}
