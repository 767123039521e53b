// Package commit implements the Commit Engine: turning a verified draft
// session into an immutable receiving event, inventory mutations,
// finance transactions, and a signed audit entry, all inside one outer
// repository transaction, per spec §4.5.
package commit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CanonicalJSON renders v as deterministic JSON: object keys sorted
// lexicographically, no insignificant whitespace, numbers in their
// shortest form (Go's encoding/json already emits shortest-form
// float64s), and any time.Time fields pre-formatted to UTC ISO-8601
// strings by the caller before being passed in. Two independent callers
// of CanonicalJSON on the same logical payload must agree bit-for-bit,
// so v must be a map[string]interface{} (or a value that marshals to
// one) — never a struct, whose field order is fixed by declaration
// order rather than by key.
func CanonicalJSON(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}
	return marshalSorted(normalized)
}

// normalize round-trips v through encoding/json so nested structs,
// slices, and maps all come out as plain interface{} values that
// marshalSorted can walk uniformly.
func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalSorted(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf []byte
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, kb...)
			buf = append(buf, ':')
			vb, err := marshalSorted(t[k])
			if err != nil {
				return nil, err
			}
			buf = append(buf, vb...)
		}
		buf = append(buf, '}')
		return buf, nil

	case []interface{}:
		var buf []byte
		buf = append(buf, '[')
		for i, item := range t {
			if i > 0 {
				buf = append(buf, ',')
			}
			ib, err := marshalSorted(item)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ib...)
		}
		buf = append(buf, ']')
		return buf, nil

	default:
		return json.Marshal(t)
	}
}

// Sign computes the SHA-256 signature of the canonical JSON of payload,
// returned as a lowercase hex string.
func Sign(payload map[string]interface{}) (string, error) {
	canon, err := CanonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
