package commit

import "testing"

func TestCanonicalJSONSortsKeys(t *testing.T) {
	a, err := CanonicalJSON(map[string]interface{}{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	if string(a) != `{"a":2,"b":1}` {
		t.Errorf("CanonicalJSON() = %s, want keys sorted", a)
	}
}

func TestCanonicalJSONDeterministicAcrossCalls(t *testing.T) {
	payload := map[string]interface{}{
		"session_id": "s1",
		"tenant_id":  "t1",
		"line_ids":   []string{"l1", "l2"},
		"timestamp":  "2026-01-01T00:00:00Z",
	}
	first, err := CanonicalJSON(payload)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	second, err := CanonicalJSON(payload)
	if err != nil {
		t.Fatalf("CanonicalJSON returned error: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("expected two canonicalizations of the same payload to agree bit-for-bit")
	}
}

func TestSignIsDeterministic(t *testing.T) {
	payload := map[string]interface{}{"a": 1, "b": "two"}
	s1, err := Sign(payload)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	s2, _ := Sign(payload)
	if s1 != s2 {
		t.Errorf("Sign() not deterministic: %s vs %s", s1, s2)
	}
	if len(s1) != 64 {
		t.Errorf("expected a 64-character hex SHA-256 digest, got %d chars", len(s1))
	}
}

func TestSignDiffersOnPayloadChange(t *testing.T) {
	s1, _ := Sign(map[string]interface{}{"a": 1})
	s2, _ := Sign(map[string]interface{}{"a": 2})
	if s1 == s2 {
		t.Errorf("expected different payloads to produce different signatures")
	}
}
