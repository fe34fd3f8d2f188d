package core

import "testing"

func TestNewCallerIdNormalizesUnknownSentinel(t *testing.T) {
	c := NewCallerId(0, "<unknown>", "<unknown>", true)
	if c.Name != "" || c.Number != "" {
		t.Fatalf("expected sentinel normalized to empty, got name=%q number=%q", c.Name, c.Number)
	}
}

func TestCallerIdWithPatchLeavesOtherFieldsAlone(t *testing.T) {
	base := NewCallerId(42, "Alice", "1000", true)
	patched := base.With(CallerIdPatch{Number: strPtr("2000")})

	if patched.Number != "2000" {
		t.Fatalf("expected number patched, got %q", patched.Number)
	}
	if patched.Name != "Alice" || patched.Code != 42 || patched.IsPublic != true {
		t.Fatalf("expected other fields unchanged, got %+v", patched)
	}
}

func TestCallerIdWithNormalizesUnknownOnPatch(t *testing.T) {
	base := NewCallerId(0, "Alice", "1000", true)
	patched := base.With(CallerIdPatch{Name: strPtr("<unknown>")})
	if patched.Name != "" {
		t.Fatalf("expected patched sentinel normalized, got %q", patched.Name)
	}
}
