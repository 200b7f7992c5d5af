package query

import "testing"

func TestAnagramExpansionCount(t *testing.T) {
	// <tests> has histogram {t:2, e:1, s:2}: 3 distinct letters, so it
	// should expand into exactly 4 alternative expressions (spec.md §8's
	// round-trip / idempotence property).
	q, err := Parse("<tests>")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Expressions) != 4 {
		t.Fatalf("expected 4 expanded expressions, got %d", len(q.Expressions))
	}
}

func TestAnagramPassthroughWithoutAnagram(t *testing.T) {
	q, err := Parse("hello")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Expressions) != 1 {
		t.Fatalf("non-anagram expression should not be expanded, got %d", len(q.Expressions))
	}
}

func TestTransDeleteClampWarns(t *testing.T) {
	q, err := Parse("<ab-5>")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(q.Warnings) == 0 {
		t.Errorf("expected a clamp warning when transdelete count exceeds bank length")
	}
}
