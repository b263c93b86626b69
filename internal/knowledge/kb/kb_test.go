package kb

import (
	"strings"
	"testing"
)

func TestSearchRefundPolicy(t *testing.T) {
	results := Search("What is the refund policy?", 1)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Entry.Key != "refund_policy" {
		t.Errorf("top hit = %s, want refund_policy", results[0].Entry.Key)
	}
	if !strings.Contains(results[0].Entry.Text, "Refunds are eligible within 7 days") {
		t.Errorf("unexpected text: %s", results[0].Entry.Text)
	}
}

func TestSearchFloorKeepsAllRankable(t *testing.T) {
	results := Search("zzz qqq", 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results even with no matches, got %d", len(results))
	}
	// No words match, so every candidate sits on the floor and ties keep
	// table order.
	if results[0].Entry.Key != "refund_policy" || results[1].Entry.Key != "reschedule_policy" {
		t.Errorf("floor ties must keep table order, got %s, %s",
			results[0].Entry.Key, results[1].Entry.Key)
	}
	for _, r := range results {
		if r.Score != 0.1 {
			t.Errorf("floor score = %v, want 0.1", r.Score)
		}
	}
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup("how do I reset my password")
	if !ok {
		t.Fatal("expected a match")
	}
	if entry.Key != "password_reset" {
		t.Errorf("got %s, want password_reset", entry.Key)
	}

	if _, ok := Lookup("zzz qqq"); ok {
		t.Error("floor-only score must not count as a match")
	}
}
