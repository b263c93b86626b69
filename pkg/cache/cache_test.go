package cache

import (
	"testing"
	"time"
)

func TestStale(t *testing.T) {
	fetched := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	v := At(42, fetched)

	if v.Stale(fetched.Add(30*time.Minute), time.Hour) {
		t.Error("value inside TTL must not be stale")
	}
	if !v.Stale(fetched.Add(time.Hour), time.Hour) {
		t.Error("value at TTL boundary must be stale")
	}
	if !v.Stale(fetched.Add(2*time.Hour), time.Hour) {
		t.Error("value past TTL must be stale")
	}
	if v.Data != 42 {
		t.Errorf("data = %d, want 42", v.Data)
	}
}
