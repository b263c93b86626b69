// Package cache provides a minimal value-with-timestamp container for
// externally-fetched reference data. Staleness is a pure function of
// (now, fetchedAt), so refresh policy stays testable and no module-level
// mutable state is needed.
package cache

import "time"

// Value holds one cached datum and the instant it was fetched.
type Value[T any] struct {
	Data      T
	FetchedAt time.Time
}

// New wraps data fetched right now.
func New[T any](data T) *Value[T] {
	return At(data, time.Now())
}

// At wraps data fetched at a known instant.
func At[T any](data T, fetchedAt time.Time) *Value[T] {
	return &Value[T]{Data: data, FetchedAt: fetchedAt}
}

// Stale reports whether the value is older than ttl at the given instant.
func (v *Value[T]) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(v.FetchedAt) >= ttl
}
