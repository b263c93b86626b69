// Package kb holds the static fallback knowledge base: a tiny, immutable,
// process-lifetime table consulted when the mutable feed has no answer.
package kb

import (
	"sort"
	"strings"
)

// Entry is one static knowledge base item.
type Entry struct {
	Key  string
	Text string
}

// entries is the fixed table. Order matters: ties in the simple scorer keep
// table order.
var entries = []Entry{
	{"refund_policy", "Refunds are eligible within 7 days of purchase if unused."},
	{"reschedule_policy", "Appointments can be rescheduled up to 24 hours before the slot."},
	{"password_reset", "Use the Forgot Password link; a reset email/SMS will be sent."},
	{"shipping_eta", "Standard delivery ETA is 3-5 business days."},
}

// scoreFloor keeps every candidate rankable even when no word matches, so
// Search always returns topK entries in a deterministic order.
const scoreFloor = 0.1

// Entries returns the full static table.
func Entries() []Entry {
	return entries
}

// ScoredEntry pairs a static entry with its simple keyword score.
type ScoredEntry struct {
	Entry Entry
	Score float64
}

// Search ranks the static table against the query with the simple scorer:
// one point per query word occurring in the key or text, plus a flat floor.
// Results are sorted by score descending; ties keep table order.
func Search(query string, topK int) []ScoredEntry {
	words := strings.Fields(strings.ToLower(query))
	scored := make([]ScoredEntry, 0, len(entries))
	for _, e := range entries {
		haystack := strings.ToLower(e.Key + " " + e.Text)
		score := scoreFloor
		for _, w := range words {
			if strings.Contains(haystack, w) {
				score++
			}
		}
		scored = append(scored, ScoredEntry{Entry: e, Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Lookup returns the best match for the query, if any word of it matches.
// A floor-only score does not count as a match.
func Lookup(query string) (Entry, bool) {
	results := Search(query, 1)
	if len(results) == 0 || results[0].Score <= scoreFloor {
		return Entry{}, false
	}
	return results[0].Entry, true
}
