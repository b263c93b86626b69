// Package scorer extracts query keywords, expands them through a static
// synonym table and scores candidate text against the expanded set. It is
// the shared ranking primitive of the keyword retrieval tiers.
package scorer

import (
	"strings"
	"unicode"
)

// Weights of the scoring formula. Original keywords dominate; synonym hits
// only nudge the ranking.
const (
	keywordWeight  = 2.0
	expandedWeight = 0.5
	titleBonus     = 3.0
	tagBonus       = 2.0
)

// minTokenLen filters out short noise tokens ("a", "is", "to").
const minTokenLen = 3

// stopwords are only dropped when building feed context snippets; the
// keyword-scoring tier keeps them so that phrases like "where is my order"
// still contribute. Callers choose via the dropStopwords flag.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "his": true,
	"has": true, "have": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "what": true, "when": true, "where": true,
	"which": true, "will": true, "would": true, "there": true, "their": true,
	"about": true, "into": true, "some": true, "them": true, "then": true,
	"than": true, "been": true, "were": true, "does": true, "how": true,
}

// synonyms is the static expansion table. Expansion is one level deep and
// not transitive: a synonym's own synonyms are never pulled in.
var synonyms = map[string][]string{
	"pay":      {"payment", "transfer", "send", "money"},
	"payment":  {"pay", "transfer", "billing", "charge"},
	"refund":   {"return", "reimbursement", "money", "back"},
	"order":    {"purchase", "delivery", "shipment", "package"},
	"delivery": {"shipping", "order", "eta", "courier"},
	"account":  {"profile", "login", "password", "credentials"},
	"password": {"login", "credentials", "reset", "account"},
	"appointment": {"booking", "slot", "schedule", "reschedule"},
	"invoice":  {"bill", "billing", "receipt", "statement"},
	"cancel":   {"cancellation", "stop", "terminate"},
	"help":     {"support", "assist", "assistance"},
}

// ExtractKeywords lowercases the text and extracts deduplicated alphanumeric
// runs of at least minTokenLen characters, preserving first-seen order.
// Stopwords are dropped only when dropStopwords is set.
func ExtractKeywords(text string, dropStopwords bool) []string {
	var keywords []string
	seen := make(map[string]bool)
	var token strings.Builder

	flush := func() {
		if token.Len() == 0 {
			return
		}
		word := token.String()
		token.Reset()
		if len(word) < minTokenLen {
			return
		}
		if dropStopwords && stopwords[word] {
			return
		}
		if !seen[word] {
			seen[word] = true
			keywords = append(keywords, word)
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			token.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return keywords
}

// Expand returns keywords plus their one-level synonym expansion, original
// keywords first, preserving order and deduplicating.
func Expand(keywords []string) []string {
	expanded := make([]string, 0, len(keywords))
	seen := make(map[string]bool)
	for _, kw := range keywords {
		if !seen[kw] {
			seen[kw] = true
			expanded = append(expanded, kw)
		}
	}
	for _, kw := range keywords {
		for _, syn := range synonyms[kw] {
			if !seen[syn] {
				seen[syn] = true
				expanded = append(expanded, syn)
			}
		}
	}
	return expanded
}

// Score ranks a candidate text against the keyword set:
//
//	2.0 x each occurrence of an original keyword in the text
//	0.5 x each occurrence of an expanded-only keyword (originals excluded,
//	      so a keyword never double-counts through its own expansion)
//	3.0 per original keyword appearing as a substring of the title
//	2.0 per original keyword appearing in the joined tag string
//
// A candidate with no matches scores exactly 0.
func Score(text, title string, tags []string, keywords, expanded []string) float64 {
	lowerText := strings.ToLower(text)
	lowerTitle := strings.ToLower(title)
	tagString := strings.ToLower(strings.Join(tags, " "))

	original := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		original[kw] = true
	}

	var score float64
	for _, kw := range keywords {
		score += keywordWeight * float64(strings.Count(lowerText, kw))
		if strings.Contains(lowerTitle, kw) {
			score += titleBonus
		}
		if strings.Contains(tagString, kw) {
			score += tagBonus
		}
	}
	for _, kw := range expanded {
		if original[kw] {
			continue
		}
		score += expandedWeight * float64(strings.Count(lowerText, kw))
	}
	return score
}
