// Package knowledge implements the tiered retrieval engine: enhanced
// keyword scoring over the feed, a hybrid substring + static-KB tier, a
// direct static-KB lookup and a generative fallback whose answers are fed
// back into the feed. Store failures degrade a tier to "no results" and
// never fail the turn.
package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"sarathi/internal/config"
	"sarathi/internal/feed"
	"sarathi/internal/knowledge/index"
	"sarathi/internal/knowledge/kb"
	"sarathi/internal/knowledge/scorer"
	"sarathi/internal/llm"
	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

// Retrieval tier labels, reported in chat metadata.
const (
	TierFeed   = "feed"
	TierHybrid = "hybrid"
	TierKB     = "kb"
	TierLLM    = "llm"
)

// Engine answers questions from the knowledge tiers in order, stopping at
// the first tier that produces a reply.
type Engine struct {
	feed    *feed.Store
	index   *index.Index
	model   llm.LLM // nil when the generative fallback is disabled
	cfg     config.RetrievalConfig
	llmTemp float32
	llmMax  int
	timeout time.Duration
	log     *logger.Logger
}

// NewEngine wires the retrieval engine. model may be nil; the fallback tier
// is then reported as unavailable.
func NewEngine(store *feed.Store, ix *index.Index, model llm.LLM, cfg *config.AppConfig, log *logger.Logger) *Engine {
	return &Engine{
		feed:    store,
		index:   ix,
		model:   model,
		cfg:     cfg.Retrieval,
		llmTemp: cfg.LLM.Temperature,
		llmMax:  cfg.LLM.MaxTokens,
		timeout: cfg.LLMTimeout(),
		log:     log,
	}
}

// HasFallback reports whether the generative tier is available.
func (e *Engine) HasFallback() bool {
	return e.model != nil
}

// scoredEntry pairs a feed entry with its keyword score.
type scoredEntry struct {
	entry models.FeedEntry
	score float64
}

// rankFeed scores every active entry against the query keywords and returns
// the positive-scoring ones, best first. Ties keep recency order. Stopwords
// stay in the keyword set when dropStopwords is false, so the scoring tier
// and the context tier rank slightly differently on purpose.
func (e *Engine) rankFeed(ctx context.Context, query string, dropStopwords bool) []scoredEntry {
	entries, err := e.feed.Active(ctx)
	if err != nil {
		e.log.WithError(err).Warn("feed unavailable, keyword tier degraded to empty")
		return nil
	}
	keywords := scorer.ExtractKeywords(query, dropStopwords)
	if len(keywords) == 0 {
		return nil
	}
	expanded := scorer.Expand(keywords)

	scored := make([]scoredEntry, 0, len(entries))
	for _, entry := range entries {
		score := scorer.Score(entry.Content, entry.Title, entry.Tags, keywords, expanded)
		if score > 0 {
			scored = append(scored, scoredEntry{entry: entry, score: score})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > e.cfg.MaxEntries {
		scored = scored[:e.cfg.MaxEntries]
	}
	return scored
}

// snippet renders one entry as a bounded, source-attributed context block.
func (e *Engine) snippet(entry models.FeedEntry) string {
	source := entry.Source
	if source == "" {
		source = entry.Title
	}
	return fmt.Sprintf("[Source: %s] %s", source, truncate(entry.Content, e.cfg.SnippetMax))
}

// Answer runs the non-generative tiers in order and returns the first reply
// found, together with the tier that produced it.
func (e *Engine) Answer(ctx context.Context, query string) (reply, tier string, found bool) {
	// Tier 1: enhanced keyword scoring over the feed.
	if ranked := e.rankFeed(ctx, query, false); len(ranked) > 0 {
		return truncate(ranked[0].entry.Content, e.cfg.SnippetMax), TierFeed, true
	}

	// Tier 2: hybrid substring search over the feed, static KB filling the
	// remaining result slots.
	entries, err := e.feed.Search(ctx, query, e.cfg.TopK, nil)
	if err != nil {
		e.log.WithError(err).Warn("feed unavailable, hybrid tier degraded to KB only")
		entries = nil
	}
	if len(entries) > 0 {
		return truncate(entries[0].Content, e.cfg.SnippetMax), TierHybrid, true
	}
	if len(entries) < e.cfg.TopK {
		for _, hit := range kb.Search(query, e.cfg.TopK-len(entries)) {
			if hit.Score > 1 { // floor-only scores are padding, not matches
				return hit.Entry.Text, TierHybrid, true
			}
		}
	}

	// Tier 3: direct static KB lookup.
	if entry, ok := kb.Lookup(query); ok {
		return entry.Text, TierKB, true
	}

	return "", "", false
}

// BuildContext assembles the grounding context for the generative tier:
// keyword-ranked feed snippets, then semantically similar chunks, then
// matching static KB text, greedily packed until the character budget is
// reached. Assembly stops at the first block that would overflow.
func (e *Engine) BuildContext(ctx context.Context, query string) string {
	var blocks []string
	total := 0

	add := func(block string) bool {
		cost := utf8.RuneCountInString(block)
		if len(blocks) > 0 {
			cost += 2 // joining separator
		}
		if total+cost > e.cfg.ContextBudget {
			return false
		}
		blocks = append(blocks, block)
		total += cost
		return true
	}

	for _, hit := range e.rankFeed(ctx, query, true) {
		if !add(e.snippet(hit.entry)) {
			return strings.Join(blocks, "\n\n")
		}
	}

	for _, hit := range e.semanticChunks(ctx, query) {
		if !add(hit.Chunk.Text) {
			return strings.Join(blocks, "\n\n")
		}
	}

	for _, hit := range kb.Search(query, e.cfg.TopK) {
		if hit.Score <= 1 {
			continue
		}
		if !add(hit.Entry.Text) {
			break
		}
	}
	return strings.Join(blocks, "\n\n")
}

// semanticChunks runs cosine retrieval over the active chunks. A zero query
// vector (embedding disabled or failed) matches nothing, so the block list
// just stays shorter.
func (e *Engine) semanticChunks(ctx context.Context, query string) []index.ScoredChunk {
	chunks, err := e.feed.ActiveChunks(ctx)
	if err != nil {
		e.log.WithError(err).Warn("chunks unavailable, semantic tier degraded to empty")
		return nil
	}
	if len(chunks) == 0 {
		return nil
	}
	vec := e.index.Embed(ctx, query)
	hits := e.index.SimilaritySearch(vec, chunks, e.cfg.TopK)
	matched := hits[:0]
	for _, hit := range hits {
		if hit.Similarity > 0 {
			matched = append(matched, hit)
		}
	}
	return matched
}

// Fallback asks the generative model, grounded in the assembled context and
// the recent conversation. A successful answer is persisted back into the
// feed as a qa entry so the next identical question is served by tier 1.
func (e *Engine) Fallback(ctx context.Context, query string, history []models.Message) (string, error) {
	if e.model == nil {
		return "", fmt.Errorf("generative fallback is disabled")
	}
	prompt := e.buildPrompt(e.BuildContext(ctx, query), history, query)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	answer, err := e.model.Complete(callCtx, prompt, e.llmTemp, e.llmMax)
	if err != nil {
		return "", fmt.Errorf("generative fallback: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("generative fallback returned an empty answer")
	}

	e.persistQA(ctx, query, answer)
	return answer, nil
}

// persistQA writes the generated answer back into the feed. Persistence is
// best-effort: a store failure loses the caching, not the reply.
func (e *Engine) persistQA(ctx context.Context, question, answer string) {
	_, err := e.feed.Create(ctx, feed.CreateInput{
		Title:     truncate(question, 512),
		Content:   fmt.Sprintf("Q: %s\nA: %s", question, answer),
		Source:    "generated",
		EntryType: models.EntryTypeQA,
		Tags:      []string{"qa", "generated"},
	})
	if err != nil {
		e.log.WithError(err).Warn("failed to persist generated answer")
	}
}

func (e *Engine) buildPrompt(contextText string, history []models.Message, question string) string {
	var b strings.Builder
	b.WriteString("You are a customer support assistant. Answer concisely using the context below when it is relevant; say so when it is not.\n\n")
	if contextText != "" {
		b.WriteString("Context:\n")
		b.WriteString(contextText)
		b.WriteString("\n\n")
	}
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, m := range history {
			b.WriteString(string(m.Role))
			b.WriteString(": ")
			b.WriteString(m.Text)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// truncate caps s at max characters, never splitting a rune.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
