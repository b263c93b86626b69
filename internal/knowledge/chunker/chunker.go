// Package chunker splits long text into overlapping, bounded-length
// segments. Chunks are the unit of embedding and semantic retrieval.
package chunker

import "strings"

// Default chunking parameters.
const (
	DefaultChunkSize = 512
	DefaultOverlap   = 50
)

// Chunk splits text into an ordered sequence of chunk texts of at most
// chunkSize characters. Sentences (split on . ! ?) are accumulated greedily;
// when appending the next sentence would push the buffer past chunkSize and
// the buffer is non-empty, the buffer is emitted and the next buffer starts
// with the trailing overlap characters of the emitted one. The final
// non-empty buffer is always emitted. Deterministic: the same input always
// produces the same chunk sequence.
//
// Degenerate input without sentence punctuation yields a single chunk of
// the whole text, truncated to chunkSize.
func Chunk(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	if len(sentences) == 1 {
		return []string{truncate(sentences[0], chunkSize)}
	}

	var chunks []string
	var current []rune
	for _, sentence := range sentences {
		sent := []rune(sentence)
		if len(current)+len(sent) > chunkSize && len(current) > 0 {
			emitted := []rune(truncate(string(current), chunkSize))
			chunks = append(chunks, string(emitted))
			// Seed the next buffer with the tail of the emitted chunk so
			// that context spanning the boundary is preserved.
			tail := emitted
			if len(tail) > overlap {
				tail = tail[len(tail)-overlap:]
			}
			current = append([]rune{}, tail...)
			if len(current) > 0 {
				current = append(current, ' ')
			}
			current = append(current, sent...)
		} else {
			if len(current) > 0 {
				current = append(current, ' ')
			}
			current = append(current, sent...)
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, truncate(strings.TrimSpace(string(current)), chunkSize))
	}
	return chunks
}

// splitSentences breaks text on sentence-ending punctuation, trimming
// whitespace and dropping empty fragments.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	flush := func() {
		s := strings.TrimSpace(current.String())
		current.Reset()
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
