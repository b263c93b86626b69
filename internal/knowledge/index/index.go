// Package index provides chunk-level embedding and exact cosine-similarity
// retrieval. Embedding failures never propagate: the index substitutes zero
// vectors, which match nothing, so semantic retrieval degrades instead of
// failing the turn.
package index

import (
	"context"
	"math"
	"sort"

	"sarathi/internal/embedding"
	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

// Index wraps an embedding model with failure isolation and similarity
// search over stored chunks.
type Index struct {
	model     embedding.Embedding
	dimension int
	log       *logger.Logger
}

// New creates an Index over the given embedding model. dimension is used
// for the zero-vector fallback when the model is unavailable.
func New(model embedding.Embedding, dimension int, log *logger.Logger) *Index {
	return &Index{model: model, dimension: dimension, log: log}
}

// Embed returns the embedding vector for text. On model failure it logs and
// returns a zero vector of the configured dimension.
func (ix *Index) Embed(ctx context.Context, text string) []float32 {
	vec, err := ix.model.Embed(ctx, text)
	if err != nil {
		ix.log.WithError(err).Warn("embedding failed, substituting zero vector")
		return make([]float32, ix.dimension)
	}
	return vec
}

// EmbedBatch returns one embedding vector per input text. On model failure
// it logs and returns zero vectors of the configured dimension.
func (ix *Index) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	vectors, err := ix.model.EmbedBatch(ctx, texts)
	if err != nil || len(vectors) != len(texts) {
		if err != nil {
			ix.log.WithError(err).Warn("batch embedding failed, substituting zero vectors")
		}
		vectors = make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = make([]float32, ix.dimension)
		}
	}
	return vectors
}

// ScoredChunk pairs a chunk with its cosine similarity to a query.
type ScoredChunk struct {
	Chunk      models.FeedChunk
	Similarity float64
}

// SimilaritySearch ranks chunks by cosine similarity to the query vector
// and returns the top k. Chunks with missing or zero embeddings never
// match. Ties keep the original chunk order.
func (ix *Index) SimilaritySearch(query []float32, chunks []models.FeedChunk, topK int) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vec := DecodeVector(chunk.Embedding)
		scored = append(scored, ScoredChunk{Chunk: chunk, Similarity: Cosine(query, vec)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

// Cosine computes cosine similarity between two vectors. Mismatched lengths
// or a zero vector on either side yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
