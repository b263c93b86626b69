package embedding

import "context"

// NullModel is the null-object embedding client used when no embedding
// provider is configured. It returns zero vectors of the configured
// dimension, which cosine-match nothing, so semantic retrieval degrades to
// the keyword tiers without special-casing callers.
type NullModel struct {
	dimension int
}

// NewNullModel creates a NullModel producing vectors of the given dimension.
func NewNullModel(dimension int) *NullModel {
	return &NullModel{dimension: dimension}
}

// Embed returns a zero vector.
func (m *NullModel) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, m.dimension), nil
}

// EmbedBatch returns one zero vector per input.
func (m *NullModel) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, m.dimension)
	}
	return vectors, nil
}
