package index

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"sarathi/internal/embedding"
	"sarathi/internal/models"
	"sarathi/pkg/logger"
)

// failingModel simulates an unavailable embedding backend.
type failingModel struct{}

func (failingModel) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("model unavailable")
}

func (failingModel) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("model unavailable")
}

func TestEmbedFailureYieldsZeroVector(t *testing.T) {
	ix := New(failingModel{}, 8, logger.New("test"))
	vec := ix.Embed(context.Background(), "hello")
	if len(vec) != 8 {
		t.Fatalf("expected zero vector of dimension 8, got %d", len(vec))
	}
	for i, v := range vec {
		if v != 0 {
			t.Errorf("component %d = %v, want 0", i, v)
		}
	}
}

func TestEmbedBatchFailureYieldsZeroVectors(t *testing.T) {
	ix := New(failingModel{}, 4, logger.New("test"))
	vectors := ix.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for _, vec := range vectors {
		if len(vec) != 4 {
			t.Errorf("expected dimension 4, got %d", len(vec))
		}
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %v, want 1", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: got %v, want 0", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 0}); got != 0 {
		t.Errorf("zero vector must yield 0, got %v", got)
	}
	if got := Cosine([]float32{1}, []float32{1, 0}); got != 0 {
		t.Errorf("mismatched lengths must yield 0, got %v", got)
	}
}

func TestSimilaritySearchRanksAndCaps(t *testing.T) {
	ix := New(embedding.NewNullModel(2), 2, logger.New("test"))
	chunks := []models.FeedChunk{
		{ID: "far", Embedding: EncodeVector([]float32{0, 1})},
		{ID: "near", Embedding: EncodeVector([]float32{1, 0.1})},
		{ID: "zero", Embedding: nil},
		{ID: "exact", Embedding: EncodeVector([]float32{1, 0})},
	}
	results := ix.SimilaritySearch([]float32{1, 0}, chunks, 2)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "exact" || results[1].Chunk.ID != "near" {
		t.Errorf("unexpected ranking: %s, %s", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestSimilaritySearchZeroEmbeddingNeverTop(t *testing.T) {
	ix := New(embedding.NewNullModel(2), 2, logger.New("test"))
	chunks := []models.FeedChunk{
		{ID: "missing", Embedding: nil},
		{ID: "real", Embedding: EncodeVector([]float32{0.5, 0.5})},
	}
	results := ix.SimilaritySearch([]float32{1, 1}, chunks, 1)
	if results[0].Chunk.ID != "real" {
		t.Errorf("zero-embedding chunk must never outrank a real one, got %s", results[0].Chunk.ID)
	}
}

func TestSimilaritySearchTiesKeepOriginalOrder(t *testing.T) {
	ix := New(embedding.NewNullModel(2), 2, logger.New("test"))
	chunks := []models.FeedChunk{
		{ID: "first", Embedding: EncodeVector([]float32{1, 0})},
		{ID: "second", Embedding: EncodeVector([]float32{2, 0})}, // same direction, same cosine
	}
	results := ix.SimilaritySearch([]float32{1, 0}, chunks, 0)
	if results[0].Chunk.ID != "first" {
		t.Errorf("tie must preserve original chunk order, got %s first", results[0].Chunk.ID)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.125}
	out := DecodeVector(EncodeVector(in))
	if !reflect.DeepEqual(in, out) {
		t.Errorf("round trip mismatch: %v != %v", in, out)
	}
	if DecodeVector(nil) != nil {
		t.Errorf("nil blob must decode to nil")
	}
	if DecodeVector([]byte{1, 2, 3}) != nil {
		t.Errorf("malformed blob must decode to nil")
	}
}
