package embedding

import (
	"context"
	"fmt"

	"sarathi/internal/config"
)

// Embedding is the interface every embedding model client implements.
type Embedding interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts, one
	// vector per input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ModelType enumerates the supported embedding providers.
type ModelType string

const (
	OpenAI ModelType = "openai" // any OpenAI-compatible /v1/embeddings endpoint
	Ollama ModelType = "ollama" // local Ollama instance
	None   ModelType = "none"   // null model, zero vectors only
)

// NewClient is a factory that builds the embedding client selected by the
// configuration. The choice is made once at construction time; callers hold
// the interface and never probe for optional behavior per call.
func NewClient(cfg config.EmbeddingConfig) (Embedding, error) {
	switch ModelType(cfg.Provider) {
	case OpenAI:
		return NewOpenAIModel(cfg.Model, cfg.APIKey, cfg.BaseURL), nil
	case Ollama:
		return NewOllamaModel(cfg.Model, cfg.BaseURL)
	case None:
		return NewNullModel(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
