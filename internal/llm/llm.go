package llm

import (
	"context"
	"fmt"

	"sarathi/internal/config"
)

// LLM is the interface to the generative-model collaborator. The call is
// opaque text generation: prompt in, completion out, fallible.
type LLM interface {
	Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}

// NewClient is a factory that builds the LLM client selected by the
// configuration.
func NewClient(cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL), nil
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
