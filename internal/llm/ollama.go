package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// Ollama is an LLM client backed by a local Ollama instance.
type Ollama struct {
	client *ollama.Client
	model  string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local Ollama address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	hc := &http.Client{
		Timeout: 120 * time.Second,
	}
	return &Ollama{client: ollama.NewClient(parsedURL, hc), model: model}, nil
}

// Complete generates a completion for the prompt.
func (o *Ollama) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	stream := false
	var sb strings.Builder
	err := o.client.Generate(ctx, &ollama.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": temperature,
			"num_predict": maxTokens,
		},
	}, func(resp ollama.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate completion from ollama: %w", err)
	}
	return sb.String(), nil
}
