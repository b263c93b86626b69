package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address string `yaml:"address"` // e.g. ":8080"
}

// DatabaseConfig holds the SQLite connection settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite file path, ":memory:" for tests
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`  // "openai", "ollama" or "none"
	Model     string `yaml:"model"`     // provider model name
	APIKey    string `yaml:"apiKey"`    // key for hosted providers
	BaseURL   string `yaml:"baseURL"`   // override for OpenAI-compatible endpoints
	Dimension int    `yaml:"dimension"` // vector dimension, used for zero-vector fallback
}

// LLMConfig configures the generative fallback call.
type LLMConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Provider    string  `yaml:"provider"` // "openai" or "ollama"
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseURL"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"maxTokens"`
	Timeout     string  `yaml:"timeout"` // e.g. "30s"
}

// RetrievalConfig carries the knobs of the knowledge retrieval engine.
type RetrievalConfig struct {
	ContextBudget int `yaml:"contextBudget"` // total context characters
	SnippetMax    int `yaml:"snippetMax"`    // max content characters per snippet
	MaxEntries    int `yaml:"maxEntries"`    // max feed entries per query
	TopK          int `yaml:"topK"`          // hybrid tier result slots
	ChunkSize     int `yaml:"chunkSize"`
	ChunkOverlap  int `yaml:"chunkOverlap"`
}

// SessionConfig carries the session lifecycle knobs.
type SessionConfig struct {
	TTLHours      int    `yaml:"ttlHours"`      // fixed expiry horizon at creation
	HistoryWindow int    `yaml:"historyWindow"` // messages fed into the fallback prompt
	SweepSchedule string `yaml:"sweepSchedule"` // cron spec for the expiry sweep
}

// ChatConfig gates which intents the dispatcher may serve.
type ChatConfig struct {
	EnabledIntents []string `yaml:"enabledIntents"`
}

// FeedConfig carries feed administration limits.
type FeedConfig struct {
	BatchMax int `yaml:"batchMax"` // batch-create entry cap
}

// AppConfig is the root configuration of the chat service.
type AppConfig struct {
	LogLevel  string          `yaml:"logLevel"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Session   SessionConfig   `yaml:"session"`
	Chat      ChatConfig      `yaml:"chat"`
	Feed      FeedConfig      `yaml:"feed"`
}

// Default returns an AppConfig populated with the documented defaults.
func Default() *AppConfig {
	return &AppConfig{
		LogLevel: "info",
		Server:   ServerConfig{Address: ":8080"},
		Database: DatabaseConfig{Path: "sarathi_feed.db"},
		Embedding: EmbeddingConfig{
			Provider:  "none",
			Dimension: 384,
		},
		LLM: LLMConfig{
			Enabled:     false,
			Provider:    "openai",
			Temperature: 0.2,
			MaxTokens:   512,
			Timeout:     "30s",
		},
		Retrieval: RetrievalConfig{
			ContextBudget: 4000,
			SnippetMax:    800,
			MaxEntries:    5,
			TopK:          3,
			ChunkSize:     512,
			ChunkOverlap:  50,
		},
		Session: SessionConfig{
			TTLHours:      48,
			HistoryWindow: 10,
			SweepSchedule: "@hourly",
		},
		Chat: ChatConfig{
			EnabledIntents: []string{"faq", "status", "appointment", "billing", "account"},
		},
		Feed: FeedConfig{BatchMax: 50},
	}
}

// LoadConfig reads a YAML file over the defaults. A missing file is not an
// error: the service can boot on defaults alone (tests, local runs).
func LoadConfig(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants that must hold before the process starts.
// A failure here is fatal: the service must not boot half-configured.
func (c *AppConfig) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	switch c.Embedding.Provider {
	case "none", "ollama":
	case "openai":
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.apiKey is required for provider %q", c.Embedding.Provider)
		}
	default:
		return fmt.Errorf("unsupported embedding provider: %q", c.Embedding.Provider)
	}
	if c.LLM.Enabled {
		switch c.LLM.Provider {
		case "ollama":
		case "openai":
			if c.LLM.APIKey == "" {
				return fmt.Errorf("llm.apiKey is required for provider %q", c.LLM.Provider)
			}
		default:
			return fmt.Errorf("unsupported llm provider: %q", c.LLM.Provider)
		}
		if c.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when the generative fallback is enabled")
		}
		if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
			return fmt.Errorf("invalid llm.timeout: %w", err)
		}
	}
	if c.Retrieval.ChunkOverlap >= c.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.chunkOverlap must be smaller than retrieval.chunkSize")
	}
	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("session.ttlHours must be positive")
	}
	return nil
}

// LLMTimeout returns the parsed generative call timeout. Validate has
// already rejected malformed values, so a parse error here falls back to 30s.
func (c *AppConfig) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// SessionTTL returns the fixed session expiry horizon.
func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}
