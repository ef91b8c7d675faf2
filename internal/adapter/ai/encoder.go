// Package ai holds the text encoders that embed tool queries.
package ai

import (
	"fmt"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Config selects and configures an encoder provider.
type Config struct {
	Provider string // "ollama" (default) or "openai"
	Model    string
	BaseURL  string
	APIKey   string
}

// NewEncoder returns the encoder for cfg.Provider.
func NewEncoder(cfg Config) (port.Encoder, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaEncoder(OllamaEndpointConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Token:   cfg.APIKey,
		}), nil
	case "openai":
		return NewOpenAIEncoder(OpenAIConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported encoder provider: %s", cfg.Provider)
	}
}
