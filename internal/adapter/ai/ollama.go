package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// DefaultOllamaModel is the Ollama packaging of all-MiniLM-L6-v2 (384 dimensions).
const DefaultOllamaModel = "all-minilm"

// OllamaEndpointConfig holds the configuration for a single Ollama endpoint.
type OllamaEndpointConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. all-minilm, nomic-embed-text
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaEncoder implements port.Encoder using the Ollama REST API.
type OllamaEncoder struct {
	cfg        OllamaEndpointConfig
	httpClient *http.Client
}

// NewOllamaEncoder creates a new Ollama-backed text encoder.
func NewOllamaEncoder(cfg OllamaEndpointConfig) *OllamaEncoder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OllamaEncoder{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// ModelID returns the embedding model identifier.
func (o *OllamaEncoder) ModelID() string {
	return "ollama:" + o.cfg.Model
}

// Encode generates a vector embedding for the given text.
func (o *OllamaEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]interface{}{
		"model": o.cfg.Model,
		"input": text,
	}

	body, err := o.post(ctx, "/api/embed", payload)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama embed: %w", port.ErrEncoder, err)
	}

	var resp struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: ollama embed decode: %w", port.ErrEncoder, err)
	}

	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: ollama embed: empty response", port.ErrEncoder)
	}

	return resp.Embeddings[0], nil
}

// post is a helper for POST requests to the Ollama endpoint (with optional bearer token).
func (o *OllamaEncoder) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
