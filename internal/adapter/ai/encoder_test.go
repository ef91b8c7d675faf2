package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arturoeanton/go-module-pack/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEncoder_Encode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		assert.Equal(t, "Bearer cloud-token", r.Header.Get("Authorization"))

		var body struct {
			Model string `json:"model"`
			Input string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultOllamaModel, body.Model)
		assert.Equal(t, "load a file", body.Input)

		_, _ = io.WriteString(w, `{"model":"all-minilm","embeddings":[[0.1,0.2,0.3]]}`)
	}))
	defer srv.Close()

	enc := NewOllamaEncoder(OllamaEndpointConfig{BaseURL: srv.URL + "/", Token: "cloud-token"})
	assert.Equal(t, "ollama:all-minilm", enc.ModelID())

	vec, err := enc.Encode(context.Background(), "load a file")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOllamaEncoder_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusNotFound, body: `{"error":"model not found"}`, wantErr: "ollama API error (404)"},
		{name: "empty embeddings", status: http.StatusOK, body: `{"embeddings":[]}`, wantErr: "empty response"},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: "decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewOllamaEncoder(OllamaEndpointConfig{BaseURL: srv.URL}).Encode(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, port.ErrEncoder)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEncoders_WrapErrEncoder(t *testing.T) {
	t.Parallel()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	}))
	defer failing.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	unreachable := closed.URL
	closed.Close()

	encoders := map[string]port.Encoder{
		"ollama 500":         NewOllamaEncoder(OllamaEndpointConfig{BaseURL: failing.URL}),
		"ollama unreachable": NewOllamaEncoder(OllamaEndpointConfig{BaseURL: unreachable}),
		"openai 500":         NewOpenAIEncoder(OpenAIConfig{BaseURL: failing.URL, Model: "m", APIKey: "k"}),
		"openai unreachable": NewOpenAIEncoder(OpenAIConfig{BaseURL: unreachable, Model: "m", APIKey: "k"}),
	}
	for name, enc := range encoders {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := enc.Encode(context.Background(), "x")
			assert.ErrorIs(t, err, port.ErrEncoder)
		})
	}
}

func TestEncoders_KeepContextErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"embeddings":[[1]]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOllamaEncoder(OllamaEndpointConfig{BaseURL: srv.URL}).Encode(ctx, "x")
	assert.ErrorIs(t, err, port.ErrEncoder)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIEncoder_Encode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"data":[{"embedding":[1.5,-0.5]}]}`)
	}))
	defer srv.Close()

	enc := NewOpenAIEncoder(OpenAIConfig{BaseURL: srv.URL + "/v1", Model: "text-embedding-3-small", APIKey: "sk-test"})
	assert.Equal(t, "openai:text-embedding-3-small", enc.ModelID())

	vec, err := enc.Encode(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -0.5}, vec)
}

func TestOpenAIEncoder_RequiresConfig(t *testing.T) {
	t.Parallel()

	_, err := NewOpenAIEncoder(OpenAIConfig{APIKey: "k"}).Encode(context.Background(), "x")
	assert.ErrorContains(t, err, "model is not configured")

	_, err = NewOpenAIEncoder(OpenAIConfig{Model: "m"}).Encode(context.Background(), "x")
	assert.ErrorContains(t, err, "API key is not configured")
	assert.ErrorIs(t, err, port.ErrEncoder)
}

func TestNewEncoder(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(Config{})
	require.NoError(t, err)
	assert.IsType(t, &OllamaEncoder{}, enc)

	enc, err = NewEncoder(Config{Provider: "openai", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIEncoder{}, enc)

	_, err = NewEncoder(Config{Provider: "sentence-transformers"})
	assert.ErrorContains(t, err, "unsupported encoder provider")
}
