package port

import "context"

// Encoder turns text into a fixed-length embedding.
// The same model must have produced the stored vectors, otherwise scores are meaningless.
type Encoder interface {
	// ModelID identifies the embedding model, e.g. "ollama:all-minilm".
	ModelID() string

	// Encode embeds a single text.
	Encode(ctx context.Context, text string) ([]float32, error)
}
