package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Options configures NewVectorIndex.
type Options struct {
	URL    string
	APIKey string // Qdrant only
	Table  string // pgvector only
}

// NewVectorIndex picks a backend from the URL scheme: http(s) for Qdrant,
// postgres/postgresql for pgvector.
func NewVectorIndex(ctx context.Context, opts Options, logger *slog.Logger) (port.VectorIndex, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse vector store url: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		logger.Info("using qdrant vector store", "url", opts.URL)
		return NewQdrantIndex(QdrantConfig{BaseURL: opts.URL, APIKey: opts.APIKey}, logger), nil
	case "postgres", "postgresql":
		logger.Info("using pgvector store", "host", u.Host, "table", opts.Table)
		pg, err := NewPostgresStore(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
		return NewPgVectorIndex(pg, opts.Table), nil
	default:
		return nil, fmt.Errorf("unsupported vector store scheme %q", u.Scheme)
	}
}
