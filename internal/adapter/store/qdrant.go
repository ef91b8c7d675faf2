package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

// QdrantConfig holds the connection settings for a Qdrant REST endpoint.
type QdrantConfig struct {
	BaseURL string // e.g. http://localhost:6333
	APIKey  string // optional, sent as the api-key header
}

// QdrantIndex implements port.VectorIndex over the Qdrant REST API.
// It holds no per-call state and is safe for concurrent use.
type QdrantIndex struct {
	cfg        QdrantConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewQdrantIndex creates a Qdrant-backed vector index client.
func NewQdrantIndex(cfg QdrantConfig, logger *slog.Logger) *QdrantIndex {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &QdrantIndex{
		cfg:        cfg,
		httpClient: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()},
		logger:     logger,
	}
}

type qdrantPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type qdrantMatch struct {
	Value string `json:"value"`
}

type qdrantCondition struct {
	Key   string      `json:"key"`
	Match qdrantMatch `json:"match"`
}

type qdrantFilter struct {
	Must []qdrantCondition `json:"must"`
}

type qdrantQueryRequest struct {
	Query       []float32     `json:"query"`
	Filter      *qdrantFilter `json:"filter,omitempty"`
	Limit       int           `json:"limit"`
	WithPayload bool          `json:"with_payload"`
}

// Retrieve fetches a single point by id.
func (q *QdrantIndex) Retrieve(ctx context.Context, collection, id string) (*domain.IndexedRecord, error) {
	payload := map[string]any{
		"ids":          []string{id},
		"with_payload": true,
		"with_vector":  false,
	}

	body, err := q.post(ctx, "/collections/"+url.PathEscape(collection)+"/points", payload)
	if err != nil {
		return nil, fmt.Errorf("qdrant retrieve: %w", err)
	}

	var resp struct {
		Result []qdrantPoint `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("qdrant retrieve decode: %w", err)
	}

	if len(resp.Result) == 0 {
		return nil, nil
	}
	rec, err := toRecord(resp.Result[0])
	if err != nil {
		return nil, fmt.Errorf("qdrant retrieve: %w", err)
	}
	return &rec, nil
}

// Query runs a nearest-neighbour search, optionally restricted by an exact payload match.
func (q *QdrantIndex) Query(
	ctx context.Context, collection string, vector []float32, limit int, filter *port.Filter,
) ([]domain.IndexedRecord, error) {
	req := qdrantQueryRequest{
		Query:       vector,
		Limit:       limit,
		WithPayload: true,
	}
	if filter != nil {
		req.Filter = &qdrantFilter{Must: []qdrantCondition{{
			Key:   filter.Key,
			Match: qdrantMatch{Value: filter.Value},
		}}}
	}

	body, err := q.post(ctx, "/collections/"+url.PathEscape(collection)+"/points/query", req)
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	var resp struct {
		Result struct {
			Points []qdrantPoint `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("qdrant query decode: %w", err)
	}

	records := make([]domain.IndexedRecord, 0, len(resp.Result.Points))
	for _, p := range resp.Result.Points {
		rec, err := toRecord(p)
		if err != nil {
			return nil, fmt.Errorf("qdrant query: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close releases idle connections.
func (q *QdrantIndex) Close() error {
	q.httpClient.CloseIdleConnections()
	return nil
}

// post sends a JSON body to the Qdrant API. Connection failures and 5xx
// answers are reported as port.ErrStoreUnavailable.
func (q *QdrantIndex) post(ctx context.Context, path string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	start := time.Now()
	resp, err := q.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", port.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", port.ErrStoreUnavailable, err)
	}
	q.logger.Debug("qdrant request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: qdrant API error (%d): %s", port.ErrStoreUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("qdrant API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

// toRecord converts a Qdrant point; ids may be UUID strings or unsigned integers.
func toRecord(p qdrantPoint) (domain.IndexedRecord, error) {
	var id string
	if err := json.Unmarshal(p.ID, &id); err != nil {
		var n uint64
		if err := json.Unmarshal(p.ID, &n); err != nil {
			return domain.IndexedRecord{}, fmt.Errorf("unsupported point id %s", string(p.ID))
		}
		id = strconv.FormatUint(n, 10)
	}
	return domain.IndexedRecord{ID: id, Payload: p.Payload, Score: p.Score}, nil
}
