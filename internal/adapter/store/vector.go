package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

// PgVectorIndex implements port.VectorIndex on a pgvector table where every
// collection is a partition keyed by the collection column.
type PgVectorIndex struct {
	store *PostgresStore
	table string
}

// NewPgVectorIndex creates a vector index backed by the given Postgres store.
func NewPgVectorIndex(store *PostgresStore, table string) *PgVectorIndex {
	if table == "" {
		table = DefaultRecordsTable
	}
	return &PgVectorIndex{store: store, table: table}
}

// Retrieve fetches one record by id.
func (v *PgVectorIndex) Retrieve(ctx context.Context, collection, id string) (*domain.IndexedRecord, error) {
	query := `SELECT id::text, payload FROM ` + pq.QuoteIdentifier(v.table) + `
	          WHERE collection = $1 AND id::text = $2`

	var (
		rec     domain.IndexedRecord
		payload []byte
	)
	err := v.store.db.QueryRowContext(ctx, query, collection, id).Scan(&rec.ID, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("retrieve record: %w", classifyPgError(err))
	}
	if err := json.Unmarshal(payload, &rec.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &rec, nil
}

// Query performs a cosine similarity search, optionally filtered on one payload key.
func (v *PgVectorIndex) Query(
	ctx context.Context, collection string, vector []float32, limit int, filter *port.Filter,
) ([]domain.IndexedRecord, error) {
	query, args := v.buildQuery(collection, vector, limit, filter)

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search similar: %w", classifyPgError(err))
	}
	defer rows.Close()

	var results []domain.IndexedRecord
	for rows.Next() {
		var (
			rec     domain.IndexedRecord
			payload []byte
		)
		if err := rows.Scan(&rec.ID, &payload, &rec.Score); err != nil {
			return nil, fmt.Errorf("scan similar: %w", err)
		}
		if err := json.Unmarshal(payload, &rec.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search similar: %w", classifyPgError(err))
	}
	return results, nil
}

// Close closes the underlying pool.
func (v *PgVectorIndex) Close() error {
	return v.store.Close()
}

func (v *PgVectorIndex) buildQuery(collection string, vector []float32, limit int, filter *port.Filter) (string, []any) {
	args := []any{collection, vectorToString(vector), limit}

	var where strings.Builder
	where.WriteString("collection = $1")
	if filter != nil {
		args = append(args, filter.Key, filter.Value)
		where.WriteString(" AND payload->>$4 = $5")
	}

	query := `SELECT id::text, payload, 1 - (embedding <=> $2::vector) AS similarity
	          FROM ` + pq.QuoteIdentifier(v.table) + `
	          WHERE ` + where.String() + `
	          ORDER BY embedding <=> $2::vector
	          LIMIT $3`
	return query, args
}

// vectorToString converts a float32 slice to pgvector text format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
