package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/arturoeanton/go-module-pack/internal/port"
)

// DefaultRecordsTable is the table the ingestion pipeline writes module records to.
//
//	CREATE TABLE module_records (
//	    collection TEXT   NOT NULL,
//	    id         UUID   NOT NULL,
//	    payload    JSONB  NOT NULL,
//	    embedding  vector NOT NULL,
//	    PRIMARY KEY (collection, id)
//	);
const DefaultRecordsTable = "module_records"

// PostgresStore owns the connection pool to a pgvector-enabled Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", classifyPgError(err))
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// classifyPgError marks everything that is not a server-side SQL error as
// the store being unavailable.
func classifyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s: %w", pqErr.Code.Name(), err)
	}
	return fmt.Errorf("%w: %v", port.ErrStoreUnavailable, err)
}
