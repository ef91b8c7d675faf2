package port

import (
	"context"

	"github.com/arturoeanton/go-module-pack/internal/domain"
)

// Filter is an exact-match predicate on one payload field.
type Filter struct {
	Key   string
	Value string
}

// NameFilter matches records whose payload name equals name.
func NameFilter(name string) *Filter {
	return &Filter{Key: domain.FieldName, Value: name}
}

// TypeFilter matches records of the given type.
func TypeFilter(t domain.RecordType) *Filter {
	return &Filter{Key: domain.FieldType, Value: string(t)}
}

// VectorIndex is read-only access to a remote vector database.
// Implementations must be safe for concurrent use.
type VectorIndex interface {
	// Retrieve looks a record up by id. A missing record yields (nil, nil).
	Retrieve(ctx context.Context, collection, id string) (*domain.IndexedRecord, error)

	// Query returns up to limit records ordered by descending similarity to vector.
	// When filter is non-nil only matching records are ranked.
	Query(ctx context.Context, collection string, vector []float32, limit int, filter *Filter) ([]domain.IndexedRecord, error)

	// Close releases connections held by the client.
	Close() error
}
