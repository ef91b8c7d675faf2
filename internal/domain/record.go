package domain

import "fmt"

// RecordType classifies an indexed object inside a module collection.
type RecordType string

const (
	RecordFunction RecordType = "function"
	RecordClass    RecordType = "class"
	RecordDoc      RecordType = "doc"
	RecordReadme   RecordType = "readme"
)

// Payload keys written by the ingestion pipeline.
const (
	FieldName          = "name"
	FieldType          = "type"
	FieldDocstring     = "docstring"
	FieldSourceCode    = "source_code"
	FieldReadmeContent = "readme_content"
)

// IndexedRecord is one point of a module collection in the vector store.
type IndexedRecord struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"-"`
	Payload map[string]any `json:"payload"`
	Score   float64        `json:"score,omitempty"` // similarity, set by nearest-neighbour queries
}

// Field returns the payload value under key as text. Missing keys yield "".
func (r IndexedRecord) Field(key string) string {
	v, ok := r.Payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Name returns the payload name of the record.
func (r IndexedRecord) Name() string {
	return r.Field(FieldName)
}

// Type returns the payload type of the record.
func (r IndexedRecord) Type() RecordType {
	return RecordType(r.Field(FieldType))
}
