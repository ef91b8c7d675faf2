package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

// Search limits for docstring search.
const (
	DefaultSearchLimit = 3
	MaxSearchLimit     = 50
)

// ModuleOptions names the module served and the collection holding its records.
type ModuleOptions struct {
	Module     string
	Collection string // defaults to Module
}

// ModuleQueryService answers documentation queries about one module.
// Content absence is reported as text; store and encoder failures are returned as errors.
type ModuleQueryService struct {
	module     string
	collection string
	index      port.VectorIndex
	encoder    port.Encoder
	inspector  port.Inspector
	logger     *slog.Logger
}

// NewModuleQueryService creates a query service. All collaborators are shared
// across concurrent calls.
func NewModuleQueryService(opts ModuleOptions, index port.VectorIndex, encoder port.Encoder, inspector port.Inspector, logger *slog.Logger) *ModuleQueryService {
	collection := opts.Collection
	if collection == "" {
		collection = opts.Module
	}
	return &ModuleQueryService{
		module:     opts.Module,
		collection: collection,
		index:      index,
		encoder:    encoder,
		inspector:  inspector,
		logger:     logger,
	}
}

// Module returns the served module name.
func (s *ModuleQueryService) Module() string { return s.module }

// Collection returns the vector store collection queried.
func (s *ModuleQueryService) Collection() string { return s.collection }

// Summary returns the README content stored under the deterministic readme id.
func (s *ModuleQueryService) Summary(ctx context.Context) (string, error) {
	rec, err := s.index.Retrieve(ctx, s.collection, domain.ReadmeID())
	if err != nil {
		return "", fmt.Errorf("retrieve readme: %w", err)
	}
	if rec == nil {
		s.logger.Warn("readme record not found", "collection", s.collection)
		return fmt.Sprintf("No README configured for %s module.", s.module), nil
	}
	return rec.Field(domain.FieldReadmeContent), nil
}

// SearchDocstrings returns up to limit formatted entries ranked by similarity
// to query. A non-positive limit falls back to DefaultSearchLimit.
func (s *ModuleQueryService) SearchDocstrings(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	hits, err := s.nearest(ctx, query, limit, nil)
	if err != nil {
		return nil, err
	}

	entries := make([]string, 0, len(hits))
	for i, hit := range hits {
		entries = append(entries, fmt.Sprintf("RESULT NUMBER: %d:\nNAME: %s\nTYPE: %s\nDOCSTRING:\n %s\n",
			i+1, hit.Name(), hit.Type(), hit.Field(domain.FieldDocstring)))
	}
	return entries, nil
}

// SourceCode returns the source of the function or class named exactly name.
func (s *ModuleQueryService) SourceCode(ctx context.Context, name string) (string, error) {
	hit, err := s.exact(ctx, name)
	if err != nil {
		return "", err
	}
	if hit == nil {
		return s.notFound(name), nil
	}
	return fmt.Sprintf("NAME: %s\nTYPE: %s\nSOURCE CODE:\n%s",
		hit.Name(), hit.Type(), hit.Field(domain.FieldSourceCode)), nil
}

// Docstring returns the indexed docstring of the function or class named exactly name.
func (s *ModuleQueryService) Docstring(ctx context.Context, name string) (string, error) {
	hit, err := s.exact(ctx, name)
	if err != nil {
		return "", err
	}
	if hit == nil {
		return s.notFound(name), nil
	}
	return fmt.Sprintf("NAME: %s\nTYPE: %s\nDOCSTRING:\n%s",
		hit.Name(), hit.Type(), hit.Field(domain.FieldDocstring)), nil
}

// SearchDocs returns the usage document closest to topic, or a placeholder.
func (s *ModuleQueryService) SearchDocs(ctx context.Context, topic string) (domain.DocResult, error) {
	hits, err := s.nearest(ctx, topic, 1, port.TypeFilter(domain.RecordDoc))
	if err != nil {
		return domain.DocResult{}, err
	}
	if len(hits) == 0 {
		return domain.DocResult{
			Name:   "No examples found",
			Type:   "none",
			Result: fmt.Sprintf("No usage examples related to %q in %s", topic, s.module),
		}, nil
	}
	hit := hits[0]
	return domain.DocResult{
		Name:   hit.Name(),
		Type:   string(hit.Type()),
		Result: hit.Field(domain.FieldSourceCode),
	}, nil
}

// LiveDocstring loads module at call time and returns the docstring of object.
// A nil result means the object has no docstring. Load failures come back as
// "Error: ..." text.
func (s *ModuleQueryService) LiveDocstring(ctx context.Context, module, object string) (*string, error) {
	if module == "" {
		module = s.module
	}
	doc, err := s.inspector.Docstring(ctx, module, object)
	if err != nil {
		msg, ok := s.loadFailure(err, module)
		if !ok {
			return nil, err
		}
		return &msg, nil
	}
	return doc, nil
}

// Functions lists the callables of the served module, loaded at call time.
// A load failure yields a single "Error: ..." entry.
func (s *ModuleQueryService) Functions(ctx context.Context) ([]string, error) {
	names, err := s.inspector.ListCallables(ctx, s.module)
	if err != nil {
		msg, ok := s.loadFailure(err, s.module)
		if !ok {
			return nil, err
		}
		return []string{msg}, nil
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *ModuleQueryService) exact(ctx context.Context, name string) (*domain.IndexedRecord, error) {
	hits, err := s.nearest(ctx, name, 1, port.NameFilter(name))
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, nil
	}
	return &hits[0], nil
}

func (s *ModuleQueryService) nearest(ctx context.Context, text string, limit int, filter *port.Filter) ([]domain.IndexedRecord, error) {
	vector, err := s.encoder.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	hits, err := s.index.Query(ctx, s.collection, vector, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.collection, err)
	}
	return hits, nil
}

func (s *ModuleQueryService) notFound(name string) string {
	return fmt.Sprintf("No function or class named '%s' found in %s module.", name, s.module)
}

// loadFailure renders introspection errors as agent-readable text.
// Cancellation and unexpected errors are not converted.
func (s *ModuleQueryService) loadFailure(err error, module string) (string, bool) {
	switch {
	case errors.Is(err, port.ErrModuleLoad):
		s.logger.Info("live introspection failed", "module", module, "error", err)
		reason := strings.TrimPrefix(err.Error(), port.ErrModuleLoad.Error()+": ")
		return "Error: " + reason, true
	case errors.Is(err, port.ErrIntrospectionDisabled):
		return "Error: " + err.Error(), true
	default:
		return "", false
	}
}
