package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arturoeanton/go-module-pack/internal/domain"
	"github.com/arturoeanton/go-module-pack/internal/port"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryIndex ranks records by cosine similarity in memory.
type memoryIndex struct {
	mu      sync.Mutex
	records map[string][]domain.IndexedRecord
	err     error
	queries int
}

func newMemoryIndex() *memoryIndex {
	return &memoryIndex{records: map[string][]domain.IndexedRecord{}}
}

func (m *memoryIndex) add(collection string, rec domain.IndexedRecord) {
	m.records[collection] = append(m.records[collection], rec)
}

func (m *memoryIndex) Retrieve(_ context.Context, collection, id string) (*domain.IndexedRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, r := range m.records[collection] {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memoryIndex) Query(_ context.Context, collection string, vector []float32, limit int, filter *port.Filter) ([]domain.IndexedRecord, error) {
	m.mu.Lock()
	m.queries++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.IndexedRecord
	for _, r := range m.records[collection] {
		if filter != nil && r.Field(filter.Key) != filter.Value {
			continue
		}
		r.Score = cosine(vector, r.Vector)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryIndex) Close() error { return nil }

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

type mapEncoder struct {
	vectors map[string][]float32
	err     error
}

func (e *mapEncoder) ModelID() string { return "test:map" }

func (e *mapEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 1, 1}, nil
}

type stubInspector struct {
	callables []string
	docs      map[string]*string
	err       error
}

func (s *stubInspector) Name() string { return "stub" }

func (s *stubInspector) ListCallables(context.Context, string) ([]string, error) {
	return s.callables, s.err
}

func (s *stubInspector) Docstring(_ context.Context, module, object string) (*string, error) {
	if s.err != nil {
		return nil, s.err
	}
	doc, ok := s.docs[object]
	if !ok {
		return nil, fmt.Errorf("%w: module '%s' has no attribute '%s'", port.ErrModuleLoad, module, object)
	}
	return doc, nil
}

func strPtr(s string) *string { return &s }

func fixture() (*ModuleQueryService, *memoryIndex, *mapEncoder) {
	idx := newMemoryIndex()
	idx.add("pkg", domain.IndexedRecord{
		ID: "1", Vector: []float32{1, 0, 0},
		Payload: map[string]any{"name": "load", "type": "function", "docstring": "Load data.", "source_code": "def load(): ..."},
	})
	idx.add("pkg", domain.IndexedRecord{
		ID: "2", Vector: []float32{0.8, 0.6, 0},
		Payload: map[string]any{"name": "Store", "type": "class", "docstring": "A store.", "source_code": "class Store: ..."},
	})
	idx.add("pkg", domain.IndexedRecord{
		ID: "3", Vector: []float32{0, 1, 0},
		Payload: map[string]any{"name": "save", "type": "function", "docstring": "Save data.", "source_code": "def save(): ..."},
	})
	idx.add("pkg", domain.IndexedRecord{
		ID: "4", Vector: []float32{0, 0, 1},
		Payload: map[string]any{"name": "quickstart.md", "type": "doc", "source_code": "# Quickstart"},
	})
	enc := &mapEncoder{vectors: map[string][]float32{
		"loading": {1, 0, 0},
		"saving":  {0, 1, 0},
	}}
	insp := &stubInspector{callables: []string{"alpha", "beta"}, docs: map[string]*string{"alpha": strPtr("First."), "beta": nil, "blank": strPtr("")}}
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, idx, enc, insp, discardLogger())
	return svc, idx, enc
}

func TestSummary(t *testing.T) {
	t.Parallel()
	idx := newMemoryIndex()
	idx.add("pkg", domain.IndexedRecord{ID: domain.ReadmeID(), Payload: map[string]any{"readme_content": "Hello"}})
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, idx, &mapEncoder{}, &stubInspector{}, discardLogger())

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
}

func TestSummaryMissing(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{}, discardLogger())

	got, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "No README configured for pkg module.", got)
}

func TestCollectionDefaultsToModule(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{}, discardLogger())
	assert.Equal(t, "pkg", svc.Collection())

	svc = NewModuleQueryService(ModuleOptions{Module: "pkg", Collection: "pkg_v2"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{}, discardLogger())
	assert.Equal(t, "pkg_v2", svc.Collection())
}

func TestSearchDocstrings(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	got, err := svc.SearchDocstrings(context.Background(), "loading", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "RESULT NUMBER: 1:\nNAME: load\nTYPE: function\nDOCSTRING:\n Load data.\n", got[0])
	assert.Equal(t, "RESULT NUMBER: 2:\nNAME: Store\nTYPE: class\nDOCSTRING:\n A store.\n", got[1])
}

func TestSearchDocstringsLimit(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	tests := []struct {
		limit int
		want  int
	}{
		{1, 1},
		{0, DefaultSearchLimit},
		{-4, DefaultSearchLimit},
		{10, 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.limit), func(t *testing.T) {
			got, err := svc.SearchDocstrings(context.Background(), "loading", tt.limit)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSearchDocstringsEmpty(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{}, discardLogger())

	got, err := svc.SearchDocstrings(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSourceCode(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	got, err := svc.SourceCode(context.Background(), "save")
	require.NoError(t, err)
	assert.Equal(t, "NAME: save\nTYPE: function\nSOURCE CODE:\ndef save(): ...", got)

	got, err = svc.SourceCode(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "No function or class named 'nonexistent' found in pkg module.", got)
}

func TestSourceCodeIdempotent(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	first, err := svc.SourceCode(context.Background(), "Store")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.SourceCode(context.Background(), "Store")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDocstring(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	got, err := svc.Docstring(context.Background(), "Store")
	require.NoError(t, err)
	assert.Equal(t, "NAME: Store\nTYPE: class\nDOCSTRING:\nA store.", got)

	got, err = svc.Docstring(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "No function or class named 'missing' found in pkg module.", got)
}

func TestSearchDocs(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()

	got, err := svc.SearchDocs(context.Background(), "getting started")
	require.NoError(t, err)
	assert.Equal(t, domain.DocResult{Name: "quickstart.md", Type: "doc", Result: "# Quickstart"}, got)
}

func TestSearchDocsPlaceholder(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{}, discardLogger())

	got, err := svc.SearchDocs(context.Background(), "plotting")
	require.NoError(t, err)
	assert.Equal(t, domain.DocResult{
		Name:   "No examples found",
		Type:   "none",
		Result: `No usage examples related to "plotting" in pkg`,
	}, got)
}

func TestInfrastructureErrorsPropagate(t *testing.T) {
	t.Parallel()
	svc, idx, enc := fixture()
	ctx := context.Background()

	idx.err = fmt.Errorf("%w: connection refused", port.ErrStoreUnavailable)
	_, err := svc.SourceCode(ctx, "save")
	assert.ErrorIs(t, err, port.ErrStoreUnavailable)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, port.ErrStoreUnavailable)

	idx.err = nil
	enc.err = fmt.Errorf("%w: model missing", port.ErrEncoder)
	_, err = svc.SearchDocs(ctx, "x")
	assert.ErrorIs(t, err, port.ErrEncoder)
	_, err = svc.SearchDocstrings(ctx, "x", 3)
	assert.ErrorIs(t, err, port.ErrEncoder)
}

func TestFunctions(t *testing.T) {
	t.Parallel()
	svc, idx, _ := fixture()

	got, err := svc.Functions(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, got)
	assert.Zero(t, idx.queries)
}

func TestFunctionsLoadFailure(t *testing.T) {
	t.Parallel()
	insp := &stubInspector{err: fmt.Errorf("%w: No module named 'pkg'", port.ErrModuleLoad)}
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, insp, discardLogger())

	got, err := svc.Functions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Error: No module named 'pkg'"}, got)
}

func TestFunctionsDisabled(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{err: port.ErrIntrospectionDisabled}, discardLogger())

	got, err := svc.Functions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Error: live introspection disabled"}, got)
}

func TestFunctionsUnexpectedError(t *testing.T) {
	t.Parallel()
	svc := NewModuleQueryService(ModuleOptions{Module: "pkg"}, newMemoryIndex(), &mapEncoder{}, &stubInspector{err: context.Canceled}, discardLogger())

	_, err := svc.Functions(context.Background())
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestLiveDocstring(t *testing.T) {
	t.Parallel()
	svc, _, _ := fixture()
	ctx := context.Background()

	doc, err := svc.LiveDocstring(ctx, "", "alpha")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "First.", *doc)

	doc, err = svc.LiveDocstring(ctx, "pkg", "beta")
	require.NoError(t, err)
	assert.Nil(t, doc)

	doc, err = svc.LiveDocstring(ctx, "", "blank")
	require.NoError(t, err)
	require.NotNil(t, doc, "an empty docstring is not the same as none")
	assert.Empty(t, *doc)

	doc, err = svc.LiveDocstring(ctx, "", "gamma")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Error: module 'pkg' has no attribute 'gamma'", *doc)
}
