package domain

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_Stable(t *testing.T) {
	t.Parallel()

	for _, key := range []string{"", "readme", "numpy.array", "Ünïcödé", "a b c"} {
		assert.Equal(t, RecordID(key), RecordID(key), "key %q", key)
	}
}

func TestRecordID_KnownValue(t *testing.T) {
	t.Parallel()

	// uuid.uuid5(uuid.NAMESPACE_DNS, "readme") as written by the indexer.
	want := uuid.NewSHA1(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), []byte("readme")).String()
	assert.Equal(t, want, ReadmeID())

	parsed, err := uuid.Parse(ReadmeID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

func TestRecordID_NoCollisions(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string, 5000)
	for i := 0; i < 5000; i++ {
		key := fmt.Sprintf("object_%d", i)
		id := RecordID(key)
		prev, dup := seen[id]
		require.False(t, dup, "collision between %q and %q", prev, key)
		seen[id] = key
	}
}

func TestIndexedRecord_Field(t *testing.T) {
	t.Parallel()

	rec := IndexedRecord{Payload: map[string]any{
		"name":  "load",
		"type":  "function",
		"lines": 12,
		"empty": nil,
	}}

	assert.Equal(t, "load", rec.Name())
	assert.Equal(t, RecordFunction, rec.Type())
	assert.Equal(t, "12", rec.Field("lines"))
	assert.Equal(t, "", rec.Field("empty"))
	assert.Equal(t, "", rec.Field("missing"))
	assert.Equal(t, "", IndexedRecord{}.Name())
}

func TestIdentity_HasScope(t *testing.T) {
	t.Parallel()

	id := &Identity{Subject: "octocat", Scopes: []string{"user"}}
	assert.True(t, id.HasScope("user"))
	assert.False(t, id.HasScope("admin"))

	var none *Identity
	assert.False(t, none.HasScope("user"))
}
