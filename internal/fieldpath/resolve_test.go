package fieldpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"kalita/internal/record"
)

func TestResolvePlainAttribute(t *testing.T) {
	rec := record.FromMap(map[string]any{"name": "John Doe"})

	assert.Equal(t, "John Doe", Resolve(rec, "name"))
	assert.Nil(t, Resolve(rec, "nonexistent"))
}

func TestResolveSingleRelation(t *testing.T) {
	group := record.FromMap(map[string]any{"title": "Test Title"})
	rec := record.FromMap(map[string]any{}).SetRelation("group", group)

	assert.Equal(t, "Test Title", Resolve(rec, "group.title"))
	assert.Nil(t, Resolve(rec, "group.missing"))
}

func TestResolveCollectionRelation(t *testing.T) {
	rec := record.FromMap(nil).SetRelation("items", record.Collection{
		record.FromMap(map[string]any{"name": "Item 1"}),
		record.FromMap(map[string]any{"name": "Item 2"}),
	})

	assert.Equal(t, []any{"Item 1", "Item 2"}, Resolve(rec, "items.name"))
}

func TestResolveEmptyCollection(t *testing.T) {
	rec := record.FromMap(nil).SetRelation("items", record.Collection{})

	got := Resolve(rec, "items.name")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestResolveNilRelation(t *testing.T) {
	rec := record.FromMap(nil).SetRelation("group", nil)

	assert.Nil(t, Resolve(rec, "group.title"))
}

func TestResolveLazyLoad(t *testing.T) {
	calls := 0
	rec := &record.MapRecord{
		Load: func(name string) (any, error) {
			calls++
			require.Equal(t, "owner", name)
			return record.FromMap(map[string]any{"email": "a@b.c"}), nil
		},
	}

	assert.Equal(t, "a@b.c", Resolve(rec, "owner.email"))
	assert.Equal(t, "a@b.c", Resolve(rec, "owner.email"))
	assert.Equal(t, 1, calls, "loaded relation must not be loaded again")
}

func TestResolveLoadFailureIsSwallowed(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := Resolver{Log: zap.New(core)}
	rec := &record.MapRecord{
		Load: func(string) (any, error) { return nil, errors.New("db down") },
	}

	assert.Nil(t, r.Resolve(rec, "owner.email"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "relation load failed", logs.All()[0].Message)
}

func TestResolveNoLoaderMeansAbsent(t *testing.T) {
	rec := record.FromMap(map[string]any{"owner": "x"})

	assert.Nil(t, Resolve(rec, "owner.email"))
}

func TestResolveUsesOnlyTwoSegments(t *testing.T) {
	group := record.FromMap(map[string]any{"title": "T"})
	rec := record.FromMap(nil).SetRelation("group", group)

	assert.Equal(t, "T", Resolve(rec, "group.title.deeper"))
	assert.Equal(t, 3, Depth("group.title.deeper"))
}

func TestResolveNilRecord(t *testing.T) {
	assert.Nil(t, Resolve(nil, "name"))
}

func TestSplit(t *testing.T) {
	rel, attr, ok := Split("group.title")
	assert.True(t, ok)
	assert.Equal(t, "group", rel)
	assert.Equal(t, "title", attr)

	_, attr, ok = Split("name")
	assert.False(t, ok)
	assert.Equal(t, "name", attr)
}

func TestResolveBareNameFallsBackToRelation(t *testing.T) {
	items := record.Collection{record.FromMap(map[string]any{"sku": "A"})}
	rec := record.FromMap(map[string]any{"total": 3}).SetRelation("items", items)

	assert.Equal(t, items, Resolve(rec, "items"))
	assert.Equal(t, 3, Resolve(rec, "total"))
}

func TestResolveUnknownRelationIsNotLogged(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := Resolver{Log: zap.New(core)}

	assert.Nil(t, r.Resolve(record.FromMap(nil), "group.title"))
	assert.Equal(t, 0, logs.Len())
}
