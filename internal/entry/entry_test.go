package entry

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalita/internal/record"
)

func props(t *testing.T, e Entry) map[string]any {
	t.Helper()
	p, err := e.ToProps()
	require.NoError(t, err)
	return p.Map()
}

func upper(state any) (any, error) {
	s, _ := state.(string)
	return strings.ToUpper(s), nil
}

func TestEntryDefaults(t *testing.T) {
	p := props(t, Text("test_field"))

	assert.Equal(t, KindText, p["component"])
	assert.Equal(t, "test_field", p["name"])
	assert.Equal(t, "Test field", p["label"])
	assert.Nil(t, p["state"])
	assert.Equal(t, false, p["copyable"])
	assert.Equal(t, "-", p["placeholder"])
	assert.Nil(t, p["color"])
	assert.Nil(t, p["icon"])
	assert.Nil(t, p["iconColor"])
	assert.Nil(t, p["tooltip"])
	assert.Equal(t, false, p["hidden"])
}

func TestEntryBaseKeysComeFirst(t *testing.T) {
	p, err := Text("name").ToProps()
	require.NoError(t, err)

	keys := p.Keys()
	require.GreaterOrEqual(t, len(keys), 12)
	assert.Equal(t, []string{"component", "name", "label"}, keys[:3])
	assert.Contains(t, keys, "limit")
}

func TestEntryCopyable(t *testing.T) {
	e := Text("name")
	assert.False(t, e.IsCopyable())

	e.Copyable(true)
	assert.True(t, e.IsCopyable())

	e.Copyable(false)
	assert.False(t, e.IsCopyable())
}

func TestEntryPlaceholder(t *testing.T) {
	e := Text("name").Placeholder("N/A")

	assert.Equal(t, "N/A", props(t, e)["placeholder"])
}

func TestEntryFormatState(t *testing.T) {
	e := Text("name").FormatStateUsing(upper)

	got, err := e.FormatState("hello")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)

	again, err := e.FormatState("hello")
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestEntryFormatStateWithoutFormatter(t *testing.T) {
	got, err := Text("name").FormatState("test")
	require.NoError(t, err)
	assert.Equal(t, "test", got)
}

func TestEntryFormatterIsReplacedNotChained(t *testing.T) {
	e := Text("name").
		FormatStateUsing(upper).
		FormatStateUsing(func(state any) (any, error) { return "second", nil })

	got, err := e.FormatState("x")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestEntryFormatterReturningNil(t *testing.T) {
	e := Text("name").FormatStateUsing(func(any) (any, error) { return nil, nil })

	require.NoError(t, e.Fill(record.FromMap(map[string]any{"name": "x"})))
	assert.Nil(t, e.GetState())
}

func TestEntryLiteralDirectives(t *testing.T) {
	e := Text("name").
		Label("Full Name").
		Color("blue").
		Icon("heroicon-o-user").
		Tooltip("hint").
		Copyable(true).
		State("John Doe")

	p := props(t, e)
	assert.Equal(t, "Full Name", p["label"])
	assert.Equal(t, "John Doe", p["state"])
	assert.Equal(t, true, p["copyable"])
	assert.Equal(t, "blue", p["color"])
	assert.Equal(t, "heroicon-o-user", p["icon"])
	assert.Equal(t, "hint", p["tooltip"])
}

func TestEntryComputedDirectivesSeeFormattedState(t *testing.T) {
	var seen any
	e := Text("status").
		FormatStateUsing(upper).
		ColorUsing(func(state any) string {
			seen = state
			if state == "ACTIVE" {
				return "success"
			}
			return ""
		}).
		IconColorUsing(func(any) string { return "primary" })

	require.NoError(t, e.Fill(record.FromMap(map[string]any{"status": "active"})))

	assert.Equal(t, "success", e.GetColor())
	assert.Equal(t, "ACTIVE", seen)
	assert.Equal(t, "primary", e.GetIconColor())
	assert.Nil(t, e.GetIcon())
}

func TestEntryComputedEmptyIsNull(t *testing.T) {
	e := Text("x").ColorUsing(func(any) string { return "" })

	assert.Nil(t, props(t, e)["color"])
}

func TestEntryStateStoresValueAsGiven(t *testing.T) {
	e := Text("name").State(nil)
	assert.Nil(t, e.GetState())

	e.State(0)
	assert.Equal(t, 0, e.GetState())
}

func TestEntryFillFromAttribute(t *testing.T) {
	rec := record.FromMap(map[string]any{"name": "John Doe", "email": "john@example.com"})

	e := Text("name")
	require.NoError(t, e.Fill(rec))
	assert.Equal(t, "John Doe", e.GetState())
}

func TestEntryFillMissingAttribute(t *testing.T) {
	rec := record.FromMap(map[string]any{"name": "Test"})

	e := Text("nonexistent")
	require.NoError(t, e.Fill(rec))

	assert.Nil(t, e.GetState())
	p := props(t, e)
	assert.Nil(t, p["state"])
	assert.Equal(t, "-", p["placeholder"])
}

func TestEntryFillAppliesFormatter(t *testing.T) {
	e := Text("name").FormatStateUsing(func(state any) (any, error) {
		s := state.(string)
		return strings.ToUpper(s[:1]) + s[1:], nil
	})

	require.NoError(t, e.Fill(record.FromMap(map[string]any{"name": "john"})))
	assert.Equal(t, "John", e.GetState())
}

func TestEntryFillRelation(t *testing.T) {
	rec := record.FromMap(nil).
		SetRelation("group", record.FromMap(map[string]any{"title": "Test Title"}))

	e := Text("group.title")
	require.NoError(t, e.Fill(rec))
	assert.Equal(t, "Test Title", e.GetState())
	assert.Equal(t, "Title", e.GetLabel())
}

func TestEntryFillCollectionRelation(t *testing.T) {
	rec := record.FromMap(nil).SetRelation("items", record.Collection{
		record.FromMap(map[string]any{"name": "Item 1"}),
		record.FromMap(map[string]any{"name": "Item 2"}),
	})

	e := Text("items.name")
	require.NoError(t, e.Fill(rec))
	assert.Equal(t, []any{"Item 1", "Item 2"}, e.GetState())
}

func TestEntryFillFormatterErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	e := Text("name").
		State("before").
		FormatStateUsing(func(any) (any, error) { return nil, boom })

	err := e.Fill(record.FromMap(map[string]any{"name": "x"}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "before", e.GetState())
}

func TestEntryVisibilityIsEvaluatedEveryTime(t *testing.T) {
	calls := 0
	e := Text("name").VisibleWhen(func(rec record.Record) bool {
		calls++
		v, _ := rec.Attribute("show")
		return v == true
	})

	assert.True(t, e.IsVisible(record.FromMap(map[string]any{"show": true})))
	assert.False(t, e.IsVisible(record.FromMap(map[string]any{"show": false})))
	assert.Equal(t, 2, calls)

	e.Hidden(true)
	assert.False(t, e.IsVisible(record.FromMap(map[string]any{"show": true})))
	assert.Equal(t, 2, calls)
}

func TestHeadline(t *testing.T) {
	cases := map[string]string{
		"name":             "Name",
		"created_at":       "Created at",
		"group.title":      "Title",
		"firstName":        "First name",
		"key-value":        "Key value",
		"":                 "",
		"items.created_at": "Created at",
	}
	for in, want := range cases {
		assert.Equal(t, want, headline(in), in)
	}
}

func TestEntryInterfaceIsSatisfied(t *testing.T) {
	all := []Entry{
		Text("a"), Badge("b"), Icon("c"), Image("d"),
		Color("e"), Code("f"), KeyValue("g"), Repeatable("h"),
	}
	kinds := map[string]bool{}
	for _, e := range all {
		p := props(t, e)
		assert.Equal(t, e.Kind(), p["component"])
		kinds[e.Kind()] = true
	}
	assert.Len(t, kinds, 8)
}
