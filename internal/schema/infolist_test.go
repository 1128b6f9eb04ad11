package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalita/internal/entry"
	"kalita/internal/record"
)

func names(components []Component) []string {
	out := make([]string, 0, len(components))
	for _, c := range components {
		out = append(out, c.Name())
	}
	return out
}

func TestNewDefaultName(t *testing.T) {
	assert.Equal(t, "infolist", New("").Name())
	assert.Equal(t, "user", New("user").Name())
	assert.Equal(t, 1, New("").GetColumns())
	assert.Equal(t, 1, New("").Columns(0).GetColumns())
}

func TestVisibleComponentsEvaluatedPerCall(t *testing.T) {
	calls := 0
	flagged := entry.Text("secret").VisibleWhen(func(rec record.Record) bool {
		calls++
		v, _ := rec.Attribute("admin")
		return v == true
	})
	l := New("").Schema(entry.Text("name"), flagged, entry.Text("gone").Hidden(true))

	admin := record.FromMap(map[string]any{"admin": true})
	guest := record.FromMap(map[string]any{"admin": false})

	assert.Equal(t, []string{"name", "secret"}, names(l.VisibleComponents(admin)))
	assert.Equal(t, []string{"name"}, names(l.VisibleComponents(guest)))
	assert.Equal(t, []string{"name", "secret"}, names(l.VisibleComponents(admin)))
	assert.Equal(t, 3, calls)
}

func TestFillOnlyVisible(t *testing.T) {
	shown := entry.Text("name")
	hidden := entry.Text("email").Hidden(true)
	l := New("").Schema(shown, hidden)

	require.NoError(t, l.Fill(record.FromMap(map[string]any{"name": "Ann", "email": "a@b.c"})))

	assert.Equal(t, "Ann", shown.GetState())
	assert.Nil(t, hidden.GetState())
}

func TestFillRecursesIntoSections(t *testing.T) {
	inner := entry.Text("group.title")
	l := New("").Schema(NewSection("Group").Schema(inner))

	rec := record.FromMap(nil).SetRelation("group", record.FromMap(map[string]any{"title": "Ops"}))
	require.NoError(t, l.Fill(rec))

	assert.Equal(t, "Ops", inner.GetState())
}

func TestFillStopsOnFormatterError(t *testing.T) {
	l := New("").Schema(entry.Text("created_at").Date(""))

	err := l.Fill(record.FromMap(map[string]any{"created_at": "yesterday-ish"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fill created_at")
}

func TestToProps(t *testing.T) {
	l := New("user").Columns(2).Schema(
		entry.Text("name"),
		NewSection("Contact details").
			Description("How to reach").
			Collapsed(true).
			Columns(3).
			Schema(entry.Text("email"), entry.Text("phone").Hidden(true)),
	)
	rec := record.FromMap(map[string]any{"name": "Ann", "email": "ann@example.com"})

	p, err := l.Render(rec)
	require.NoError(t, err)

	m := p.Map()
	assert.Equal(t, KindInfolist, m["component"])
	assert.Equal(t, "user", m["name"])
	assert.Equal(t, 2, m["columns"])

	schema := m["schema"].([]*entry.Props)
	require.Len(t, schema, 2)
	assert.Equal(t, "Ann", schema[0].Get("state"))

	section := schema[1].Map()
	assert.Equal(t, KindSection, section["component"])
	assert.Equal(t, "contact_details", section["name"])
	assert.Equal(t, "Contact details", section["heading"])
	assert.Equal(t, "How to reach", section["description"])
	assert.Equal(t, true, section["collapsible"])
	assert.Equal(t, true, section["collapsed"])
	assert.Equal(t, 3, section["columns"])

	children := section["schema"].([]*entry.Props)
	require.Len(t, children, 1)
	assert.Equal(t, "ann@example.com", children[0].Get("state"))
}

func TestToPropsJSONKeepsKeyOrder(t *testing.T) {
	p, err := New("").Schema(entry.Text("name")).ToProps(record.FromMap(nil))
	require.NoError(t, err)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"component":"infolist","name":"infolist","columns":1,"schema":\[\{"component":"text_entry","name":"name",`, string(out))
}

func TestSectionVisibility(t *testing.T) {
	s := NewSection("Admin").VisibleWhen(func(rec record.Record) bool {
		v, _ := rec.Attribute("admin")
		return v == true
	})
	l := New("").Schema(s.Schema(entry.Text("x")))

	assert.Empty(t, l.VisibleComponents(record.FromMap(map[string]any{"admin": false})))
	assert.Len(t, l.VisibleComponents(record.FromMap(map[string]any{"admin": true})), 1)

	s.Hidden(true)
	assert.Empty(t, l.VisibleComponents(record.FromMap(map[string]any{"admin": true})))
}

func TestSectionDefaults(t *testing.T) {
	p, err := NewSection("Details").ToProps()
	require.NoError(t, err)

	m := p.Map()
	assert.Nil(t, m["description"])
	assert.Equal(t, false, m["collapsible"])
	assert.Equal(t, false, m["collapsed"])
	assert.Equal(t, 1, m["columns"])
	assert.Equal(t, []*entry.Props{}, m["schema"])
}
