package pg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kalita/internal/dsl"
	"kalita/internal/store"
)

const modelDSL = `module core

entity Group:
  title: string required

entity User:
  name: string required
  email: string unique
  age: int
  group: ref[Group]
  tags: array[ref[Group]]
  constraints:
    unique(name, age)
`

func entities(t *testing.T) map[string]*dsl.Entity {
	t.Helper()
	ents, _, err := dsl.Parse(strings.NewReader(modelDSL), "model.dsl")
	require.NoError(t, err)
	out := map[string]*dsl.Entity{}
	for _, e := range ents {
		out[e.FQN()] = e
	}
	return out
}

func TestGenerateDDL(t *testing.T) {
	ddl, err := GenerateDDL(entities(t))
	require.NoError(t, err)

	tables := ddl["000_schemas_and_tables"]
	assert.Equal(t, 1, strings.Count(tables, "create schema if not exists"))
	assert.Contains(t, tables, `create table if not exists "core"."groups"`)
	assert.Contains(t, tables, `create table if not exists "core"."users"`)
	assert.Contains(t, tables, `"data" jsonb not null`)
	assert.Contains(t, tables, `"ref_group" text generated always as (nullif((data->>'group'), '')) stored`)
	assert.NotContains(t, tables, "ref_tags")
	assert.Contains(t, tables, `create unique index if not exists "user_email_uq" on "core"."users" ((data->>'email'))`)
	assert.Contains(t, tables, `"user_name_age_uq" on "core"."users" ((data->>'name'), (data->>'age'))`)

	assert.Equal(t,
		`alter table "core"."users" add constraint "user_group_fk" foreign key ("ref_group") references "core"."groups"(id) on delete restrict;`+"\n",
		ddl["200_foreign_keys"])
}

func TestGenerateDDLUnknownTarget(t *testing.T) {
	ents, _, err := dsl.Parse(strings.NewReader("module core\nentity A:\n  b: ref[Ghost]\n"), "a.dsl")
	require.NoError(t, err)

	_, err = GenerateDDL(map[string]*dsl.Entity{"core.A": ents[0]})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ghost")
}

func TestGenerateDDLSystemFieldClash(t *testing.T) {
	ents, _, err := dsl.Parse(strings.NewReader("module core\nentity A:\n  version: int\n"), "a.dsl")
	require.NoError(t, err)

	_, err = GenerateDDL(map[string]*dsl.Entity{"core.A": ents[0]})
	require.Error(t, err)
}

func TestStatements(t *testing.T) {
	got := statements("create schema x;\ncreate table y (\n  a int,\n  b int\n);\n\n")
	assert.Equal(t, []string{"create schema x", "create table y (\n  a int,\n  b int\n)"}, got)
}

func TestSQLLiteralEscapes(t *testing.T) {
	assert.Equal(t, `(data->>'it''s')`, dataExpr("it's"))
}

func TestOrderBy(t *testing.T) {
	user := entities(t)["core.User"]

	got, err := orderBy(user, store.ListParams{})
	require.NoError(t, err)
	assert.Equal(t, `"id" asc`, got)

	got, err = orderBy(user, store.ListParams{
		Sort:  []store.SortKey{{Field: "name", Desc: true}, {Field: "created_at"}},
		Nulls: "first",
	})
	require.NoError(t, err)
	assert.Equal(t, `(data->>'name') desc nulls first, "created_at" asc nulls first, "id" asc`, got)

	_, err = orderBy(user, store.ListParams{Sort: []store.SortKey{{Field: "name; drop table x"}}})
	require.Error(t, err)
}
