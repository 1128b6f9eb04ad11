package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, it := range issues {
		out = append(out, it.Code)
	}
	return out
}

func TestLintCleanInfolist(t *testing.T) {
	def, ents := load(t, cardDSL)

	issues := Lint(def, ents)
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func TestLintFindsProblems(t *testing.T) {
	src := `module core

entity Group:
  title: string

entity User:
  name: string
  group: ref[Group]
  owner: ref[Ghost]

infolist Card for User:
  nickname: text
  name.first: text
  group.title.deep: text
  group.missing: text
  owner.name: text
  id: text
  section Empty:
  name: repeatable
    x: text
`
	def, ents := load(t, src)
	issues := Lint(def, ents)

	assert.ElementsMatch(t, []string{
		"field_unknown",         // nickname
		"not_a_relation",        // name.first
		"path_too_deep",         // group.title.deep
		"related_field_unknown", // group.missing
		"ref_target_unknown",    // owner.name
		"section_empty",
		"repeatable_not_collection",
	}, codes(issues))
	assert.True(t, HasErrors(issues))

	for _, it := range issues {
		assert.Equal(t, "core.Card", it.Infolist)
		if it.Code == "path_too_deep" || it.Code == "related_field_unknown" {
			assert.Equal(t, SeverityWarning, it.Severity)
		}
	}
}

func TestLintWarningsAreNotErrors(t *testing.T) {
	src := "module core\nentity Group:\n  title: string\nentity User:\n  group: ref[Group]\ninfolist Card for User:\n  group.title.x: text\n"
	def, ents := load(t, src)

	issues := Lint(def, ents)
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, 7, issues[0].Line)
	assert.False(t, HasErrors(issues))
}

func TestLintUnknownTargetEntity(t *testing.T) {
	def, _ := load(t, "module core\ninfolist Card for Nobody:\n  name: text\n")

	issues := Lint(def, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "entity_unknown", issues[0].Code)
}

func TestLintReportsBuildErrors(t *testing.T) {
	src := "module core\nentity User:\n  name: string\ninfolist Card for User:\n  name: text sparkle\n"
	def, ents := load(t, src)

	assert.Equal(t, []string{"build_failed"}, codes(Lint(def, ents)))
}

func TestLintUnknownKind(t *testing.T) {
	src := "module core\nentity User:\n  name: string\ninfolist Card for User:\n  name: ticker\n"
	def, ents := load(t, src)

	assert.Equal(t, []string{"kind_unknown", "build_failed"}, codes(Lint(def, ents)))
}
