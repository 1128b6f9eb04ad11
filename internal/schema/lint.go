package schema

import (
	"fmt"

	"kalita/internal/dsl"
	"kalita/internal/fieldpath"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue - замечание линтера к строке инфолиста.
type Issue struct {
	Infolist string `json:"infolist"` // FQN: module.Name
	Path     string `json:"path,omitempty"`
	Line     int    `json:"line,omitempty"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// системные атрибуты есть у любой записи
var systemAttributes = map[string]bool{
	"id": true, "version": true, "created_at": true, "updated_at": true,
}

// HasErrors - есть ли среди замечаний блокирующие.
func HasErrors(issues []Issue) bool {
	for _, it := range issues {
		if it.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Lint сверяет инфолист с моделью сущностей.
func Lint(def *dsl.Infolist, entities map[string]*dsl.Entity) []Issue {
	l := linter{infolist: def.FQN(), entities: entities}

	target, ok := entities[def.EntityFQN()]
	if !ok {
		l.add(SeverityError, "entity_unknown", nil,
			fmt.Sprintf("target entity %q is not defined", def.EntityFQN()))
		return l.issues
	}

	l.walk(def.Entries, target)

	if _, err := Build(def, Options{}); err != nil {
		l.add(SeverityError, "build_failed", nil, err.Error())
	}
	return l.issues
}

// LintAll - Lint для всех инфолистов модели.
func LintAll(model *dsl.Model) []Issue {
	var issues []Issue
	for _, def := range model.Infolists {
		issues = append(issues, Lint(def, model.Entities)...)
	}
	return issues
}

type linter struct {
	infolist string
	entities map[string]*dsl.Entity
	issues   []Issue
}

func (l *linter) add(severity, code string, d *dsl.EntryDef, msg string) {
	it := Issue{Infolist: l.infolist, Code: code, Severity: severity, Message: msg}
	if d != nil {
		it.Path = d.Path
		it.Line = d.Line
	}
	l.issues = append(l.issues, it)
}

func (l *linter) walk(defs []*dsl.EntryDef, ent *dsl.Entity) {
	for _, d := range defs {
		switch d.Kind {
		case "section":
			if len(d.Children) == 0 {
				l.add(SeverityError, "section_empty", d, "section has no entries")
			}
			l.walk(d.Children, ent)
		case "repeatable":
			l.repeatable(d, ent)
		default:
			if _, ok := EntryKinds[d.Kind]; !ok {
				l.add(SeverityError, "kind_unknown", d, fmt.Sprintf("unknown entry kind %q", d.Kind))
				continue
			}
			l.path(d, ent)
		}
	}
}

func (l *linter) repeatable(d *dsl.EntryDef, ent *dsl.Entity) {
	if len(d.Children) == 0 {
		l.add(SeverityError, "repeatable_empty", d, "repeatable has no entries")
	}
	f, ok := ent.Field(d.Path)
	if !ok || !f.IsRefArray() {
		l.add(SeverityError, "repeatable_not_collection", d,
			fmt.Sprintf("%q is not an array[ref[...]] field of %s", d.Path, ent.FQN()))
		return
	}
	rowEntity, ok := l.entities[dsl.Qualify(ent.Module, f.RefTarget)]
	if !ok {
		l.add(SeverityError, "ref_target_unknown", d,
			fmt.Sprintf("relation target %q is not defined", f.RefTarget))
		return
	}
	l.walk(d.Children, rowEntity)
}

func (l *linter) path(d *dsl.EntryDef, ent *dsl.Entity) {
	if fieldpath.Depth(d.Path) > 2 {
		l.add(SeverityWarning, "path_too_deep", d,
			"only the first two path segments are resolved")
	}

	relation, attribute, nested := fieldpath.Split(d.Path)
	if !nested {
		if _, ok := ent.Field(attribute); !ok && !systemAttributes[attribute] {
			l.add(SeverityError, "field_unknown", d,
				fmt.Sprintf("%s has no field %q", ent.FQN(), attribute))
		}
		return
	}

	f, ok := ent.Field(relation)
	if !ok {
		l.add(SeverityError, "field_unknown", d,
			fmt.Sprintf("%s has no field %q", ent.FQN(), relation))
		return
	}
	if !f.IsRelation() {
		l.add(SeverityError, "not_a_relation", d,
			fmt.Sprintf("%q is %s, not ref or array[ref]", relation, f.Type))
		return
	}
	related, ok := l.entities[dsl.Qualify(ent.Module, f.RefTarget)]
	if !ok {
		l.add(SeverityError, "ref_target_unknown", d,
			fmt.Sprintf("relation target %q is not defined", f.RefTarget))
		return
	}
	if _, ok := related.Field(attribute); !ok && !systemAttributes[attribute] {
		l.add(SeverityWarning, "related_field_unknown", d,
			fmt.Sprintf("%s has no field %q; it will resolve to null", related.FQN(), attribute))
	}
}
