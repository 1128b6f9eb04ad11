package pg

import (
	"fmt"
	"sort"
	"strings"

	"kalita/internal/dsl"
)

var reserved = map[string]struct{}{
	"user": {}, "select": {}, "table": {}, "insert": {}, "update": {}, "delete": {},
	"where": {}, "join": {}, "group": {}, "order": {}, "limit": {}, "offset": {},
	"primary": {}, "foreign": {}, "key": {}, "constraint": {}, "default": {},
	"from": {}, "into": {}, "values": {}, "unique": {}, "index": {}, "create": {},
	"drop": {}, "alter": {}, "schema": {}, "grant": {}, "revoke": {},
}

func isReserved(s string) bool { _, ok := reserved[strings.ToLower(s)]; return ok }

// элементарная плюрализация: tag -> tags, address -> address
func plural(s string) string {
	s = strings.ToLower(s)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

func safeSchema(module string) string { return strings.ToLower(module) }

func safeTable(entity string) string {
	t := plural(entity)
	if isReserved(t) {
		t = "e_" + t
	}
	return t
}

func sqlIdent(s string) string { return `"` + strings.ToLower(s) + `"` }

func sqlLiteral(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

// tableName - "schema"."table" для сущности.
func tableName(e *dsl.Entity) string {
	return sqlIdent(safeSchema(e.Module)) + "." + sqlIdent(safeTable(e.Name))
}

// dataExpr - текстовое значение поля из jsonb.
func dataExpr(field string) string {
	return "(data->>" + sqlLiteral(field) + ")"
}

// refColumn - имя генерируемой колонки под внешний ключ ref-поля.
func refColumn(field string) string { return "ref_" + strings.ToLower(field) }

// GenerateDDL возвращает упорядоченный по ключу набор DDL для сущностей.
// Данные записи лежат в jsonb; ref-поля дублируются генерируемыми колонками
// с внешним ключом, unique - индексами по выражениям.
func GenerateDDL(entities map[string]*dsl.Entity) (map[string]string, error) {
	out := make(map[string]string, 2)

	keys := make([]string, 0, len(entities))
	for k := range entities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tables strings.Builder
	var fks strings.Builder
	seenSchemas := map[string]struct{}{}

	for _, key := range keys {
		e := entities[key]
		mod := safeSchema(e.Module)

		if _, ok := seenSchemas[mod]; !ok {
			fmt.Fprintf(&tables, "create schema if not exists %s;\n", sqlIdent(mod))
			seenSchemas[mod] = struct{}{}
		}

		cols := []string{
			`"id" text primary key`,
			`"version" bigint not null`,
			`"created_at" timestamp with time zone not null`,
			`"updated_at" timestamp with time zone not null`,
			`"data" jsonb not null default '{}'::jsonb`,
		}

		seen := map[string]struct{}{"id": {}, "version": {}, "created_at": {}, "updated_at": {}}
		for _, f := range e.Fields {
			name := strings.ToLower(f.Name)
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%s: field %q duplicates a system or another field", key, f.Name)
			}
			seen[name] = struct{}{}

			if f.IsRef() {
				cols = append(cols, fmt.Sprintf("%s text generated always as (nullif(%s, '')) stored",
					sqlIdent(refColumn(f.Name)), dataExpr(f.Name)))
			}
		}

		fmt.Fprintf(&tables, "create table if not exists %s (\n  %s\n);\n",
			tableName(e), strings.Join(cols, ",\n  "))

		var sets [][]string
		for _, f := range e.Fields {
			if strings.EqualFold(f.Options["unique"], "true") {
				sets = append(sets, []string{f.Name})
			}
		}
		sets = append(sets, e.Constraints.Unique...)
		for _, set := range sets {
			if len(set) == 0 {
				continue
			}
			exprs := make([]string, 0, len(set))
			for _, p := range set {
				exprs = append(exprs, dataExpr(p))
			}
			idx := strings.ToLower(e.Name + "_" + strings.Join(set, "_") + "_uq")
			fmt.Fprintf(&tables, "create unique index if not exists %s on %s (%s);\n",
				sqlIdent(idx), tableName(e), strings.Join(exprs, ", "))
		}

		// внешние ключи - после создания всех таблиц
		for _, f := range e.Fields {
			if !f.IsRef() {
				continue
			}
			target, ok := entities[dsl.Qualify(e.Module, f.RefTarget)]
			if !ok {
				return nil, fmt.Errorf("%s.%s: unknown ref target %s", key, f.Name, f.RefTarget)
			}
			fmt.Fprintf(&fks, "alter table %s add constraint %s foreign key (%s) references %s(id) on delete restrict;\n",
				tableName(e),
				sqlIdent(strings.ToLower(e.Name+"_"+f.Name+"_fk")),
				sqlIdent(refColumn(f.Name)),
				tableName(target))
		}
	}

	out["000_schemas_and_tables"] = tables.String()
	if fks.Len() > 0 {
		out["200_foreign_keys"] = fks.String()
	}
	return out, nil
}
