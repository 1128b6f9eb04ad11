// api/schema_lint.go
package api

import (
	"fmt"
	"sort"
	"strings"

	"kalita/internal/dsl"
)

type SchemaIssue struct {
	Entity  string `json:"entity"` // FQN: module.Entity
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SchemaLint проверяет базовые противоречия в сущностях DSL.
// Все найденные проблемы блокируют перезагрузку.
func SchemaLint(entities map[string]*dsl.Entity) []SchemaIssue {
	var issues []SchemaIssue
	add := func(fqn, field, code, msg string) {
		issues = append(issues, SchemaIssue{Entity: fqn, Field: field, Code: code, Message: msg})
	}

	for _, fqn := range sortedKeys(entities) {
		e := entities[fqn]
		for _, f := range e.Fields {
			// внешние ключи создаются только с restrict
			if od := strings.TrimSpace(strings.ToLower(f.Options["on_delete"])); od != "" && od != "restrict" {
				add(fqn, f.Name, "on_delete_unsupported",
					fmt.Sprintf("on_delete policy %q is not supported (allowed: restrict)", od))
			}

			if f.IsRelation() {
				if strings.TrimSpace(f.RefTarget) == "" {
					add(fqn, f.Name, "ref_target_empty", "ref field has empty target")
				} else if _, ok := entities[dsl.Qualify(e.Module, f.RefTarget)]; !ok {
					add(fqn, f.Name, "ref_target_unknown", fmt.Sprintf("ref target %q is not a known entity", f.RefTarget))
				}
			}

			if (f.Type == "enum" || f.ElemType == "enum") && len(f.Enum) == 0 {
				add(fqn, f.Name, "enum_empty", "enum has no values")
			}

			if def, ok := f.Options["default"]; ok && f.Type == "enum" && !contains(f.Enum, def) {
				add(fqn, f.Name, "default_invalid", fmt.Sprintf("default %q is not one of the enum values", def))
			}
		}

		for _, set := range e.Constraints.Unique {
			for _, name := range set {
				if _, ok := e.Field(name); !ok {
					add(fqn, name, "unique_field_unknown",
						fmt.Sprintf("unique(%s) names unknown field %q", strings.Join(set, ", "), name))
				}
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Entity < issues[j].Entity })
	return issues
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
