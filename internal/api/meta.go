package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"kalita/internal/dsl"
)

// ===== META HANDLERS =====

type metaEntityListItem struct {
	Module string `json:"module"`
	Entity string `json:"entity"`
}

func MetaListHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		out := make([]metaEntityListItem, 0, len(model.Entities))
		for _, fqn := range sortedKeys(model.Entities) {
			mod, ent := splitFQN(fqn)
			out = append(out, metaEntityListItem{Module: mod, Entity: ent})
		}
		c.JSON(http.StatusOK, out)
	}
}

type metaField struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	ElemType string            `json:"elemType,omitempty"`
	Ref      string            `json:"ref,omitempty"`
	RefFQN   string            `json:"refFQN,omitempty"`
	Enum     []string          `json:"enum,omitempty"`
	Options  map[string]string `json:"options,omitempty"`
}

type metaEntity struct {
	Module      string         `json:"module"`
	Entity      string         `json:"entity"`
	Fields      []metaField    `json:"fields"`
	Constraints map[string]any `json:"constraints,omitempty"` // {"unique":[["code"],["base","quote","date"]]}
	Infolists   []string       `json:"infolists"`
}

func MetaEntityHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		fqn, ok := normalizeName(model.Entities, c.Param("module"), c.Param("entity"))
		if !ok {
			fail(c, http.StatusNotFound, "Entity not found", nil)
			return
		}
		schema := model.Entities[fqn]

		fields := make([]metaField, 0, len(schema.Fields))
		for _, f := range schema.Fields {
			mf := metaField{
				Name:     f.Name,
				Type:     strings.ToLower(f.Type),
				ElemType: f.ElemType,
				Enum:     append([]string(nil), f.Enum...),
				Options:  f.Options,
			}
			if f.IsRelation() {
				mf.Ref = f.RefTarget
				refModule, refName := splitRef(schema.Module, f.RefTarget)
				if full, ok := normalizeName(model.Entities, refModule, refName); ok {
					mf.RefFQN = full
				}
			}
			fields = append(fields, mf)
		}

		var constraints map[string]any
		if len(schema.Constraints.Unique) > 0 {
			constraints = map[string]any{"unique": schema.Constraints.Unique}
		}

		// инфолисты, построенные над сущностью
		lists := []string{}
		for _, key := range sortedKeys(model.Infolists) {
			if model.Infolists[key].EntityFQN() == fqn {
				lists = append(lists, key)
			}
		}

		m, e := splitFQN(fqn)
		c.JSON(http.StatusOK, metaEntity{
			Module:      m,
			Entity:      e,
			Fields:      fields,
			Constraints: constraints,
			Infolists:   lists,
		})
	}
}

type metaEntry struct {
	Path     string            `json:"path"`
	Kind     string            `json:"kind"`
	Options  map[string]string `json:"options,omitempty"`
	Children []metaEntry       `json:"children,omitempty"`
}

type metaInfolist struct {
	Module  string            `json:"module"`
	Name    string            `json:"name"`
	Entity  string            `json:"entity"`
	File    string            `json:"file"`
	Options map[string]string `json:"options,omitempty"`
	Entries []metaEntry       `json:"entries"`
}

func MetaInfolistsHandler(s *Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		model, _ := s.Registry.Snapshot()
		out := make([]metaInfolist, 0, len(model.Infolists))
		for _, key := range sortedKeys(model.Infolists) {
			l := model.Infolists[key]
			out = append(out, metaInfolist{
				Module:  l.Module,
				Name:    l.Name,
				Entity:  l.EntityFQN(),
				File:    l.File,
				Options: l.Options,
				Entries: metaEntries(l.Entries),
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func metaEntries(defs []*dsl.EntryDef) []metaEntry {
	out := make([]metaEntry, 0, len(defs))
	for _, d := range defs {
		out = append(out, metaEntry{
			Path:     d.Path,
			Kind:     d.Kind,
			Options:  d.Options,
			Children: metaEntries(d.Children),
		})
	}
	return out
}

// splitRef: "Group" -> (module, "Group"), "crm.Group" -> ("crm", "Group")
func splitRef(module, ref string) (string, string) {
	if m, e := splitFQN(ref); m != "" {
		return m, e
	}
	return module, ref
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
