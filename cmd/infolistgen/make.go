package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"github.com/spf13/cobra"

	"kalita/internal/dsl"
)

var infolistTmpl = template.Must(template.New("infolist").Parse(`module {{.Module}}

# {{.Name}}: GET /api/infolists/{{.Module}}/{{.Name}}/:id
infolist {{.Name}} for {{.Entity}}:
{{- range .Lines}}
  {{.}}
{{- end}}
`))

type scaffold struct {
	Module string
	Name   string
	Entity string
	Lines  []string
}

func newMakeCmd() *cobra.Command {
	var (
		module string
		entity string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "make <Name>",
		Short: "Create a new infolist .dsl file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("dsl")
			path, err := makeInfolist(root, module, args[0], entity, force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Infolist [%s] created successfully.\n  File: %s\n", args[0], path)
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "core", "DSL module")
	cmd.Flags().StringVar(&entity, "entity", "", "Target entity (default: name without Infolist/Card suffix)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing file")
	return cmd
}

// makeInfolist пишет <root>/<module>/<snake name>.dsl. Если сущность уже
// описана в root, записи выводятся из её полей.
func makeInfolist(root, module, name, entity string, force bool) (string, error) {
	if !isIdent(name) {
		return "", fmt.Errorf("invalid infolist name %q", name)
	}
	if entity == "" {
		entity = defaultEntity(name)
	}

	s := scaffold{Module: module, Name: name, Entity: entity}

	var entities map[string]*dsl.Entity
	if model, err := dsl.LoadAll(root); err == nil {
		entities = model.Entities
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if ent, ok := entities[dsl.Qualify(module, entity)]; ok {
		s.Lines = entryLines(ent, entities)
	} else {
		s.Lines = []string{"id: text copyable", "created_at: text datetime"}
	}

	var buf bytes.Buffer
	if err := infolistTmpl.Execute(&buf, s); err != nil {
		return "", err
	}

	path := filepath.Join(root, module, snake(name)+".dsl")
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, buf.Bytes(), 0o644)
}

func entryLines(ent *dsl.Entity, entities map[string]*dsl.Entity) []string {
	lines := make([]string, 0, len(ent.Fields)+1)
	for _, f := range ent.Fields {
		switch {
		case f.IsRef():
			if attr := titleField(entities[dsl.Qualify(ent.Module, f.RefTarget)]); attr != "" {
				lines = append(lines, f.Name+"."+attr+": text")
			} else {
				lines = append(lines, f.Name+": text")
			}
		case f.IsRefArray():
			attr := titleField(entities[dsl.Qualify(ent.Module, f.RefTarget)])
			if attr == "" {
				attr = "id"
			}
			lines = append(lines, f.Name+": repeatable", "  "+attr+": text")
		default:
			lines = append(lines, f.Name+": "+kindFor(f))
		}
	}
	return append(lines, "created_at: text datetime")
}

func kindFor(f dsl.Field) string {
	name := strings.ToLower(f.Name)
	switch f.Type {
	case "bool":
		return "icon boolean"
	case "enum":
		return "badge"
	case "int", "float":
		return "text numeric"
	case "date":
		return "text date"
	case "datetime":
		return "text datetime"
	case "json":
		return "keyvalue"
	case "string":
		for _, hint := range []string{"avatar", "image", "photo", "logo"} {
			if strings.Contains(name, hint) {
				return "image"
			}
		}
		if strings.Contains(name, "color") || strings.Contains(name, "colour") {
			return "color"
		}
	}
	return "text"
}

// titleField - первое строковое поле связанной сущности.
func titleField(ent *dsl.Entity) string {
	if ent == nil {
		return ""
	}
	for _, f := range ent.Fields {
		if f.Type == "string" {
			return f.Name
		}
	}
	return ""
}

func defaultEntity(name string) string {
	for _, suffix := range []string{"Infolist", "Card"} {
		if base := strings.TrimSuffix(name, suffix); base != name && base != "" {
			return base
		}
	}
	return name
}

// snake: "UserCard" -> "user_card", "HTTPLog" -> "http_log"
func snake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return true
}
