package dsl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrNoModule - сущность или инфолист объявлены до `module <name>`.
var ErrNoModule = errors.New("no module declared")

var (
	entityRe           = regexp.MustCompile(`^entity\s+(\w+)\s*:\s*$`)
	infolistRe         = regexp.MustCompile(`^infolist\s+(\w+)\s+for\s+([A-Za-z0-9_.]+)(.*?):\s*$`)
	fieldRe            = regexp.MustCompile(`^([\w_]+):\s*([^\s#]+)(.*)$`)
	entryRe            = regexp.MustCompile(`^([A-Za-z_][\w.]*)\s*:\s*(\w+)(.*)$`)
	sectionRe          = regexp.MustCompile(`^section\s+("[^"]*"|[^:]+?)\s*:(.*)$`)
	enumRe             = regexp.MustCompile(`^enum\[(.*)\]$`)
	refRe              = regexp.MustCompile(`^ref\[([A-Za-z0-9_.]+)\]$`)
	arrayRe            = regexp.MustCompile(`^array\[(.+)\]$`)
	moduleRe           = regexp.MustCompile(`^module\s+([A-Za-z0-9_.-]+)\s*$`)
	reConstraintsStart = regexp.MustCompile(`^constraints\s*:\s*$`)
	reUniqueLine       = regexp.MustCompile(`^unique\s*\(\s*([^)]+)\s*\)\s*$`)
)

// options tokenizer - делит "k=v k2='v 2' pattern=^[A-Z0-9 _-]+$" на токены,
// не рвёт по пробелам внутри кавычек/скобок
func splitOptionTokens(s string) []string {
	var out []string
	var buf []rune
	inSingle, inDouble := false, false
	bracketDepth := 0

	flush := func() {
		if len(buf) > 0 {
			out = append(out, string(buf))
			buf = buf[:0]
		}
	}

	for _, r := range s {
		switch r {
		case '\'':
			if !inDouble && bracketDepth == 0 {
				inSingle = !inSingle
			}
			buf = append(buf, r)
		case '"':
			if !inSingle && bracketDepth == 0 {
				inDouble = !inDouble
			}
			buf = append(buf, r)
		case '[':
			if !inSingle && !inDouble {
				bracketDepth++
			}
			buf = append(buf, r)
		case ']':
			if !inSingle && !inDouble && bracketDepth > 0 {
				bracketDepth--
			}
			buf = append(buf, r)
		default:
			if (r == ' ' || r == '\t') && !inSingle && !inDouble && bracketDepth == 0 {
				flush()
				continue
			}
			buf = append(buf, r)
		}
	}
	flush()
	return out
}

// stripComment срезает "# ..." вне кавычек. Решётка сразу после '='
// (color=#ff0000) комментарием не считается.
func stripComment(s string) string {
	inSingle, inDouble := false, false
	for i, r := range s {
		switch r {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '#':
			if inSingle || inDouble {
				continue
			}
			if i == 0 || s[i-1] == ' ' || s[i-1] == '\t' {
				return strings.TrimSpace(s[:i])
			}
		}
	}
	return strings.TrimSpace(s)
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// parseOptions: флаг без значения -> "true", ключи в нижнем регистре.
func parseOptions(raw string) map[string]string {
	raw = stripComment(raw)
	if strings.HasPrefix(strings.ToLower(raw), "options:") {
		raw = strings.TrimSpace(raw[len("options:"):])
	}
	opts := map[string]string{}
	for _, tok := range splitOptionTokens(raw) {
		tok = strings.TrimSpace(strings.TrimSuffix(tok, ","))
		if tok == "" {
			continue
		}
		if !strings.Contains(tok, "=") {
			opts[strings.ToLower(tok)] = "true"
			continue
		}
		kv := strings.SplitN(tok, "=", 2)
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		if k != "" {
			opts[k] = unquote(strings.TrimSpace(kv[1]))
		}
	}
	return opts
}

func parseEnum(inside string) []string {
	var out []string
	for _, p := range strings.Split(strings.TrimSpace(inside), ",") {
		s := strings.Trim(strings.TrimSpace(p), `"'`)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseField(name, rawType, tail string) Field {
	// склейка оборванных типов со скобками
	for (strings.HasPrefix(rawType, "enum[") || strings.HasPrefix(rawType, "array[")) &&
		strings.Count(rawType, "[") > strings.Count(rawType, "]") {
		idx := strings.Index(tail, "]")
		if idx < 0 {
			break
		}
		rawType += tail[:idx+1]
		tail = tail[idx+1:]
	}

	f := Field{Name: name, Type: rawType}
	// у полей запятые тоже разделители
	f.Options = parseOptions(strings.ReplaceAll(tail, ",", " "))

	if mm := enumRe.FindStringSubmatch(rawType); mm != nil {
		f.Type = "enum"
		f.Enum = parseEnum(mm[1])
	} else if mm := refRe.FindStringSubmatch(rawType); mm != nil {
		f.Type = "ref"
		f.RefTarget = strings.TrimSpace(mm[1])
	} else if mm := arrayRe.FindStringSubmatch(rawType); mm != nil {
		f.Type = "array"
		elem := strings.TrimSpace(mm[1])
		f.ElemType = elem
		if em := enumRe.FindStringSubmatch(elem); em != nil {
			f.ElemType = "enum"
			f.Enum = parseEnum(em[1])
		}
		if rm := refRe.FindStringSubmatch(elem); rm != nil {
			f.ElemType = "ref"
			f.RefTarget = strings.TrimSpace(rm[1])
		}
	}
	// примитивы: string,int,float,bool,date,datetime,json - как есть
	return f
}

func indentOf(raw string) int {
	n := 0
	for _, r := range raw {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

// контейнеры, которые владеют строками с бо́льшим отступом
func isContainer(kind string) bool {
	return kind == "repeatable" || kind == "section"
}

type frame struct {
	indent int
	def    *EntryDef
}

type parser struct {
	name      string
	module    string
	entities  []*Entity
	infolists []*Infolist

	entity        *Entity
	inConstraints bool

	infolist *Infolist
	stack    []frame
}

func (p *parser) closeBlocks() {
	p.entity = nil
	p.inConstraints = false
	p.infolist = nil
	p.stack = nil
}

func (p *parser) line(lineNo int, raw string) error {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	indent := indentOf(raw)

	if indent == 0 {
		if m := moduleRe.FindStringSubmatch(line); m != nil {
			p.closeBlocks()
			p.module = m[1]
			return nil
		}
		if m := entityRe.FindStringSubmatch(line); m != nil {
			p.closeBlocks()
			if p.module == "" {
				return fmt.Errorf("entity %q: %w; add `module <name>` at the top", m[1], ErrNoModule)
			}
			p.entity = &Entity{Module: p.module, Name: m[1], File: p.name}
			p.entities = append(p.entities, p.entity)
			return nil
		}
		if m := infolistRe.FindStringSubmatch(line); m != nil {
			p.closeBlocks()
			if p.module == "" {
				return fmt.Errorf("infolist %q: %w; add `module <name>` at the top", m[1], ErrNoModule)
			}
			p.infolist = &Infolist{
				Module:  p.module,
				Name:    m[1],
				Entity:  m[2],
				Options: parseOptions(m[3]),
				File:    p.name,
			}
			p.infolists = append(p.infolists, p.infolist)
			return nil
		}
	}

	switch {
	case p.entity != nil:
		return p.entityLine(line)
	case p.infolist != nil:
		if indent == 0 {
			return fmt.Errorf("unexpected top-level line %q", line)
		}
		return p.infolistLine(lineNo, indent, line)
	}
	// всё вне блоков игнорируем
	return nil
}

func (p *parser) entityLine(line string) error {
	if reConstraintsStart.MatchString(line) {
		p.inConstraints = true
		return nil
	}
	if p.inConstraints {
		if m := reUniqueLine.FindStringSubmatch(line); m != nil {
			var set []string
			for _, part := range strings.Split(m[1], ",") {
				if part = strings.TrimSpace(part); part != "" {
					set = append(set, part)
				}
			}
			if len(set) > 0 {
				p.entity.Constraints.Unique = append(p.entity.Constraints.Unique, set)
			}
			return nil
		}
		p.inConstraints = false
	}
	if m := fieldRe.FindStringSubmatch(line); m != nil {
		p.entity.Fields = append(p.entity.Fields, parseField(m[1], m[2], m[3]))
	}
	return nil
}

func (p *parser) infolistLine(lineNo, indent int, line string) error {
	var def *EntryDef
	if m := sectionRe.FindStringSubmatch(line); m != nil {
		def = &EntryDef{
			Path:    unquote(strings.TrimSpace(m[1])),
			Kind:    "section",
			Options: parseOptions(m[2]),
			Line:    lineNo,
		}
	} else if m := entryRe.FindStringSubmatch(line); m != nil {
		def = &EntryDef{
			Path:    m[1],
			Kind:    strings.ToLower(m[2]),
			Options: parseOptions(m[3]),
			Line:    lineNo,
		}
	} else {
		return fmt.Errorf("cannot parse infolist line %q", line)
	}

	for len(p.stack) > 0 && p.stack[len(p.stack)-1].indent >= indent {
		p.stack = p.stack[:len(p.stack)-1]
	}
	if len(p.stack) == 0 {
		p.infolist.Entries = append(p.infolist.Entries, def)
	} else {
		parent := p.stack[len(p.stack)-1].def
		parent.Children = append(parent.Children, def)
	}
	if isContainer(def.Kind) {
		p.stack = append(p.stack, frame{indent: indent, def: def})
	}
	return nil
}

// Parse читает один DSL-документ. name нужен только для сообщений об ошибках.
func Parse(r io.Reader, name string) ([]*Entity, []*Infolist, error) {
	p := &parser{name: name}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(lineNo, scanner.Text()); err != nil {
			return nil, nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return p.entities, p.infolists, nil
}

// LoadFile читает один .dsl файл.
func LoadFile(path string) ([]*Entity, []*Infolist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()
	return Parse(file, path)
}

// LoadAll обходит root и собирает все сущности и инфолисты по FQN.
func LoadAll(root string) (*Model, error) {
	model := &Model{
		Entities:  map[string]*Entity{},
		Infolists: map[string]*Infolist{},
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".dsl") {
			return nil
		}

		ents, lists, err := LoadFile(path)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for _, e := range ents {
			if _, exists := model.Entities[e.FQN()]; exists {
				return fmt.Errorf("duplicate entity %q in module %q (file: %s)", e.Name, e.Module, path)
			}
			model.Entities[e.FQN()] = e
		}
		for _, l := range lists {
			if _, exists := model.Infolists[l.FQN()]; exists {
				return fmt.Errorf("duplicate infolist %q in module %q (file: %s)", l.Name, l.Module, path)
			}
			model.Infolists[l.FQN()] = l
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return model, nil
}
