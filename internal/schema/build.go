package schema

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"kalita/internal/dsl"
	"kalita/internal/entry"
	"kalita/internal/fieldpath"
	"kalita/internal/record"
)

var (
	ErrUnknownKind   = errors.New("unknown entry kind")
	ErrUnknownOption = errors.New("unknown option")
)

// Options - то, что инфолисту даёт окружение.
type Options struct {
	AssetURL entry.AssetURLFunc
	Resolver fieldpath.Resolver
	// Translate - перевод по ключу каталога ("labels.created_at").
	Translate func(key string) (string, bool)
}

func (o Options) translate(key string) (string, bool) {
	if o.Translate == nil {
		return "", false
	}
	return o.Translate(key)
}

// EntryKinds - имена видов в DSL и их теги компонентов.
var EntryKinds = map[string]string{
	"text":       entry.KindText,
	"badge":      entry.KindBadge,
	"icon":       entry.KindIcon,
	"image":      entry.KindImage,
	"color":      entry.KindColor,
	"code":       entry.KindCode,
	"keyvalue":   entry.KindKeyValue,
	"key_value":  entry.KindKeyValue,
	"repeatable": entry.KindRepeatable,
}

// Build собирает свежий инфолист по определению из DSL.
// Вызывать на каждый рендер: записи хранят состояние.
func Build(def *dsl.Infolist, opts Options) (*Infolist, error) {
	l := New(def.Name)

	o := newOptions(def.Options)
	if n, ok := o.int("columns"); ok {
		l.Columns(n)
	}
	if err := o.done(); err != nil {
		return nil, fmt.Errorf("infolist %s: %w", def.FQN(), err)
	}

	b := builder{opts: opts}
	components, err := b.components(def.Entries)
	if err != nil {
		return nil, fmt.Errorf("infolist %s (%s): %w", def.FQN(), def.File, err)
	}
	return l.Schema(components...), nil
}

type builder struct {
	opts Options
}

func (b builder) components(defs []*dsl.EntryDef) ([]Component, error) {
	out := make([]Component, 0, len(defs))
	for _, d := range defs {
		var (
			c   Component
			err error
		)
		if d.Kind == "section" {
			c, err = b.section(d)
		} else {
			c, err = b.entry(d)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (b builder) section(d *dsl.EntryDef) (*Section, error) {
	s := NewSection(d.Path)
	o := newOptions(d.Options)

	if v, ok := o.str("description"); ok {
		s.Description(v)
	}
	if v, ok := o.flag("collapsible"); ok {
		s.Collapsible(v)
	}
	if v, ok := o.flag("collapsed"); ok {
		s.Collapsed(v)
	}
	if n, ok := o.int("columns"); ok {
		s.Columns(n)
	}
	if v, ok := o.flag("hidden"); ok {
		s.Hidden(v)
	}
	if v, ok := o.str("visible"); ok {
		s.VisibleWhen(b.visibleWhen(v))
	}
	if err := o.done(); err != nil {
		return nil, lineErr(d, err)
	}

	children, err := b.components(d.Children)
	if err != nil {
		return nil, err
	}
	return s.Schema(children...), nil
}

func (b builder) entry(d *dsl.EntryDef) (entry.Entry, error) {
	o := newOptions(d.Options)
	var e entry.Entry

	switch d.Kind {
	case "text":
		t := entry.Text(d.Path)
		applyCommon(t, o, b)
		applyText(t, o, b)
		e = t
	case "badge":
		t := entry.Badge(d.Path)
		applyCommon(t, o, b)
		applyBadge(t, o)
		e = t
	case "icon":
		t := entry.Icon(d.Path)
		applyCommon(t, o, b)
		applyIcon(t, o)
		e = t
	case "image":
		t := entry.Image(d.Path)
		applyCommon(t, o, b)
		applyImage(t, o)
		if b.opts.AssetURL != nil {
			t.AssetURL(b.opts.AssetURL)
		}
		e = t
	case "color":
		t := entry.Color(d.Path)
		applyCommon(t, o, b)
		if v, ok := o.flag("showlabel"); ok {
			t.ShowLabel(v)
		}
		if v, ok := o.str("size"); ok {
			t.Size(v)
		}
		e = t
	case "code":
		t := entry.Code(d.Path)
		applyCommon(t, o, b)
		if v, ok := o.str("language"); ok {
			t.Language(v)
		}
		if n, ok := o.int("maxheight"); ok {
			t.MaxHeight(n)
		}
		if v, ok := o.flag("linenumbers"); ok {
			t.LineNumbers(v)
		}
		e = t
	case "keyvalue", "key_value":
		t := entry.KeyValue(d.Path)
		applyCommon(t, o, b)
		if v, ok := o.str("keylabel"); ok {
			t.KeyLabel(v)
		}
		if v, ok := o.str("valuelabel"); ok {
			t.ValueLabel(v)
		}
		if v, ok := o.flag("copyablekeys"); ok {
			t.CopyableKeys(v)
		}
		if v, ok := o.flag("copyablevalues"); ok {
			t.CopyableValues(v)
		}
		e = t
	case "repeatable":
		t := entry.Repeatable(d.Path)
		applyCommon(t, o, b)
		if v, ok := o.flag("collapsible"); ok {
			t.Collapsible(v)
		}
		if v, ok := o.flag("collapsed"); ok {
			t.Collapsed(v)
		}
		if v, ok := o.str("empty"); ok {
			t.EmptyMessage(v)
		}
		children := make([]entry.Entry, 0, len(d.Children))
		for _, cd := range d.Children {
			if cd.Kind == "section" {
				return nil, lineErr(cd, fmt.Errorf("section inside repeatable %q", d.Path))
			}
			child, err := b.entry(cd)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		t.Schema(children...)
		e = t
	default:
		return nil, lineErr(d, fmt.Errorf("%w %q", ErrUnknownKind, d.Kind))
	}

	if err := o.done(); err != nil {
		return nil, lineErr(d, err)
	}
	entry.SetResolver(e, b.opts.Resolver)
	return e, nil
}

// visibleWhen: "attr" - видно, если атрибут истинный; "!attr" - если ложный.
func (b builder) visibleWhen(path string) func(rec record.Record) bool {
	negate := strings.HasPrefix(path, "!")
	path = strings.TrimPrefix(path, "!")
	resolver := b.opts.Resolver
	return func(rec record.Record) bool {
		return entry.Truthy(resolver.Resolve(rec, path)) != negate
	}
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

// общие сеттеры всех записей
type common[T any] interface {
	Name() string
	Label(string) T
	HelperText(string) T
	Placeholder(string) T
	Copyable(bool) T
	Hidden(bool) T
	Tooltip(string) T
	Color(string) T
	Icon(string) T
	IconColor(string) T
	VisibleWhen(func(rec record.Record) bool) T
}

func applyCommon[T common[T]](e T, o *options, b builder) {
	if v, ok := o.str("label"); ok {
		e.Label(v)
	} else if v, ok := b.opts.translate("labels." + lastSegment(e.Name())); ok {
		e.Label(v)
	}
	if v, ok := o.str("helper"); ok {
		e.HelperText(v)
	}
	if v, ok := o.str("placeholder"); ok {
		e.Placeholder(v)
	}
	if v, ok := o.flag("copyable"); ok {
		e.Copyable(v)
	}
	if v, ok := o.flag("hidden"); ok {
		e.Hidden(v)
	}
	if v, ok := o.str("tooltip"); ok {
		e.Tooltip(v)
	}
	if v, ok := o.str("color"); ok {
		e.Color(v)
	}
	if v, ok := o.str("icon"); ok {
		e.Icon(v)
	}
	if v, ok := o.str("iconcolor"); ok {
		e.IconColor(v)
	}
	if v, ok := o.str("visible"); ok {
		e.VisibleWhen(b.visibleWhen(v))
	}
}

func applyText(t *entry.TextEntry, o *options, b builder) {
	if n, ok := o.int("limit"); ok {
		t.Limit(n)
	}
	if v, ok := o.flag("wrap"); ok {
		t.Wrap(v)
	}
	if v, ok := o.flag("markdown"); ok {
		t.Markdown(v)
	}
	if v, ok := o.flag("html"); ok {
		t.HTML(v)
	}
	if v, ok := o.str("prefix"); ok {
		t.Prefix(v)
	}
	if v, ok := o.str("suffix"); ok {
		t.Suffix(v)
	}
	if v, ok := o.flag("badge"); ok {
		t.Badge(v)
	}

	// форматтер один: два формата на одной записи - ошибка
	var formats []string
	if cur, ok := o.str("money"); ok {
		formats = append(formats, "money")
		divide, _ := o.flag("divide")
		if cur == "true" {
			cur = ""
		}
		t.Money(cur, divide)
	}
	if layout, ok := o.str("date"); ok {
		formats = append(formats, "date")
		t.Date(flagless(layout))
	}
	if layout, ok := o.str("datetime"); ok {
		formats = append(formats, "datetime")
		t.DateTime(flagless(layout))
	}
	if v, ok := o.flag("since"); ok && v {
		formats = append(formats, "since")
		t.Since()
	}
	if v, ok := o.str("numeric"); ok {
		formats = append(formats, "numeric")
		decimals := 0
		if v != "true" {
			n, err := strconv.Atoi(v)
			if err != nil {
				o.fail(fmt.Errorf("numeric: %w", err))
			}
			decimals = n
		}
		t.Numeric(decimals)
	}
	if v, ok := o.str("boolean"); ok {
		formats = append(formats, "boolean")
		yes, no := splitPair(flagless(v))
		if yes == "" {
			yes, _ = b.opts.translate("entries.boolean_true")
		}
		if no == "" {
			no, _ = b.opts.translate("entries.boolean_false")
		}
		t.Boolean(yes, no)
	}
	if len(formats) > 1 {
		o.fail(fmt.Errorf("conflicting formats %s", strings.Join(formats, ", ")))
	}
}

// bool применяется до colors/icons, чтобы явные таблицы его перекрывали.
func applyBadge(t *entry.BadgeEntry, o *options) {
	if v, ok := o.str("bool"); ok {
		yes, no := splitPair(flagless(v))
		t.Bool(yes, no)
	}
	if v, ok := o.str("colors"); ok {
		m, err := parseMapping(v)
		if err != nil {
			o.fail(fmt.Errorf("colors: %w", err))
		}
		t.Colors(m)
	}
	if v, ok := o.str("icons"); ok {
		m, err := parseMapping(v)
		if err != nil {
			o.fail(fmt.Errorf("icons: %w", err))
		}
		t.Icons(m)
	}
}

func applyIcon(t *entry.IconEntry, o *options) {
	if v, ok := o.str("boolean"); ok {
		yes, no := splitPair(flagless(v))
		t.Boolean(yes, no)
	}
	if v, ok := o.str("trueicon"); ok {
		t.TrueIcon(v)
	}
	if v, ok := o.str("falseicon"); ok {
		t.FalseIcon(v)
	}
	if v, ok := o.str("truecolor"); ok {
		t.TrueColor(v)
	}
	if v, ok := o.str("falsecolor"); ok {
		t.FalseColor(v)
	}
	if v, ok := o.str("size"); ok {
		t.Size(v)
	}
	if v, ok := o.flag("circular"); ok {
		t.Circular(v)
	}
}

// size раньше width/height, circular раньше rounded - как в цепочке вызовов.
func applyImage(t *entry.ImageEntry, o *options) {
	if n, ok := o.int("size"); ok {
		t.Size(n)
	}
	if n, ok := o.int("width"); ok {
		t.Width(n)
	}
	if n, ok := o.int("height"); ok {
		t.Height(n)
	}
	if v, ok := o.flag("circular"); ok {
		t.Circular(v)
	}
	if v, ok := o.flag("rounded"); ok {
		t.Rounded(v)
	}
	if v, ok := o.str("alt"); ok {
		t.Alt(v)
	}
	if v, ok := o.str("default"); ok {
		t.DefaultImage(v)
	}
	if v, ok := o.flag("stacked"); ok {
		t.Stacked(v)
	}
	if n, ok := o.int("limit"); ok {
		t.Limit(n)
	}
	if n, ok := o.int("ring"); ok {
		t.Ring(n)
	}
	if n, ok := o.int("overlap"); ok {
		t.Overlap(n)
	}
}

// parseMapping: "active:success|banned:danger" -> map.
func parseMapping(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, "|") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		if !ok || k == "" {
			return nil, fmt.Errorf("malformed pair %q, want key:value", pair)
		}
		out[k] = v
	}
	return out, nil
}

// splitPair: "Yes|No" -> ("Yes", "No"); пустые части - значения по умолчанию.
func splitPair(s string) (string, string) {
	a, b, _ := strings.Cut(s, "|")
	return a, b
}

// flagless: опция без значения приходит как "true".
func flagless(v string) string {
	if v == "true" {
		return ""
	}
	return v
}

func lineErr(d *dsl.EntryDef, err error) error {
	return fmt.Errorf("line %d (%s): %w", d.Line, d.Path, err)
}

// options - опции строки DSL с учётом прочитанных ключей.
type options struct {
	raw  map[string]string
	used map[string]bool
	err  error
}

func newOptions(raw map[string]string) *options {
	return &options{raw: raw, used: map[string]bool{}}
}

func (o *options) str(key string) (string, bool) {
	v, ok := o.raw[key]
	if ok {
		o.used[key] = true
	}
	return v, ok
}

func (o *options) flag(key string) (bool, bool) {
	v, ok := o.str(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		o.fail(fmt.Errorf("%s: %w", key, err))
		return false, false
	}
	return b, true
}

func (o *options) int(key string) (int, bool) {
	v, ok := o.str(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		o.fail(fmt.Errorf("%s: %w", key, err))
		return 0, false
	}
	return n, true
}

func (o *options) fail(err error) {
	if o.err == nil {
		o.err = err
	}
}

// done - первая ошибка разбора или список непрочитанных опций.
func (o *options) done() error {
	if o.err != nil {
		return o.err
	}
	var unknown []string
	for k := range o.raw {
		if !o.used[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(unknown, ", "))
}
