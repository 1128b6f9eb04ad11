// Package entry - модель записей инфолиста: базовый конверт представления
// (имя, метка, состояние, форматтер, цвет/иконка/подсказка) и типизированные
// записи, которые сериализуются в пропсы для фронтенда.
package entry

import (
	"strings"
	"unicode"

	"kalita/internal/fieldpath"
	"kalita/internal/record"
)

// DefaultPlaceholder показывается фронтом вместо пустого состояния.
const DefaultPlaceholder = "-"

// Теги компонентов.
const (
	KindText       = "text_entry"
	KindBadge      = "badge_entry"
	KindIcon       = "icon_entry"
	KindImage      = "image_entry"
	KindColor      = "color_entry"
	KindCode       = "code_entry"
	KindKeyValue   = "key_value_entry"
	KindRepeatable = "repeatable_entry"
)

// Entry - общий контракт всех записей. Набор реализаций закрыт пакетом.
type Entry interface {
	Name() string
	Kind() string
	GetLabel() string
	GetState() any
	Fill(rec record.Record) error
	FormatState(v any) (any, error)
	IsVisible(rec record.Record) bool
	ToProps() (*Props, error)

	envelope() *envelope
}

// envelope - общие поля любой записи.
type envelope struct {
	kind        string
	name        string
	label       string
	helperText  string
	hidden      bool
	visibleWhen func(rec record.Record) bool

	state any
	// filled: state получен через Fill и уже отформатирован
	filled bool

	placeholder string
	formatter   Formatter
	copyable    bool
	color       Directive
	icon        Directive
	iconColor   Directive
	tooltip     string

	resolver fieldpath.Resolver
}

// Base - встраиваемая основа записи. T - конкретный тип записи,
// чтобы сеттеры возвращали его для цепочек вызовов.
type Base[T any] struct {
	env  envelope
	self T
}

func (b *Base[T]) setup(self T, kind, name string) {
	b.self = self
	b.env = envelope{kind: kind, name: name, placeholder: DefaultPlaceholder}
}

func (b *Base[T]) envelope() *envelope { return &b.env }

func (b *Base[T]) Name() string { return b.env.name }

func (b *Base[T]) Kind() string { return b.env.kind }

func (b *Base[T]) Label(label string) T {
	b.env.label = label
	return b.self
}

// GetLabel: явная метка или производная от последнего сегмента имени.
func (b *Base[T]) GetLabel() string {
	if b.env.label != "" {
		return b.env.label
	}
	return headline(b.env.name)
}

func (b *Base[T]) HelperText(text string) T {
	b.env.helperText = text
	return b.self
}

func (b *Base[T]) Hidden(cond bool) T {
	b.env.hidden = cond
	return b.self
}

func (b *Base[T]) Visible(cond bool) T {
	b.env.hidden = !cond
	return b.self
}

// VisibleWhen - условие видимости от записи; вычисляется при каждом запросе.
func (b *Base[T]) VisibleWhen(fn func(rec record.Record) bool) T {
	b.env.visibleWhen = fn
	return b.self
}

func (b *Base[T]) IsVisible(rec record.Record) bool {
	if b.env.hidden {
		return false
	}
	if b.env.visibleWhen != nil {
		return b.env.visibleWhen(rec)
	}
	return true
}

func (b *Base[T]) Placeholder(text string) T {
	b.env.placeholder = text
	return b.self
}

func (b *Base[T]) GetPlaceholder() string { return b.env.placeholder }

func (b *Base[T]) Copyable(cond bool) T {
	b.env.copyable = cond
	return b.self
}

func (b *Base[T]) IsCopyable() bool { return b.env.copyable }

func (b *Base[T]) Tooltip(text string) T {
	b.env.tooltip = text
	return b.self
}

// FormatStateUsing ставит форматтер. Слот один: повторный вызов заменяет
// предыдущий форматтер, а не оборачивает его.
func (b *Base[T]) FormatStateUsing(fn Formatter) T {
	b.env.formatter = fn
	return b.self
}

func (b *Base[T]) HasFormatter() bool { return b.env.formatter != nil }

func (b *Base[T]) FormatState(v any) (any, error) {
	if b.env.formatter == nil {
		return v, nil
	}
	return b.env.formatter(v)
}

func (b *Base[T]) Color(color string) T {
	b.env.color = Literal(color)
	return b.self
}

func (b *Base[T]) ColorUsing(fn func(state any) string) T {
	b.env.color = Computed(fn)
	return b.self
}

func (b *Base[T]) Icon(icon string) T {
	b.env.icon = Literal(icon)
	return b.self
}

func (b *Base[T]) IconUsing(fn func(state any) string) T {
	b.env.icon = Computed(fn)
	return b.self
}

func (b *Base[T]) IconColor(color string) T {
	b.env.iconColor = Literal(color)
	return b.self
}

func (b *Base[T]) IconColorUsing(fn func(state any) string) T {
	b.env.iconColor = Computed(fn)
	return b.self
}

func (b *Base[T]) GetColor() any { return b.env.color.Resolve(b.env.state) }

func (b *Base[T]) GetIcon() any { return b.env.icon.Resolve(b.env.state) }

func (b *Base[T]) GetIconColor() any { return b.env.iconColor.Resolve(b.env.state) }

// State задаёт состояние напрямую, минуя резолвер и форматтер.
// Значение хранится как есть, placeholder не подставляется.
func (b *Base[T]) State(v any) T {
	b.env.state = v
	b.env.filled = false
	return b.self
}

func (b *Base[T]) GetState() any { return b.env.state }

// ResolveWith задаёт резолвер путей (например, с логгером).
func (b *Base[T]) ResolveWith(r fieldpath.Resolver) T {
	b.env.resolver = r
	return b.self
}

// Fill: сырое значение из записи -> форматтер -> state.
// Ошибка форматтера возвращается как есть, state при этом не меняется.
func (b *Base[T]) Fill(rec record.Record) error {
	raw := b.env.resolver.Resolve(rec, b.env.name)
	v, err := b.FormatState(raw)
	if err != nil {
		return err
	}
	b.env.state = v
	b.env.filled = true
	return nil
}

// displayState - состояние для вывода: после Fill оно уже отформатировано,
// после State(v) форматируется здесь.
func (b *Base[T]) displayState() (any, error) {
	if b.env.filled {
		return b.env.state, nil
	}
	return b.FormatState(b.env.state)
}

// baseProps - пропсы, общие для всех записей.
func (b *Base[T]) baseProps() *Props {
	e := &b.env
	return NewProps().
		Set("component", e.kind).
		Set("name", e.name).
		Set("label", b.GetLabel()).
		Set("hidden", e.hidden).
		Set("helperText", nullable(e.helperText)).
		Set("state", e.state).
		Set("copyable", e.copyable).
		Set("color", b.GetColor()).
		Set("icon", b.GetIcon()).
		Set("iconColor", b.GetIconColor()).
		Set("tooltip", nullable(e.tooltip)).
		Set("placeholder", e.placeholder)
}

// snapshot/restore нужны RepeatableEntry: дети заполняются построчно,
// после сериализации их состояние возвращается.
type stateSnapshot struct {
	state  any
	filled bool
}

func snapshot(e Entry) stateSnapshot {
	env := e.envelope()
	return stateSnapshot{state: env.state, filled: env.filled}
}

func (s stateSnapshot) restore(e Entry) {
	env := e.envelope()
	env.state = s.state
	env.filled = s.filled
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// headline: "group.created_at" -> "Created at", "firstName" -> "First name".
func headline(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	var words []string
	var cur []rune
	runes := []rune(name)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r) && i > 0 && unicode.IsLower(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	if len(words) == 0 {
		return ""
	}
	out := []rune(strings.Join(words, " "))
	out[0] = unicode.ToUpper(out[0])
	return string(out)
}

// SetResolver ставит резолвер записи и, для RepeatableEntry, её детям.
func SetResolver(e Entry, r fieldpath.Resolver) {
	e.envelope().resolver = r
	if rep, ok := e.(*RepeatableEntry); ok {
		for _, child := range rep.schema {
			SetResolver(child, r)
		}
	}
}
