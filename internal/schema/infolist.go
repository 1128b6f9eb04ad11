// Package schema - контейнеры инфолиста: упорядоченный набор записей
// и секций, видимость, массовое заполнение и сериализация в пропсы.
package schema

import (
	"fmt"

	"kalita/internal/entry"
	"kalita/internal/record"
)

const (
	KindInfolist = "infolist"
	KindSection  = "section"

	DefaultName = "infolist"
)

// Component - то, что может лежать в схеме: запись или секция.
type Component interface {
	Name() string
	Kind() string
	IsVisible(rec record.Record) bool
	Fill(rec record.Record) error
	ToProps() (*entry.Props, error)
}

// Infolist - корень схемы отображения одной записи.
type Infolist struct {
	name       string
	columns    int
	components []Component
}

// New создаёт инфолист; пустое имя -> "infolist".
func New(name string) *Infolist {
	if name == "" {
		name = DefaultName
	}
	return &Infolist{name: name, columns: 1}
}

func (l *Infolist) Name() string { return l.name }

func (l *Infolist) Schema(components ...Component) *Infolist {
	l.components = append([]Component(nil), components...)
	return l
}

func (l *Infolist) GetSchema() []Component {
	return append([]Component(nil), l.components...)
}

func (l *Infolist) Columns(n int) *Infolist {
	if n < 1 {
		n = 1
	}
	l.columns = n
	return l
}

func (l *Infolist) GetColumns() int { return l.columns }

// VisibleComponents считает видимость заново при каждом вызове.
func (l *Infolist) VisibleComponents(rec record.Record) []Component {
	return visible(l.components, rec)
}

// Fill заполняет видимые компоненты; первая ошибка прерывает заполнение.
func (l *Infolist) Fill(rec record.Record) error {
	return fillAll(l.components, rec)
}

// ToProps сериализует видимые для rec компоненты.
func (l *Infolist) ToProps(rec record.Record) (*entry.Props, error) {
	children, err := propsAll(l.components, rec)
	if err != nil {
		return nil, err
	}
	return entry.NewProps().
		Set("component", KindInfolist).
		Set("name", l.name).
		Set("columns", l.columns).
		Set("schema", children), nil
}

// Render: Fill + ToProps за один проход.
func (l *Infolist) Render(rec record.Record) (*entry.Props, error) {
	if err := l.Fill(rec); err != nil {
		return nil, err
	}
	return l.ToProps(rec)
}

func visible(components []Component, rec record.Record) []Component {
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if c.IsVisible(rec) {
			out = append(out, c)
		}
	}
	return out
}

func fillAll(components []Component, rec record.Record) error {
	for _, c := range visible(components, rec) {
		if err := c.Fill(rec); err != nil {
			return fmt.Errorf("fill %s: %w", c.Name(), err)
		}
	}
	return nil
}

func propsAll(components []Component, rec record.Record) ([]*entry.Props, error) {
	out := make([]*entry.Props, 0, len(components))
	for _, c := range visible(components, rec) {
		var (
			p   *entry.Props
			err error
		)
		if s, ok := c.(*Section); ok {
			p, err = s.PropsFor(rec)
		} else {
			p, err = c.ToProps()
		}
		if err != nil {
			return nil, fmt.Errorf("props %s: %w", c.Name(), err)
		}
		out = append(out, p)
	}
	return out, nil
}
