package entry

import (
	"fmt"

	"kalita/internal/record"
)

const DefaultEmptyMessage = "No items"

// RepeatableEntry - повторяющаяся группа: вложенная схема записей,
// применяемая к каждой строке списка.
type RepeatableEntry struct {
	Base[*RepeatableEntry]

	schema       []Entry
	collapsible  bool
	collapsed    bool
	emptyMessage string
}

func Repeatable(name string) *RepeatableEntry {
	e := &RepeatableEntry{}
	e.setup(e, KindRepeatable, name)
	return e
}

// Schema задаёт дочерние записи. Fill на детей здесь не вызывается.
func (e *RepeatableEntry) Schema(children ...Entry) *RepeatableEntry {
	e.schema = append([]Entry(nil), children...)
	return e
}

func (e *RepeatableEntry) GetSchema() []Entry {
	return append([]Entry(nil), e.schema...)
}

func (e *RepeatableEntry) Collapsible(cond bool) *RepeatableEntry {
	e.collapsible = cond
	return e
}

// Collapsed всегда включает collapsible.
func (e *RepeatableEntry) Collapsed(cond bool) *RepeatableEntry {
	e.collapsed = cond
	e.collapsible = true
	return e
}

func (e *RepeatableEntry) EmptyMessage(msg string) *RepeatableEntry {
	e.emptyMessage = msg
	return e
}

// rowProps заполняет детей каждой строкой и сериализует их.
// Состояние детей после этого возвращается к исходному.
func (e *RepeatableEntry) rowProps(rows []record.Record) ([][]*Props, error) {
	out := make([][]*Props, 0, len(rows))
	for i, row := range rows {
		cells := make([]*Props, 0, len(e.schema))
		for _, child := range e.schema {
			if !child.IsVisible(row) {
				continue
			}
			snap := snapshot(child)
			err := child.Fill(row)
			var p *Props
			if err == nil {
				p, err = child.ToProps()
			}
			snap.restore(child)
			if err != nil {
				return nil, fmt.Errorf("%s[%d].%s: %w", e.Name(), i, child.Name(), err)
			}
			cells = append(cells, p)
		}
		out = append(out, cells)
	}
	return out, nil
}

func (e *RepeatableEntry) ToProps() (*Props, error) {
	schema := make([]*Props, 0, len(e.schema))
	for _, child := range e.schema {
		p, err := child.ToProps()
		if err != nil {
			return nil, err
		}
		schema = append(schema, p)
	}

	items := [][]*Props{}
	if rows, ok := record.Rows(e.GetState()); ok {
		var err error
		if items, err = e.rowProps(rows); err != nil {
			return nil, err
		}
	}

	msg := e.emptyMessage
	if msg == "" {
		msg = DefaultEmptyMessage
	}
	return e.baseProps().Merge(NewProps().
		Set("schema", schema).
		Set("collapsible", e.collapsible).
		Set("collapsed", e.collapsed).
		Set("emptyMessage", msg).
		Set("items", items)), nil
}
