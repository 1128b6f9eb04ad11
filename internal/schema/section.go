package schema

import (
	"strings"

	"kalita/internal/entry"
	"kalita/internal/record"
)

// Section - узел раскладки: заголовок и вложенные компоненты.
type Section struct {
	heading     string
	description string
	collapsible bool
	collapsed   bool
	columns     int
	hidden      bool
	visibleWhen func(rec record.Record) bool
	components  []Component
}

func NewSection(heading string) *Section {
	return &Section{heading: heading, columns: 1}
}

// Name - ключ секции, производный от заголовка: "Contact details" -> "contact_details".
func (s *Section) Name() string {
	return strings.ToLower(strings.Join(strings.Fields(s.heading), "_"))
}

func (s *Section) Kind() string { return KindSection }

func (s *Section) Heading() string { return s.heading }

func (s *Section) Description(text string) *Section {
	s.description = text
	return s
}

func (s *Section) Collapsible(cond bool) *Section {
	s.collapsible = cond
	return s
}

// Collapsed всегда включает collapsible.
func (s *Section) Collapsed(cond bool) *Section {
	s.collapsed = cond
	s.collapsible = true
	return s
}

func (s *Section) Columns(n int) *Section {
	if n < 1 {
		n = 1
	}
	s.columns = n
	return s
}

func (s *Section) Hidden(cond bool) *Section {
	s.hidden = cond
	return s
}

func (s *Section) VisibleWhen(fn func(rec record.Record) bool) *Section {
	s.visibleWhen = fn
	return s
}

func (s *Section) IsVisible(rec record.Record) bool {
	if s.hidden {
		return false
	}
	if s.visibleWhen != nil {
		return s.visibleWhen(rec)
	}
	return true
}

func (s *Section) Schema(components ...Component) *Section {
	s.components = append([]Component(nil), components...)
	return s
}

func (s *Section) GetSchema() []Component {
	return append([]Component(nil), s.components...)
}

func (s *Section) Fill(rec record.Record) error {
	return fillAll(s.components, rec)
}

// ToProps - PropsFor без записи.
func (s *Section) ToProps() (*entry.Props, error) {
	return s.PropsFor(nil)
}

// PropsFor сериализует детей, видимых для rec.
func (s *Section) PropsFor(rec record.Record) (*entry.Props, error) {
	children, err := propsAll(s.components, rec)
	if err != nil {
		return nil, err
	}
	var desc any
	if s.description != "" {
		desc = s.description
	}
	return entry.NewProps().
		Set("component", KindSection).
		Set("name", s.Name()).
		Set("heading", s.heading).
		Set("description", desc).
		Set("collapsible", s.collapsible).
		Set("collapsed", s.collapsed).
		Set("columns", s.columns).
		Set("schema", children), nil
}
