package entry

// TextEntry - текстовое значение с форматированием.
type TextEntry struct {
	Base[*TextEntry]

	limit    *int
	wrap     bool
	markdown bool
	html     bool
	prefix   string
	suffix   string
	badge    bool
}

func Text(name string) *TextEntry {
	e := &TextEntry{}
	e.setup(e, KindText, name)
	return e
}

func (e *TextEntry) Limit(n int) *TextEntry {
	e.limit = &n
	return e
}

func (e *TextEntry) Wrap(cond bool) *TextEntry {
	e.wrap = cond
	return e
}

func (e *TextEntry) Markdown(cond bool) *TextEntry {
	e.markdown = cond
	return e
}

func (e *TextEntry) HTML(cond bool) *TextEntry {
	e.html = cond
	return e
}

func (e *TextEntry) Prefix(s string) *TextEntry {
	e.prefix = s
	return e
}

func (e *TextEntry) Suffix(s string) *TextEntry {
	e.suffix = s
	return e
}

func (e *TextEntry) Badge(cond bool) *TextEntry {
	e.badge = cond
	return e
}

// Money, Date, DateTime, Since, Numeric и Boolean ставят форматтер
// в единственный слот: последний вызов побеждает.

func (e *TextEntry) Money(currency string, divideBy bool) *TextEntry {
	if currency == "" {
		currency = "USD"
	}
	return e.FormatStateUsing(MoneyFormatter(currency, divideBy))
}

func (e *TextEntry) Date(layout string) *TextEntry {
	return e.FormatStateUsing(DateFormatter(layout))
}

func (e *TextEntry) DateTime(layout string) *TextEntry {
	if layout == "" {
		layout = DefaultDateTimeLayout
	}
	return e.Date(layout)
}

func (e *TextEntry) Since() *TextEntry {
	return e.FormatStateUsing(SinceFormatter())
}

func (e *TextEntry) Numeric(decimals int) *TextEntry {
	return e.FormatStateUsing(NumericFormatter(decimals))
}

func (e *TextEntry) Boolean(trueLabel, falseLabel string) *TextEntry {
	if trueLabel == "" {
		trueLabel = "Yes"
	}
	if falseLabel == "" {
		falseLabel = "No"
	}
	return e.FormatStateUsing(BooleanFormatter(trueLabel, falseLabel))
}

func (e *TextEntry) ToProps() (*Props, error) {
	return e.baseProps().Merge(NewProps().
		Set("limit", intOrNil(e.limit)).
		Set("wrap", e.wrap).
		Set("markdown", e.markdown).
		Set("html", e.html).
		Set("prefix", nullable(e.prefix)).
		Set("suffix", nullable(e.suffix)).
		Set("badge", e.badge)), nil
}
