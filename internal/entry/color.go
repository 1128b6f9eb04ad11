package entry

// ColorEntry - образец цвета (hex/rgb/имя). По умолчанию копируется
// и показывает подпись.
type ColorEntry struct {
	Base[*ColorEntry]

	showLabel bool
	size      string
}

func Color(name string) *ColorEntry {
	e := &ColorEntry{showLabel: true}
	e.setup(e, KindColor, name)
	e.env.copyable = true
	return e
}

func (e *ColorEntry) ShowLabel(cond bool) *ColorEntry {
	e.showLabel = cond
	return e
}

func (e *ColorEntry) Size(size string) *ColorEntry {
	e.size = size
	return e
}

func (e *ColorEntry) ToProps() (*Props, error) {
	return e.baseProps().Merge(NewProps().
		Set("showLabel", e.showLabel).
		Set("size", nullable(e.size))), nil
}
