package entry

const (
	DefaultTrueIcon   = "check-circle"
	DefaultFalseIcon  = "x-circle"
	DefaultTrueColor  = "success"
	DefaultFalseColor = "danger"
)

// IconEntry - иконка. В булевом режиме состояние выводится как одна из
// двух иконок, а iconColor - как соответствующий цвет.
type IconEntry struct {
	Base[*IconEntry]

	size       string
	circular   bool
	isBoolean  bool
	trueIcon   string
	falseIcon  string
	trueColor  string
	falseColor string
}

func Icon(name string) *IconEntry {
	e := &IconEntry{
		trueIcon:   DefaultTrueIcon,
		falseIcon:  DefaultFalseIcon,
		trueColor:  DefaultTrueColor,
		falseColor: DefaultFalseColor,
	}
	e.setup(e, KindIcon, name)
	return e
}

func (e *IconEntry) Size(size string) *IconEntry {
	e.size = size
	return e
}

func (e *IconEntry) Circular(cond bool) *IconEntry {
	e.circular = cond
	return e
}

// Boolean включает булев режим. Необязательные аргументы: иконка для true,
// затем для false; пустая строка оставляет текущее значение.
func (e *IconEntry) Boolean(icons ...string) *IconEntry {
	e.isBoolean = true
	if len(icons) > 0 && icons[0] != "" {
		e.trueIcon = icons[0]
	}
	if len(icons) > 1 && icons[1] != "" {
		e.falseIcon = icons[1]
	}
	return e
}

func (e *IconEntry) IsBoolean() bool { return e.isBoolean }

func (e *IconEntry) TrueIcon(icon string) *IconEntry {
	e.trueIcon = icon
	return e
}

func (e *IconEntry) FalseIcon(icon string) *IconEntry {
	e.falseIcon = icon
	return e
}

func (e *IconEntry) TrueColor(color string) *IconEntry {
	e.trueColor = color
	return e
}

func (e *IconEntry) FalseColor(color string) *IconEntry {
	e.falseColor = color
	return e
}

func (e *IconEntry) ToProps() (*Props, error) {
	props := e.baseProps()

	switch {
	case e.isBoolean:
		// булев режим важнее форматтера
		if Truthy(e.GetState()) {
			props.Set("state", e.trueIcon)
			props.Set("iconColor", e.trueColor)
		} else {
			props.Set("state", e.falseIcon)
			props.Set("iconColor", e.falseColor)
		}
	case e.HasFormatter():
		state, err := e.displayState()
		if err != nil {
			return nil, err
		}
		props.Set("state", state)
	}

	return props.Merge(NewProps().
		Set("size", nullable(e.size)).
		Set("circular", e.circular).
		Set("isBoolean", e.isBoolean).
		Set("trueIcon", e.trueIcon).
		Set("falseIcon", e.falseIcon).
		Set("trueColor", e.trueColor).
		Set("falseColor", e.falseColor)), nil
}
