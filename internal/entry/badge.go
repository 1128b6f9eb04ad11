package entry

const (
	DefaultBadgeColor     = "gray"
	DefaultBadgeTrueIcon  = "heroicon-o-check-circle"
	DefaultBadgeFalseIcon = "heroicon-o-x-circle"
)

// BadgeEntry - бейдж, цвет и иконка которого выбираются по
// ОТФОРМАТИРОВАННОМУ состоянию через таблицы colors/icons.
type BadgeEntry struct {
	Base[*BadgeEntry]

	colors map[string]string
	icons  map[string]string
}

func Badge(name string) *BadgeEntry {
	e := &BadgeEntry{colors: map[string]string{}, icons: map[string]string{}}
	e.setup(e, KindBadge, name)
	return e
}

// Colors заменяет таблицу целиком.
func (e *BadgeEntry) Colors(colors map[string]string) *BadgeEntry {
	e.colors = copyMap(colors)
	return e
}

// Icons заменяет таблицу целиком.
func (e *BadgeEntry) Icons(icons map[string]string) *BadgeEntry {
	e.icons = copyMap(icons)
	return e
}

// Bool ставит форматтер bool -> имя иконки и безусловно перезаписывает
// colors и icons. Ранее заданные таблицы теряются; Colors/Icons после Bool
// снова их заменят.
func (e *BadgeEntry) Bool(trueIcon, falseIcon string) *BadgeEntry {
	if trueIcon == "" {
		trueIcon = DefaultBadgeTrueIcon
	}
	if falseIcon == "" {
		falseIcon = DefaultBadgeFalseIcon
	}
	e.FormatStateUsing(func(state any) (any, error) {
		if Truthy(state) {
			return trueIcon, nil
		}
		return falseIcon, nil
	})
	e.colors = map[string]string{trueIcon: "success", falseIcon: "danger"}
	e.icons = map[string]string{trueIcon: trueIcon, falseIcon: falseIcon}
	return e
}

func (e *BadgeEntry) GetColors() map[string]string { return copyMap(e.colors) }

func (e *BadgeEntry) GetIcons() map[string]string { return copyMap(e.icons) }

func (e *BadgeEntry) ToProps() (*Props, error) {
	props := e.baseProps()

	formatted, err := e.displayState()
	if err != nil {
		return nil, err
	}
	props.Set("state", formatted)

	key := stateKey(formatted)
	if c, ok := e.colors[key]; ok && Truthy(formatted) {
		props.Set("color", c)
	} else if props.Get("color") == nil {
		props.Set("color", DefaultBadgeColor)
	}
	if ic, ok := e.icons[key]; ok && Truthy(formatted) {
		props.Set("icon", ic)
	}

	return props.Merge(NewProps().
		Set("colors", copyMap(e.colors)).
		Set("icons", copyMap(e.icons))), nil
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
