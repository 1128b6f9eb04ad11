package entry

// Directive - значение представления (цвет, иконка): литерал или функция
// от текущего состояния, вычисляемая лениво в ToProps.
type Directive struct {
	literal string
	set     bool
	fn      func(state any) string
}

// Literal - фиксированное значение. Пустая строка означает "не задано".
func Literal(v string) Directive {
	return Directive{literal: v, set: v != ""}
}

// Computed - значение, вычисляемое от отформатированного состояния.
func Computed(fn func(state any) string) Directive {
	return Directive{fn: fn, set: fn != nil}
}

func (d Directive) IsSet() bool { return d.set }

// Resolve возвращает строку или nil, если директива не задана
// или функция вернула пустую строку.
func (d Directive) Resolve(state any) any {
	if !d.set {
		return nil
	}
	if d.fn != nil {
		if v := d.fn(state); v != "" {
			return v
		}
		return nil
	}
	return d.literal
}
