package entry

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Formatter преобразует сырое состояние в отображаемое. nil-результат -
// законный "пусто". Ошибка не перехватывается и уходит вызывающему.
type Formatter func(state any) (any, error)

const (
	DefaultDateLayout     = "Jan 02, 2006"
	DefaultDateTimeLayout = "Jan 02, 2006 15:04"
)

// порядок важен: от более полного к краткому
var dateInputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// MoneyFormatter: "USD 1,234.50". divideBy - сумма хранится в центах.
// Пустое значение -> nil; нечисловое считается нулём.
func MoneyFormatter(currency string, divideBy bool) Formatter {
	return func(state any) (any, error) {
		if state == nil || state == "" {
			return nil, nil
		}
		n, ok := toFloat(state)
		if !ok {
			n = 0
		}
		if divideBy {
			n = n / 100
		}
		return currency + " " + humanize.FormatFloat("#,###.##", n), nil
	}
}

// NumericFormatter группирует разряды с заданным числом знаков после точки.
func NumericFormatter(decimals int) Formatter {
	if decimals < 0 {
		decimals = 0
	}
	format := "#,###." + strings.Repeat("#", decimals)
	return func(state any) (any, error) {
		if state == nil || state == "" {
			return nil, nil
		}
		n, ok := toFloat(state)
		if !ok {
			return state, nil
		}
		return humanize.FormatFloat(format, n), nil
	}
}

// DateFormatter форматирует дату Go-layout'ом. Ложное значение -> nil,
// нераспознанная строка -> ошибка.
func DateFormatter(layout string) Formatter {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return func(state any) (any, error) {
		if !Truthy(state) {
			return nil, nil
		}
		t, err := ParseTime(state)
		if err != nil {
			return nil, err
		}
		return t.Format(layout), nil
	}
}

// SinceFormatter - относительное время: "2 days ago".
func SinceFormatter() Formatter {
	return func(state any) (any, error) {
		if !Truthy(state) {
			return nil, nil
		}
		t, err := ParseTime(state)
		if err != nil {
			return nil, err
		}
		return humanize.Time(t), nil
	}
}

// BooleanFormatter: истинное -> trueLabel, ложное -> falseLabel, nil -> nil.
func BooleanFormatter(trueLabel, falseLabel string) Formatter {
	return func(state any) (any, error) {
		if state == nil {
			return nil, nil
		}
		if Truthy(state) {
			return trueLabel, nil
		}
		return falseLabel, nil
	}
}

// ParseTime принимает time.Time, *time.Time, unix-секунды и строки
// в распространённых форматах.
func ParseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("date: nil time")
		}
		return *t, nil
	case int:
		return time.Unix(int64(t), 0).UTC(), nil
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case float64:
		return time.Unix(int64(t), 0).UTC(), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateInputLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("date: cannot parse %q", t)
	}
	return time.Time{}, fmt.Errorf("date: unsupported value of type %T", v)
}

// Truthy - "истинность" значения в духе динамических языков:
// nil, false, 0, "", "0", пустые списки и map - ложь.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32:
		return rv.Float() != 0
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// stateKey - ключ для поиска состояния в map'ах цветов/иконок.
func stateKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
