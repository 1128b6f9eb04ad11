package entry

import (
	"sort"

	"github.com/tidwall/gjson"
)

// KeyValueEntry - таблица ключ/значение. Копирование ключей и значений
// настраивается отдельно от общего copyable.
type KeyValueEntry struct {
	Base[*KeyValueEntry]

	keyLabel       string
	valueLabel     string
	copyableKeys   bool
	copyableValues bool
}

func KeyValue(name string) *KeyValueEntry {
	e := &KeyValueEntry{keyLabel: "Key", valueLabel: "Value"}
	e.setup(e, KindKeyValue, name)
	return e
}

func (e *KeyValueEntry) KeyLabel(label string) *KeyValueEntry {
	e.keyLabel = label
	return e
}

func (e *KeyValueEntry) ValueLabel(label string) *KeyValueEntry {
	e.valueLabel = label
	return e
}

func (e *KeyValueEntry) CopyableKeys(cond bool) *KeyValueEntry {
	e.copyableKeys = cond
	return e
}

func (e *KeyValueEntry) CopyableValues(cond bool) *KeyValueEntry {
	e.copyableValues = cond
	return e
}

// Pair - строка таблицы.
type Pair struct {
	Key   string
	Value any
}

// Pairs раскладывает состояние в упорядоченные пары: JSON-объект в строке -
// в порядке документа, map - по ключам. Остальное даёт nil.
func Pairs(state any) []Pair {
	switch t := state.(type) {
	case string:
		if !gjson.Valid(t) {
			return nil
		}
		doc := gjson.Parse(t)
		if !doc.IsObject() {
			return nil
		}
		var out []Pair
		doc.ForEach(func(k, v gjson.Result) bool {
			out = append(out, Pair{Key: k.String(), Value: v.Value()})
			return true
		})
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Pair, 0, len(keys))
		for _, k := range keys {
			out = append(out, Pair{Key: k, Value: t[k]})
		}
		return out
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]Pair, 0, len(keys))
		for _, k := range keys {
			out = append(out, Pair{Key: k, Value: t[k]})
		}
		return out
	}
	return nil
}

func (e *KeyValueEntry) ToProps() (*Props, error) {
	pairs := Pairs(e.GetState())
	items := make([]*Props, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, NewProps().Set("key", p.Key).Set("value", p.Value))
	}
	return e.baseProps().Merge(NewProps().
		Set("keyLabel", e.keyLabel).
		Set("valueLabel", e.valueLabel).
		Set("copyableKeys", e.copyableKeys).
		Set("copyableValues", e.copyableValues).
		Set("items", items)), nil
}
