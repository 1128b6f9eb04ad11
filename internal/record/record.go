package record

import (
	"encoding/json"
	"errors"
)

// ErrUnknownRelation - у записи нет связи с таким именем.
var ErrUnknownRelation = errors.New("unknown relation")

// Record - минимальный контракт записи, который нужен инфолистам:
// атрибуты по имени и связи с ленивой загрузкой.
type Record interface {
	// Attribute возвращает значение атрибута; ok=false, если атрибута нет.
	Attribute(name string) (any, bool)

	// RelationLoaded сообщает, загружена ли связь.
	RelationLoaded(name string) bool

	// LoadRelation загружает связь синхронно.
	LoadRelation(name string) error

	// Relation возвращает загруженное значение связи:
	// Record (одиночная связь), Collection (коллекция) или nil.
	Relation(name string) any
}

// Collection - однородная коллекция связанных записей, порядок сохраняется.
type Collection []Record

// Loader подгружает связь для MapRecord.
type Loader func(name string) (any, error)

// MapRecord - запись в памяти поверх map. Используется в тестах,
// в CLI-рендере и как строка для RepeatableEntry.
type MapRecord struct {
	Attrs     map[string]any
	Relations map[string]any
	Load      Loader
}

// FromMap оборачивает map в запись без связей.
func FromMap(attrs map[string]any) *MapRecord {
	return &MapRecord{Attrs: attrs}
}

func (r *MapRecord) Attribute(name string) (any, bool) {
	if r == nil || r.Attrs == nil {
		return nil, false
	}
	v, ok := r.Attrs[name]
	return v, ok
}

func (r *MapRecord) RelationLoaded(name string) bool {
	if r == nil || r.Relations == nil {
		return false
	}
	_, ok := r.Relations[name]
	return ok
}

func (r *MapRecord) LoadRelation(name string) error {
	if r.Load == nil {
		return ErrUnknownRelation
	}
	v, err := r.Load(name)
	if err != nil {
		return err
	}
	r.SetRelation(name, v)
	return nil
}

func (r *MapRecord) Relation(name string) any {
	if r == nil || r.Relations == nil {
		return nil
	}
	return r.Relations[name]
}

// MarshalJSON сериализует только атрибуты: запись может оказаться
// в state (например, строки RepeatableEntry).
func (r *MapRecord) MarshalJSON() ([]byte, error) {
	if r == nil || r.Attrs == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Attrs)
}

// SetRelation помечает связь загруженной (значение может быть nil).
func (r *MapRecord) SetRelation(name string, v any) *MapRecord {
	if r.Relations == nil {
		r.Relations = map[string]any{}
	}
	r.Relations[name] = v
	return r
}

// Rows приводит значение к списку записей: Collection, []Record,
// []map[string]any и []any из map/Record. ok=false, если это не список строк.
func Rows(v any) ([]Record, bool) {
	switch t := v.(type) {
	case Collection:
		return []Record(t), true
	case []Record:
		return t, true
	case []map[string]any:
		out := make([]Record, 0, len(t))
		for _, m := range t {
			out = append(out, FromMap(m))
		}
		return out, true
	case []any:
		out := make([]Record, 0, len(t))
		for _, it := range t {
			switch row := it.(type) {
			case Record:
				out = append(out, row)
			case map[string]any:
				out = append(out, FromMap(row))
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}
