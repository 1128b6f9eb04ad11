package dsl

import "strings"

// Entity описывает структуру сущности из DSL
type Entity struct {
	Module      string
	Name        string
	Fields      []Field
	Constraints Constraints
	File        string
}

// Constraints - ограничения уровня сущности
type Constraints struct {
	Unique [][]string
}

// Field описывает поле сущности
type Field struct {
	Name      string
	Type      string            // string, int, date, enum, ref, array и т.д.
	ElemType  string            // для array: тип элемента
	RefTarget string            // для ref и array[ref]: имя целевой сущности
	Enum      []string          // значения enum
	Options   map[string]string // required, unique, default и прочие опции
}

func (e *Entity) FQN() string { return e.Module + "." + e.Name }

// Field ищет поле по имени.
func (e *Entity) Field(name string) (*Field, bool) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i], true
		}
	}
	return nil, false
}

// IsRef - одиночная ссылка ref[...].
func (f Field) IsRef() bool { return f.Type == "ref" }

// IsRefArray - коллекция ссылок array[ref[...]].
func (f Field) IsRefArray() bool { return f.Type == "array" && f.ElemType == "ref" }

// IsRelation - поле, через которое можно ходить "relation.attribute".
func (f Field) IsRelation() bool { return f.IsRef() || f.IsRefArray() }

// Infolist - декларация инфолиста: что и как показывать для записи сущности.
type Infolist struct {
	Module  string
	Name    string
	Entity  string // как написано в DSL: "User" или "core.User"
	Options map[string]string
	Entries []*EntryDef
	File    string
}

func (l *Infolist) FQN() string { return l.Module + "." + l.Name }

// EntityFQN квалифицирует целевую сущность модулем инфолиста.
func (l *Infolist) EntityFQN() string {
	return Qualify(l.Module, l.Entity)
}

// EntryDef - одна строка инфолиста. Для section Path - заголовок секции.
type EntryDef struct {
	Path     string
	Kind     string
	Options  map[string]string
	Children []*EntryDef
	Line     int
}

// Option возвращает значение опции и признак её наличия.
func (d *EntryDef) Option(key string) (string, bool) {
	v, ok := d.Options[key]
	return v, ok
}

// Model - всё, что загружено из каталога DSL.
type Model struct {
	Entities  map[string]*Entity
	Infolists map[string]*Infolist
}

// Qualify: "User" в модуле core -> "core.User"; полное имя не меняется.
func Qualify(module, name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return module + "." + name
}
