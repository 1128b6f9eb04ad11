// Package fieldpath разрешает имя поля инфолиста ("name" или "relation.attribute")
// в сырое значение записи.
package fieldpath

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"kalita/internal/record"
)

// Resolver - резолвер с логгером для проглоченных ошибок загрузки связей.
type Resolver struct {
	Log *zap.Logger
}

var defaultResolver = Resolver{}

// Resolve - резолвер по умолчанию (без логов).
func Resolve(rec record.Record, name string) any {
	return defaultResolver.Resolve(rec, name)
}

// Split делит путь на связь и атрибут. Учитываются только первые два сегмента:
// "a.b.c" -> ("a", "b"). Без точки ok=false.
func Split(name string) (relation, attribute string, ok bool) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return "", name, false
	}
	return parts[0], parts[1], true
}

// Depth - число сегментов пути (для линтера).
func Depth(name string) int {
	return strings.Count(name, ".") + 1
}

// Resolve никогда не возвращает ошибку: отсутствие атрибута, незагружаемая
// связь и nil-связь дают nil. Имя без точки сначала ищется среди атрибутов,
// затем среди связей.
func (r Resolver) Resolve(rec record.Record, name string) any {
	if rec == nil {
		return nil
	}
	relation, attribute, ok := Split(name)
	if !ok {
		if v, found := rec.Attribute(name); found {
			return v
		}
		// атрибута нет: имя может быть связью целиком (repeatable)
		if r.load(rec, name, name) {
			return rec.Relation(name)
		}
		return nil
	}

	if !r.load(rec, relation, name) {
		return nil
	}

	switch related := rec.Relation(relation).(type) {
	case nil:
		return nil
	case record.Collection:
		return pluck([]record.Record(related), attribute)
	case []record.Record:
		return pluck(related, attribute)
	case record.Record:
		v, _ := related.Attribute(attribute)
		return v
	default:
		return nil
	}
}

// load подгружает связь при необходимости; ошибка загрузки = связи нет.
func (r Resolver) load(rec record.Record, relation, path string) bool {
	if rec.RelationLoaded(relation) {
		return true
	}
	if err := rec.LoadRelation(relation); err != nil {
		if r.Log != nil && !errors.Is(err, record.ErrUnknownRelation) {
			r.Log.Debug("relation load failed",
				zap.String("relation", relation),
				zap.String("path", path),
				zap.Error(err))
		}
		return false
	}
	return rec.RelationLoaded(relation)
}

// pluck - проекция коллекции в список значений атрибута, порядок сохраняется.
func pluck(rows []record.Record, attribute string) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			out = append(out, nil)
			continue
		}
		v, _ := row.Attribute(attribute)
		out = append(out, v)
	}
	return out
}
