package store

import (
	"context"
	"encoding/json"
	"fmt"

	"kalita/internal/dsl"
	"kalita/internal/record"
)

// Bound - строка хранилища, видимая инфолисту как record.Record.
// Поля ref[...] - атрибут (сырой id) и одиночная связь с тем же именем;
// array[ref[...]] - только связь-коллекция. Связи грузятся лениво и синхронно.
type Bound struct {
	ctx       context.Context
	store     Store
	entities  map[string]*dsl.Entity
	entity    *dsl.Entity
	row       *Row
	relations map[string]any
}

// Bind привязывает строку сущности fqn к хранилищу для ленивой загрузки связей.
func Bind(ctx context.Context, st Store, entities map[string]*dsl.Entity, fqn string, row *Row) (*Bound, error) {
	ent, ok := entities[fqn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, fqn)
	}
	return &Bound{
		ctx:       ctx,
		store:     st,
		entities:  entities,
		entity:    ent,
		row:       row,
		relations: map[string]any{},
	}, nil
}

// Load - Get + Bind.
func Load(ctx context.Context, st Store, entities map[string]*dsl.Entity, fqn, id string) (*Bound, error) {
	row, err := st.Get(ctx, fqn, id)
	if err != nil {
		return nil, err
	}
	return Bind(ctx, st, entities, fqn, row)
}

func (b *Bound) Row() *Row { return b.row }

func (b *Bound) Entity() *dsl.Entity { return b.entity }

func (b *Bound) Attribute(name string) (any, bool) {
	switch name {
	case "id":
		return b.row.ID, true
	case "version":
		return b.row.Version, true
	case "created_at":
		return b.row.CreatedAt, true
	case "updated_at":
		return b.row.UpdatedAt, true
	}
	if f, ok := b.entity.Field(name); ok && f.IsRefArray() {
		return nil, false
	}
	v, ok := b.row.Data[name]
	return v, ok
}

func (b *Bound) RelationLoaded(name string) bool {
	_, ok := b.relations[name]
	return ok
}

func (b *Bound) Relation(name string) any {
	return b.relations[name]
}

// LoadRelation: пустая ссылка - загруженная nil-связь; висячая ссылка - ошибка.
func (b *Bound) LoadRelation(name string) error {
	f, ok := b.entity.Field(name)
	if !ok || !f.IsRelation() {
		return fmt.Errorf("%s.%s: %w", b.entity.FQN(), name, record.ErrUnknownRelation)
	}
	target := dsl.Qualify(b.entity.Module, f.RefTarget)

	if f.IsRef() {
		id, _ := b.row.Data[name].(string)
		if id == "" {
			b.relations[name] = nil
			return nil
		}
		rel, err := Load(b.ctx, b.store, b.entities, target, id)
		if err != nil {
			return fmt.Errorf("load %s.%s: %w", b.entity.FQN(), name, err)
		}
		b.relations[name] = rel
		return nil
	}

	ids := refIDs(b.row.Data[name])
	coll := make(record.Collection, 0, len(ids))
	for _, id := range ids {
		rel, err := Load(b.ctx, b.store, b.entities, target, id)
		if err != nil {
			return fmt.Errorf("load %s.%s: %w", b.entity.FQN(), name, err)
		}
		coll = append(coll, rel)
	}
	b.relations[name] = coll
	return nil
}

func (b *Bound) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.row.Flatten())
}

// refIDs: []any или []string из JSON/драйвера -> список id.
func refIDs(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
