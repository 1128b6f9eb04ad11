// Package store - хранение записей сущностей DSL и привязка строк хранилища
// к record.Record для инфолистов.
package store

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownEntity = errors.New("unknown entity")
	ErrConflict      = errors.New("unique constraint violated")
)

// Row - запись сущности в хранилище.
type Row struct {
	ID        string         `json:"id"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Data      map[string]any `json:"data"`
}

// Flatten - плоский вид записи: системные поля плюс данные.
func (r *Row) Flatten() map[string]any {
	out := map[string]any{
		"id":         r.ID,
		"version":    r.Version,
		"created_at": r.CreatedAt.Format(time.RFC3339),
		"updated_at": r.UpdatedAt.Format(time.RFC3339),
	}
	for k, v := range r.Data {
		// пользовательские поля не перетирают служебные
		if _, clash := out[k]; clash {
			out["data."+k] = v
			continue
		}
		out[k] = v
	}
	return out
}

// Store - хранилище записей по FQN сущности ("module.Name").
type Store interface {
	Insert(ctx context.Context, fqn string, data map[string]any) (*Row, error)
	Get(ctx context.Context, fqn, id string) (*Row, error)
	List(ctx context.Context, fqn string, p ListParams) ([]*Row, int, error)
}

type SortKey struct {
	Field string
	Desc  bool
}

// ListParams - пагинация и сортировка листинга.
type ListParams struct {
	Limit  int
	Offset int
	Sort   []SortKey
	Nulls  string // "last" (default) | "first"
}

const DefaultLimit = 50
