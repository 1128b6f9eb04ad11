package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"

	"kalita/internal/dsl"
	"kalita/internal/store"
)

const codeUniqueViolation = "23505"

// Store - store.Store поверх таблиц, созданных GenerateDDL.
type Store struct {
	db       *sql.DB
	mu       sync.RWMutex
	entities map[string]*dsl.Entity
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

func NewStore(db *sql.DB, entities map[string]*dsl.Entity) *Store {
	return &Store{
		db:       db,
		entities: entities,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// SetEntities подменяет модель после перезагрузки DSL (таблицы - через ApplyDDL).
func (s *Store) SetEntities(entities map[string]*dsl.Entity) {
	s.mu.Lock()
	s.entities = entities
	s.mu.Unlock()
}

func (s *Store) entity(fqn string) (*dsl.Entity, error) {
	s.mu.RLock()
	e, ok := s.entities[fqn]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUnknownEntity, fqn)
	}
	return e, nil
}

func (s *Store) Insert(ctx context.Context, fqn string, data map[string]any) (*store.Row, error) {
	e, err := s.entity(fqn)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", fqn, err)
	}

	now := s.now()
	row := &store.Row{
		ID:        ulid.Make().String(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	q := "insert into " + tableName(e) + " (id, version, created_at, updated_at, data) values ($1, $2, $3, $4, $5)"
	if _, err := s.db.ExecContext(ctx, q, row.ID, row.Version, row.CreatedAt, row.UpdatedAt, raw); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
			return nil, fmt.Errorf("%s: %w (%s)", fqn, store.ErrConflict, pgErr.ConstraintName)
		}
		return nil, fmt.Errorf("insert %s: %w", fqn, err)
	}
	// данные читаем как из базы: числа -> float64
	if err := json.Unmarshal(raw, &row.Data); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *Store) Get(ctx context.Context, fqn, id string) (*store.Row, error) {
	e, err := s.entity(fqn)
	if err != nil {
		return nil, err
	}
	q := "select id, version, created_at, updated_at, data from " + tableName(e) + " where id = $1"
	row, err := scanRow(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s/%s: %w", fqn, id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", fqn, id, err)
	}
	return row, nil
}

func (s *Store) List(ctx context.Context, fqn string, p store.ListParams) ([]*store.Row, int, error) {
	e, err := s.entity(fqn)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "select count(*) from "+tableName(e)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", fqn, err)
	}

	order, err := orderBy(e, p)
	if err != nil {
		return nil, 0, err
	}
	limit := p.Limit
	if limit <= 0 {
		limit = store.DefaultLimit
	}
	q := "select id, version, created_at, updated_at, data from " + tableName(e) +
		" order by " + order + " limit $1 offset $2"

	rows, err := s.db.QueryContext(ctx, q, limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", fqn, err)
	}
	defer rows.Close()

	out := make([]*store.Row, 0, limit)
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// orderBy строит ORDER BY только из известных полей; id - последний ключ,
// чтобы порядок совпадал с порядком вставки.
func orderBy(e *dsl.Entity, p store.ListParams) (string, error) {
	nulls := " nulls last"
	if strings.EqualFold(p.Nulls, "first") {
		nulls = " nulls first"
	}
	parts := make([]string, 0, len(p.Sort)+1)
	for _, k := range p.Sort {
		if k.Field == "" {
			continue
		}
		var expr string
		switch k.Field {
		case "id", "version", "created_at", "updated_at":
			expr = sqlIdent(k.Field)
		default:
			if _, ok := e.Field(k.Field); !ok {
				return "", fmt.Errorf("sort by unknown field %q", k.Field)
			}
			expr = dataExpr(k.Field)
		}
		dir := " asc"
		if k.Desc {
			dir = " desc"
		}
		parts = append(parts, expr+dir+nulls)
	}
	parts = append(parts, `"id" asc`)
	return strings.Join(parts, ", "), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(sc scanner) (*store.Row, error) {
	var (
		row store.Row
		raw []byte
	)
	if err := sc.Scan(&row.ID, &row.Version, &row.CreatedAt, &row.UpdatedAt, &raw); err != nil {
		return nil, err
	}
	row.CreatedAt = row.CreatedAt.UTC()
	row.UpdatedAt = row.UpdatedAt.UTC()
	if err := json.Unmarshal(raw, &row.Data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", row.ID, err)
	}
	return &row, nil
}
