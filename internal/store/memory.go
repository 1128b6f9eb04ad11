package store

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Memory - хранилище в памяти. Идентификаторы - монотонные ULID.
type Memory struct {
	mu      sync.RWMutex
	data    map[string]map[string]*Row // FQN -> id -> запись
	entropy io.Reader
	now     func() time.Time
}

func NewMemory() *Memory {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Memory{
		data:    make(map[string]map[string]*Row),
		entropy: ulid.Monotonic(src, 0),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// вызывается под write-lock: Monotonic не потокобезопасен
func (m *Memory) newID() string {
	return ulid.MustNew(ulid.Timestamp(m.now()), m.entropy).String()
}

func (m *Memory) Insert(ctx context.Context, fqn string, data map[string]any) (*Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	row := &Row{
		ID:        m.newID(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      copyData(data),
	}
	if m.data[fqn] == nil {
		m.data[fqn] = make(map[string]*Row)
	}
	m.data[fqn][row.ID] = row
	return cloneRow(row), nil
}

func (m *Memory) Get(ctx context.Context, fqn, id string) (*Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.data[fqn][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", fqn, id, ErrNotFound)
	}
	return cloneRow(row), nil
}

// List отдаёт страницу и общее число записей. Без сортировки порядок -
// порядок вставки (ULID растут монотонно).
func (m *Memory) List(ctx context.Context, fqn string, p ListParams) ([]*Row, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.RLock()
	rows := make([]*Row, 0, len(m.data[fqn]))
	for _, row := range m.data[fqn] {
		rows = append(rows, cloneRow(row))
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	sortRows(rows, p.Sort, p.Nulls)

	total := len(rows)
	return page(rows, p.Limit, p.Offset), total, nil
}

func page(rows []*Row, limit, offset int) []*Row {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset >= len(rows) {
		return []*Row{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func cloneRow(r *Row) *Row {
	c := *r
	c.Data = copyData(r.Data)
	return &c
}
