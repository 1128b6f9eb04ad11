package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const codeDuplicateObject = "42710"

// ApplyDDL выполняет DDL по порядку ключей. Уже существующие объекты
// (повторный запуск) пропускаются.
func ApplyDDL(ctx context.Context, db *sql.DB, ddl map[string]string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	keys := make([]string, 0, len(ddl))
	for k := range ddl {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, stmt := range statements(ddl[k]) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				if isDuplicate(err) {
					log.Debug("ddl skipped, already exists", zap.String("phase", k), zap.Error(err))
					continue
				}
				return fmt.Errorf("ddl %s: %w", k, err)
			}
		}
	}
	return nil
}

// statements режет скрипт по ";\n": каждый оператор исполняется отдельно,
// чтобы пропуск одного дубликата не отменял остальные.
func statements(script string) []string {
	var out []string
	for _, s := range strings.Split(script, ";\n") {
		if s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";")); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func isDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeDuplicateObject
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
