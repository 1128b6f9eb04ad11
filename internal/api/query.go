package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"kalita/internal/dsl"
	"kalita/internal/store"
)

const maxLimit = 1000

// parseListParams: limit/offset/sort/nulls, с алиасами _limit/_offset/_sort.
// sort="-name,created_at"; некорректные значения игнорируются.
func parseListParams(q url.Values) store.ListParams {
	limit := store.DefaultLimit
	if n, err := strconv.Atoi(first(q, "_limit", "limit")); err == nil && n > 0 && n <= maxLimit {
		limit = n
	}

	offset := 0
	if n, err := strconv.Atoi(first(q, "_offset", "offset")); err == nil && n >= 0 {
		offset = n
	}

	var keys []store.SortKey
	for _, p := range strings.Split(first(q, "_sort", "sort"), ",") {
		p = strings.TrimSpace(p)
		desc := strings.HasPrefix(p, "-")
		p = strings.TrimLeft(p, "+-")
		if p != "" {
			keys = append(keys, store.SortKey{Field: p, Desc: desc})
		}
	}

	nulls := strings.ToLower(strings.TrimSpace(q.Get("nulls")))
	if nulls != "first" {
		nulls = "last"
	}

	return store.ListParams{Limit: limit, Offset: offset, Sort: keys, Nulls: nulls}
}

func first(q url.Values, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

// checkSort: сортировать можно по полям сущности и системным полям.
func checkSort(ent *dsl.Entity, keys []store.SortKey) error {
	for _, k := range keys {
		switch k.Field {
		case "id", "version", "created_at", "updated_at":
			continue
		}
		if _, ok := ent.Field(k.Field); !ok {
			return fmt.Errorf("unknown sort field %q", k.Field)
		}
	}
	return nil
}
