package store

import (
	"fmt"
	"sort"
)

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// значение для сортировки: системные поля тоже сортируемы
func sortValue(r *Row, key string) (any, bool) {
	switch key {
	case "id":
		return r.ID, true
	case "version":
		return fmt.Sprintf("%020d", r.Version), true
	case "created_at":
		return r.CreatedAt.Format("2006-01-02T15:04:05.000000000"), true
	case "updated_at":
		return r.UpdatedAt.Format("2006-01-02T15:04:05.000000000"), true
	}
	v, ok := r.Data[key]
	return v, ok
}

// сравнение двух записей по одному ключу с учётом политики nulls и направления
func cmpByKey(a, b *Row, key string, nulls string, desc bool) int {
	va, oka := sortValue(a, key)
	vb, okb := sortValue(b, key)

	na := !oka || va == nil
	nb := !okb || vb == nil
	if na && nb {
		return 0
	}
	if na != nb {
		// nulls не зависят от направления
		if (nulls == "first") == na {
			return -1
		}
		return +1
	}

	sa, sb := toString(va), toString(vb)
	rel := 0
	if sa < sb {
		rel = -1
	} else if sa > sb {
		rel = +1
	}
	if desc {
		rel = -rel
	}
	return rel
}

// мультисортировка, стабильная относительно исходного порядка
func sortRows(rows []*Row, keys []SortKey, nulls string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			if k.Field == "" {
				continue
			}
			if c := cmpByKey(rows[i], rows[j], k.Field, nulls, k.Desc); c != 0 {
				return c < 0
			}
		}
		return false
	})
}
