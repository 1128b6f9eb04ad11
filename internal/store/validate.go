package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"kalita/internal/dsl"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок валидации
const (
	CodeRequired        = "required"
	CodeTypeMismatch    = "type_mismatch"
	CodeEnumInvalid     = "enum_invalid"
	CodeUniqueViolation = "unique_violation"
	CodeRefNotFound     = "ref_not_found"
	CodeReadOnly        = "readonly_field"
	CodeUnknownField    = "unknown_field"
)

var systemFields = []string{"id", "created_at", "updated_at", "version"}

// Validate проверяет и нормализует data под схему сущности перед Insert.
// Ссылки и уникальность проверяются по st. Ошибка - только сбой хранилища.
func Validate(ctx context.Context, st Store, ent *dsl.Entity, data map[string]any) ([]FieldError, error) {
	var errs []FieldError

	for _, k := range systemFields {
		if _, ok := data[k]; ok {
			errs = append(errs, ferr(CodeReadOnly, k, "Field '"+k+"' is read-only"))
		}
	}

	applyDefaults(ent, data)

	for _, f := range ent.Fields {
		if strings.EqualFold(f.Options["required"], "true") {
			if v, ok := data[f.Name]; !ok || v == nil {
				errs = append(errs, ferr(CodeRequired, f.Name, "Field '"+f.Name+"' is required"))
			}
		}
		if strings.EqualFold(f.Options["readonly"], "true") {
			if _, ok := data[f.Name]; ok {
				errs = append(errs, ferr(CodeReadOnly, f.Name, "Field '"+f.Name+"' is read-only"))
			}
		}
	}

	for name, val := range data {
		if isSystem(name) {
			continue
		}
		f, ok := ent.Field(name)
		if !ok {
			errs = append(errs, ferr(CodeUnknownField, name, "Unknown field '"+name+"'"))
			continue
		}
		if val == nil {
			continue
		}
		norm, err := coerceValue(*f, val)
		if err != nil {
			code := CodeTypeMismatch
			if f.Type == "enum" || f.ElemType == "enum" {
				code = CodeEnumInvalid
			}
			errs = append(errs, ferr(code, name, "Field '"+name+"' "+err.Error()))
			continue
		}
		data[name] = norm
	}
	if len(errs) > 0 {
		return errs, nil
	}

	refErrs, err := checkRefs(ctx, st, ent, data)
	if err != nil {
		return nil, err
	}
	errs = append(errs, refErrs...)

	uniqErrs, err := checkUnique(ctx, st, ent, data)
	if err != nil {
		return nil, err
	}
	return append(errs, uniqErrs...), nil
}

func isSystem(name string) bool {
	for _, k := range systemFields {
		if k == name {
			return true
		}
	}
	return false
}

func checkRefs(ctx context.Context, st Store, ent *dsl.Entity, data map[string]any) ([]FieldError, error) {
	var errs []FieldError
	for _, f := range ent.Fields {
		if !f.IsRelation() {
			continue
		}
		v, ok := data[f.Name]
		if !ok || v == nil {
			continue
		}
		target := dsl.Qualify(ent.Module, f.RefTarget)
		ids := refIDs(v)
		if f.IsRef() {
			s, _ := v.(string)
			ids = []string{s}
		}
		for _, id := range ids {
			_, err := st.Get(ctx, target, id)
			if errors.Is(err, ErrNotFound) {
				errs = append(errs, ferr(CodeRefNotFound, f.Name, "Referenced '"+target+"' not found"))
				break
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return errs, nil
}

// checkUnique: одиночные unique-поля и constraints.unique, сравнение по строковому виду
func checkUnique(ctx context.Context, st Store, ent *dsl.Entity, data map[string]any) ([]FieldError, error) {
	sets := make([][]string, 0, len(ent.Constraints.Unique))
	for _, f := range ent.Fields {
		if strings.EqualFold(f.Options["unique"], "true") {
			sets = append(sets, []string{f.Name})
		}
	}
	sets = append(sets, ent.Constraints.Unique...)
	if len(sets) == 0 {
		return nil, nil
	}

	rows, _, err := st.List(ctx, ent.FQN(), ListParams{Limit: math.MaxInt})
	if err != nil {
		return nil, err
	}

	var errs []FieldError
	for _, set := range sets {
		key, ok := uniqueKey(data, set)
		if !ok {
			continue
		}
		for _, row := range rows {
			if other, ok := uniqueKey(row.Data, set); ok && other == key {
				msg := "Field '" + set[0] + "' must be unique"
				if len(set) > 1 {
					msg = fmt.Sprintf("Fields %v must be unique together", set)
				}
				errs = append(errs, ferr(CodeUniqueViolation, set[0], msg))
				break
			}
		}
	}
	return errs, nil
}

func uniqueKey(data map[string]any, fields []string) (string, bool) {
	parts := make([]string, len(fields))
	for i, name := range fields {
		v, ok := data[name]
		if !ok || v == nil {
			return "", false
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x00"), true
}

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`) // YYYY-MM-DD

func coerceValue(f dsl.Field, v any) (any, error) {
	switch f.Type {
	case "string", "ref":
		return toStringStrict(v)
	case "int":
		return toIntStrict(v)
	case "float":
		return toFloatStrict(v)
	case "bool":
		return toBoolStrict(v)
	case "date":
		s, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		if !dateRe.MatchString(s) {
			return nil, errors.New("must match YYYY-MM-DD")
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return nil, errors.New("invalid date")
		}
		return s, nil
	case "datetime":
		s, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return nil, errors.New("must be RFC3339 datetime")
		}
		return s, nil
	case "enum":
		s, err := toStringStrict(v)
		if err != nil {
			return nil, err
		}
		for _, ev := range f.Enum {
			if s == ev {
				return s, nil
			}
		}
		return nil, fmt.Errorf("value '%s' is not allowed", s)
	case "array":
		arr, ok := v.([]any)
		if !ok {
			if ss, isStrs := v.([]string); isStrs {
				arr = make([]any, 0, len(ss))
				for _, s := range ss {
					arr = append(arr, s)
				}
			} else {
				return nil, errors.New("must be array")
			}
		}
		elem := dsl.Field{Type: f.ElemType, Enum: f.Enum, RefTarget: f.RefTarget}
		out := make([]any, 0, len(arr))
		for i, ev := range arr {
			norm, err := coerceValue(elem, ev)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %v", i, err)
			}
			out = append(out, norm)
		}
		return out, nil
	default:
		// json и неизвестные типы - как есть
		return v, nil
	}
}

func toStringStrict(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return "", errors.New("must be string")
}

func toIntStrict(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		// JSON числа приходят как float64
		if t != float64(int64(t)) {
			return 0, errors.New("must be integer")
		}
		return int64(t), nil
	case int:
		return int64(t), nil
	case int64:
		return t, nil
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0, errors.New("must be integer")
		}
		return n, nil
	}
	return 0, errors.New("must be integer")
}

func toFloatStrict(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, errors.New("must be float")
		}
		return f, nil
	}
	return 0, errors.New("must be float")
}

func toBoolStrict(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off":
			return false, nil
		}
	}
	return false, errors.New("must be boolean")
}

// default= для отсутствующих полей; некорректный дефолт не подставляется
func applyDefaults(ent *dsl.Entity, data map[string]any) {
	for _, f := range ent.Fields {
		def, ok := f.Options["default"]
		if !ok {
			continue
		}
		if _, exists := data[f.Name]; exists {
			continue
		}
		if v, err := coerceValue(f, def); err == nil {
			data[f.Name] = v
		}
	}
}

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}
