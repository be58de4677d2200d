package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// where accumulates SQL conditions and their arguments.
type where struct {
	conditions []string
	args       []any
}

func (w *where) add(cond string, args ...any) {
	w.conditions = append(w.conditions, cond)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// checkFilterKeys rejects keys a table does not understand. limit and offset
// are accepted everywhere.
func checkFilterKeys(filter types.Filter, allowed ...string) error {
	for key := range filter {
		if key == "limit" || key == "offset" {
			continue
		}
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: unknown key %q", types.ErrInvalidFilter, key)
		}
	}
	return nil
}

// stringFilter returns filter[key] as a string. ok is false when the key is
// absent.
func stringFilter(filter types.Filter, key string) (string, bool, error) {
	v, present := filter[key]
	if !present {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("%w: %s must be a string", types.ErrInvalidFilter, key)
	}
	return s, true, nil
}

// boolFilter returns filter[key] as a bool. ok is false when the key is
// absent.
func boolFilter(filter types.Filter, key string) (bool, bool, error) {
	v, present := filter[key]
	if !present {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, false, fmt.Errorf("%w: %s must be a bool", types.ErrInvalidFilter, key)
	}
	return b, true, nil
}

// pageClause builds the LIMIT/OFFSET suffix from the limit and offset keys.
func pageClause(filter types.Filter) (string, error) {
	var clause string
	limit, hasLimit := filter["limit"]
	offset, hasOffset := filter["offset"]
	if hasLimit {
		n, ok := toInt(limit)
		if !ok || n < 0 {
			return "", fmt.Errorf("%w: limit must be a non-negative int", types.ErrInvalidFilter)
		}
		clause = fmt.Sprintf(" LIMIT %d", n)
	}
	if hasOffset {
		n, ok := toInt(offset)
		if !ok || n < 0 {
			return "", fmt.Errorf("%w: offset must be a non-negative int", types.ErrInvalidFilter)
		}
		if !hasLimit {
			clause = " LIMIT -1"
		}
		clause += fmt.Sprintf(" OFFSET %d", n)
	}
	return clause, nil
}

// toInt converts the numeric types a filter may carry to int.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
