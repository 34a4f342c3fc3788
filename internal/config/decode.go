package config

import (
	"fmt"
	"time"

	"github.com/dshills/multisel/internal/config/loader"
)

// decoder copies values out of a loaded map into typed fields.
// The first type error is kept; later calls are no-ops.
type decoder struct {
	data map[string]any
	err  error
}

func (d *decoder) lookup(path string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	return loader.GetByPath(d.data, path)
}

func (d *decoder) fail(path, expected string, v any) {
	d.err = &TypeError{Path: path, Expected: expected, Actual: typeName(v)}
}

func (d *decoder) string(path string, dst *string) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	s, ok := v.(string)
	if !ok {
		d.fail(path, "string", v)
		return
	}
	*dst = s
}

func (d *decoder) int(path string, dst *int) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case int:
		*dst = val
	case int64:
		*dst = int(val)
	case float64:
		*dst = int(val)
	default:
		d.fail(path, "int", v)
	}
}

func (d *decoder) bool(path string, dst *bool) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case bool:
		*dst = val
	case int64:
		*dst = val != 0
	case int:
		*dst = val != 0
	default:
		d.fail(path, "bool", v)
	}
}

// duration accepts a time.Duration, a duration string such as "250ms", or
// a number of milliseconds.
func (d *decoder) duration(path string, dst *time.Duration) {
	v, ok := d.lookup(path)
	if !ok {
		return
	}
	switch val := v.(type) {
	case time.Duration:
		*dst = val
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			d.fail(path, "duration", v)
			return
		}
		*dst = parsed
	case int:
		*dst = time.Duration(val) * time.Millisecond
	case int64:
		*dst = time.Duration(val) * time.Millisecond
	default:
		d.fail(path, "duration", v)
	}
}

// typeName returns a human-readable type name.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
