// Package grid renders sortable, paginated tables over arbitrary rows. All
// interaction state travels in the query string so every control is a plain
// GET link or form.
package grid

import (
	"fmt"
	"reflect"
	"time"

	. "maragu.dev/gomponents"
)

// Row is one record shown by a Table.
type Row interface {
	// RowKey identifies the row for expansion links.
	RowKey() string
	// Field returns the raw value for a column key. Missing keys report false.
	Field(key string) (any, bool)
}

// MapRow adapts a map to Row.
type MapRow struct {
	Key    string
	Values map[string]any
}

// RowKey implements Row.
func (m MapRow) RowKey() string { return m.Key }

// Field implements Row.
func (m MapRow) Field(key string) (any, bool) {
	v, ok := m.Values[key]
	return v, ok
}

// Column describes one table column.
type Column struct {
	Key      string
	Header   string
	Sortable bool
	// Render overrides the default text cell.
	Render func(Row) Node
	Width  string
	// Hidden columns start out of the visible set.
	Hidden bool
}

// Missing is printed for absent or nil values.
const Missing = "-"

// Format renders a raw value as cell text.
func Format(v any) string {
	if isNil(v) {
		return Missing
	}
	v = indirect(v)
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return Missing
		}
		return x.Format("2006-01-02 15:04")
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func lookup(row Row, key string) (any, bool) {
	v, ok := row.Field(key)
	if !ok || isNil(v) {
		return nil, false
	}
	return indirect(v), true
}

// indirect follows non-nil pointers so nullable fields format and sort by the
// value they point to.
func indirect(v any) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() || !rv.CanInterface() {
		return v
	}
	return rv.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
