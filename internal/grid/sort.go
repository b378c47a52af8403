package grid

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
)

// Direction is a sort direction. The zero value means unsorted.
type Direction string

// Directions.
const (
	None Direction = ""
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort is the single active sort key.
type Sort struct {
	Key string
	Dir Direction
}

// Active reports whether rows are reordered.
func (s Sort) Active() bool {
	return s.Key != "" && (s.Dir == Asc || s.Dir == Desc)
}

// Next is the sort after clicking the header of key: the same column cycles
// asc, desc, none; any other column starts at asc.
func (s Sort) Next(key string) Sort {
	if s.Key == key {
		switch s.Dir {
		case Asc:
			return Sort{Key: key, Dir: Desc}
		case Desc:
			return Sort{}
		}
	}
	return Sort{Key: key, Dir: Asc}
}

// DirectionOf returns the direction applied to key.
func (s Sort) DirectionOf(key string) Direction {
	if !s.Active() || s.Key != key {
		return None
	}
	return s.Dir
}

// SortRows returns a sorted copy of rows. Equal keys keep their input order
// and absent values sort last in both directions.
func SortRows(rows []Row, s Sort) []Row {
	out := slices.Clone(rows)
	if !s.Active() {
		return out
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		av, aok := lookup(a, s.Key)
		bv, bok := lookup(b, s.Key)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		c := Compare(av, bv)
		if s.Dir == Desc {
			return -c
		}
		return c
	})
	return out
}

// Compare orders two non-nil raw values. Numbers compare numerically across
// kinds; values of unrelated kinds compare by their formatted text.
func Compare(a, b any) int {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			return cmp.Compare(fa, fb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
