package view

import (
	"net/url"
	"strings"

	"github.com/artstock/console/internal/grid"
)

// FilterAll is the chip value that disables a filter.
const FilterAll = "all"

// ChipOption describes one quick filter.
type ChipOption struct {
	Value string
	Label string
	Tone  string
}

// Chips builds grid chips from counts. The FilterAll chip shows total.
func Chips(options []ChipOption, counts map[string]int, total int, active string) []grid.Chip {
	if active == "" {
		active = FilterAll
	}
	out := make([]grid.Chip, 0, len(options))
	for _, o := range options {
		count := counts[o.Value]
		if o.Value == FilterAll {
			count = total
		}
		out = append(out, grid.Chip{Value: o.Value, Label: o.Label, Count: count, Active: o.Value == active, Tone: o.Tone})
	}
	return out
}

// FilterQuery keeps the non-empty page filters, given as name/value pairs.
// FilterAll values are dropped.
func FilterQuery(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v := strings.TrimSpace(pairs[i+1])
		if v == "" || v == FilterAll {
			continue
		}
		q.Set(pairs[i], v)
	}
	return q
}

// Rows adapts a slice of row types to grid rows.
func Rows[T grid.Row](items []T) []grid.Row {
	out := make([]grid.Row, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
