package grid

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Query parameters owned by the grid.
const (
	ParamSort = "sort"
	ParamDir  = "dir"
	ParamPage = "page"
	ParamSize = "size"
	ParamCols = "cols"
	ParamOpen = "open"
)

var params = []string{ParamSort, ParamDir, ParamPage, ParamSize, ParamCols, ParamOpen}

// State is the interaction state of one grid.
type State struct {
	Sort Sort
	Page int
	Size int
	// Columns lists the visible column keys. Nil means the column defaults.
	Columns []string
	// Expanded lists the keys of expanded rows.
	Expanded []string
}

// ParseState reads grid state from a query string. Invalid values fall back
// to their defaults.
func ParseState(q url.Values) State {
	st := State{Page: 1, Size: DefaultPageSize}
	if key := strings.TrimSpace(q.Get(ParamSort)); key != "" {
		switch Direction(q.Get(ParamDir)) {
		case Asc:
			st.Sort = Sort{Key: key, Dir: Asc}
		case Desc:
			st.Sort = Sort{Key: key, Dir: Desc}
		}
	}
	if n, err := strconv.Atoi(q.Get(ParamPage)); err == nil && n > 0 {
		st.Page = n
	}
	if n, err := strconv.Atoi(q.Get(ParamSize)); err == nil {
		st.Size = NormalizePageSize(n)
	}
	// The column form always submits an empty cols field, so an empty
	// selection is distinguishable from no selection.
	if q.Has(ParamCols) {
		st.Columns = splitList(q[ParamCols])
	}
	st.Expanded = splitList(q[ParamOpen])
	if len(st.Expanded) == 0 {
		st.Expanded = nil
	}
	return st
}

// Values encodes the state, omitting defaults.
func (s State) Values() url.Values {
	q := url.Values{}
	if s.Sort.Active() {
		q.Set(ParamSort, s.Sort.Key)
		q.Set(ParamDir, string(s.Sort.Dir))
	}
	if s.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.Page))
	}
	if size := NormalizePageSize(s.Size); size != DefaultPageSize {
		q.Set(ParamSize, strconv.Itoa(size))
	}
	if s.Columns != nil {
		q.Set(ParamCols, strings.Join(s.Columns, ","))
	}
	if len(s.Expanded) > 0 {
		q.Set(ParamOpen, strings.Join(s.Expanded, ","))
	}
	return q
}

// WithSort returns the state after clicking the header of key.
func (s State) WithSort(key string) State {
	s.Sort = s.Sort.Next(key)
	return s
}

// WithPage returns the state showing page n.
func (s State) WithPage(n int) State {
	s.Page = n
	return s
}

// IsExpanded reports whether the row with key is expanded.
func (s State) IsExpanded(key string) bool {
	return slices.Contains(s.Expanded, key)
}

// ToggleExpanded returns the state with key's expansion flipped.
func (s State) ToggleExpanded(key string) State {
	if i := slices.Index(s.Expanded, key); i >= 0 {
		s.Expanded = slices.Delete(slices.Clone(s.Expanded), i, i+1)
		return s
	}
	s.Expanded = append(slices.Clone(s.Expanded), key)
	return s
}

// Visible returns the visible subset of columns in declaration order.
func (s State) Visible(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, col := range columns {
		if s.Columns == nil {
			if !col.Hidden {
				out = append(out, col)
			}
			continue
		}
		if slices.Contains(s.Columns, col.Key) {
			out = append(out, col)
		}
	}
	return out
}

// Href builds a link to path carrying base (page filters) and the grid state.
func Href(path string, base url.Values, st State) string {
	q := query(base, st)
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func query(base url.Values, st State) url.Values {
	q := url.Values{}
	for k, v := range base {
		if slices.Contains(params, k) {
			continue
		}
		q[k] = slices.Clone(v)
	}
	for k, v := range st.Values() {
		q[k] = v
	}
	return q
}

func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" && !slices.Contains(out, part) {
				out = append(out, part)
			}
		}
	}
	return out
}
