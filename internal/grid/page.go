package grid

import "slices"

// DefaultPageSize applies when the requested size is not offered.
const DefaultPageSize = 25

// PageSizes are the offered page sizes.
var PageSizes = []int{25, 50, 100}

// windowSize bounds the number of numbered page links.
const windowSize = 5

// NormalizePageSize maps size onto PageSizes.
func NormalizePageSize(size int) int {
	if slices.Contains(PageSizes, size) {
		return size
	}
	return DefaultPageSize
}

// Page is one slice of a result set.
type Page struct {
	Number     int
	Size       int
	Total      int
	TotalPages int
}

// Paginate clamps number into [1, max(1, totalPages)] for total rows split
// into pages of size.
func Paginate(total, number, size int) Page {
	size = NormalizePageSize(size)
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	number = max(1, min(number, max(1, pages)))
	return Page{Number: number, Size: size, Total: total, TotalPages: pages}
}

// Bounds returns the half-open index range of the page.
func (p Page) Bounds() (start, end int) {
	start = min((p.Number-1)*p.Size, p.Total)
	end = min(start+p.Size, p.Total)
	return start, end
}

// First is the 1-based position of the first row shown, 0 when empty.
func (p Page) First() int {
	start, end := p.Bounds()
	if start == end {
		return 0
	}
	return start + 1
}

// Last is the 1-based position of the last row shown.
func (p Page) Last() int {
	_, end := p.Bounds()
	return end
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Window returns up to five page numbers centred on the current page.
func (p Page) Window() []int {
	n := min(windowSize, p.TotalPages)
	var first int
	switch {
	case p.TotalPages <= windowSize, p.Number <= 3:
		first = 1
	case p.Number >= p.TotalPages-2:
		first = p.TotalPages - windowSize + 1
	default:
		first = p.Number - 2
	}
	out := make([]int, n)
	for i := range out {
		out[i] = first + i
	}
	return out
}

// Slice returns the rows of page p.
func Slice[T any](rows []T, p Page) []T {
	start, end := p.Bounds()
	if start >= len(rows) {
		return nil
	}
	return rows[start:min(end, len(rows))]
}
