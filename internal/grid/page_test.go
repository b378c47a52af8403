package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, 50, NormalizePageSize(50))
	assert.Equal(t, 25, NormalizePageSize(10))
	assert.Equal(t, 25, NormalizePageSize(0))
}

func TestPaginateClamps(t *testing.T) {
	p := Paginate(60, 9, 25)
	assert.Equal(t, 3, p.Number)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 51, p.First())
	assert.Equal(t, 60, p.Last())

	p = Paginate(0, 4, 25)
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.First())
	assert.Equal(t, 0, p.Last())
	assert.False(t, p.HasNext())
	assert.Empty(t, p.Window())

	p = Paginate(10, -2, 25)
	assert.Equal(t, 1, p.Number)
}

func TestPaginateAfterFilterShrinks(t *testing.T) {
	before := Paginate(120, 5, 25)
	assert.Equal(t, 5, before.Number)

	after := Paginate(30, before.Number, before.Size)
	assert.Equal(t, 2, after.Number)
	start, end := after.Bounds()
	assert.Equal(t, 25, start)
	assert.Equal(t, 30, end)
}

func TestWindow(t *testing.T) {
	cases := []struct {
		total, current int
		want           []int
	}{
		{75, 2, []int{1, 2, 3}},
		{250, 1, []int{1, 2, 3, 4, 5}},
		{250, 3, []int{1, 2, 3, 4, 5}},
		{250, 6, []int{4, 5, 6, 7, 8}},
		{250, 9, []int{6, 7, 8, 9, 10}},
		{250, 10, []int{6, 7, 8, 9, 10}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Paginate(tc.total, tc.current, 25).Window(), "total=%d current=%d", tc.total, tc.current)
	}
}

func TestSlice(t *testing.T) {
	rows := make([]int, 30)
	for i := range rows {
		rows[i] = i
	}
	assert.Len(t, Slice(rows, Paginate(30, 1, 25)), 25)
	assert.Equal(t, []int{25, 26, 27, 28, 29}, Slice(rows, Paginate(30, 2, 25)))
}
