package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func keys(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.RowKey()
	}
	return out
}

func amounts() []Row {
	return []Row{
		MapRow{Key: "a", Values: map[string]any{"amount": 30}},
		MapRow{Key: "b", Values: map[string]any{"amount": nil}},
		MapRow{Key: "c", Values: map[string]any{"amount": 10}},
		MapRow{Key: "d", Values: map[string]any{}},
		MapRow{Key: "e", Values: map[string]any{"amount": 20.5}},
		MapRow{Key: "f", Values: map[string]any{"amount": 10}},
	}
}

func TestSortNextCycles(t *testing.T) {
	var s Sort
	s = s.Next("amount")
	assert.Equal(t, Sort{Key: "amount", Dir: Asc}, s)
	s = s.Next("amount")
	assert.Equal(t, Sort{Key: "amount", Dir: Desc}, s)
	s = s.Next("amount")
	assert.False(t, s.Active())

	s = Sort{Key: "amount", Dir: Desc}.Next("name")
	assert.Equal(t, Sort{Key: "name", Dir: Asc}, s)
}

func TestSortRowsNilLastBothDirections(t *testing.T) {
	asc := SortRows(amounts(), Sort{Key: "amount", Dir: Asc})
	assert.Equal(t, []string{"c", "f", "e", "a", "b", "d"}, keys(asc))

	desc := SortRows(amounts(), Sort{Key: "amount", Dir: Desc})
	assert.Equal(t, []string{"a", "e", "c", "f", "b", "d"}, keys(desc))
}

func TestSortRowsNoneKeepsInputOrder(t *testing.T) {
	rows := amounts()
	got := SortRows(rows, Sort{})
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, keys(got))

	SortRows(rows, Sort{Key: "amount", Dir: Asc})
	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, keys(rows), "input is not reordered")
}

func TestCompare(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		a, b any
		want int
	}{
		{"strings", "alpha", "beta", -1},
		{"mixed numbers", int64(3), 2.5, 1},
		{"equal numbers", uint8(4), 4, 0},
		{"times", early, early.Add(time.Hour), -1},
		{"bools", true, false, 1},
		{"mixed kinds", "10", 9, -1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Compare(tc.a, tc.b))
		})
	}
}

func TestFormat(t *testing.T) {
	var nilPtr *int
	assert.Equal(t, Missing, Format(nil))
	assert.Equal(t, Missing, Format(nilPtr))
	assert.Equal(t, "42", Format(42))
	assert.Equal(t, "2024-03-05 14:30", Format(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)))
}

func TestSortRowsDereferencesPointers(t *testing.T) {
	ptr := func(n int) *int { return &n }
	var none *int
	rows := []Row{
		MapRow{Key: "a", Values: map[string]any{"paid": ptr(30)}},
		MapRow{Key: "b", Values: map[string]any{"paid": ptr(10)}},
		MapRow{Key: "c", Values: map[string]any{"paid": none}},
		MapRow{Key: "d", Values: map[string]any{"paid": ptr(20)}},
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, keys(SortRows(rows, Sort{Key: "paid", Dir: Asc})))
	assert.Equal(t, []string{"a", "d", "b", "c"}, keys(SortRows(rows, Sort{Key: "paid", Dir: Desc})))
}

func TestFormatDereferencesPointers(t *testing.T) {
	n := 10
	s := "Pendiente"
	at := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "10", Format(&n))
	assert.Equal(t, "Pendiente", Format(&s))
	assert.Equal(t, "2024-03-05 14:30", Format(&at))
}
