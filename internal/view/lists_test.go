package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChipsCountsAndActive(t *testing.T) {
	options := []ChipOption{{Value: FilterAll, Label: "Todas"}, {Value: "active", Label: "Activas"}, {Value: "overdue", Label: "Vencidas"}}
	chips := Chips(options, map[string]int{"active": 4, "overdue": 1}, 7, "")

	require.Len(t, chips, 3)
	assert.Equal(t, 7, chips[0].Count)
	assert.True(t, chips[0].Active)
	assert.Equal(t, 4, chips[1].Count)
	assert.Equal(t, 0, Chips(options, nil, 0, "overdue")[2].Count)
	assert.True(t, Chips(options, nil, 0, "overdue")[2].Active)
}

func TestFilterQueryDropsEmptyAndAll(t *testing.T) {
	q := FilterQuery("status", "all", "q", " netflix ", "type", "")
	assert.Equal(t, "q=netflix", q.Encode())
}
