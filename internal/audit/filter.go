package audit

import (
	"sort"
	"strings"
)

// ActionAll disables action filtering.
const ActionAll = "all"

// Filter narrows the log for display.
type Filter struct {
	Action string
	Search string
}

// Apply returns the entries matching f, preserving order. Search is a
// case-insensitive substring match over actor email, details and entity id.
func Apply(entries []Entry, f Filter) []Entry {
	action := strings.TrimSpace(f.Action)
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if action != "" && action != ActionAll && e.Action != action {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.ActorEmail), search) &&
			!strings.Contains(strings.ToLower(e.Details), search) &&
			!strings.Contains(strings.ToLower(e.EntityID), search) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Chip is one action filter option with its match count.
type Chip struct {
	Value  string
	Label  string
	Count  int
	Active bool
}

var chipActions = []struct{ value, label string }{
	{ActionAll, "Todos"},
	{ActionLoginSuccess, "Inicios"},
	{ActionSettingsUpdated, "Config"},
	{ActionRoleChanged, "Roles"},
}

// Chips counts entries per filterable action.
func Chips(entries []Entry, active string) []Chip {
	if active == "" {
		active = ActionAll
	}
	counts := CountByAction(entries)
	chips := make([]Chip, 0, len(chipActions))
	for _, c := range chipActions {
		count := counts[c.value]
		if c.value == ActionAll {
			count = len(entries)
		}
		chips = append(chips, Chip{Value: c.value, Label: c.label, Count: count, Active: c.value == active})
	}
	return chips
}

// CountByAction tallies entries per action tag.
func CountByAction(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Action]++
	}
	return counts
}

// Actions lists the distinct actions present, sorted.
func Actions(entries []Entry) []string {
	counts := CountByAction(entries)
	out := make([]string, 0, len(counts))
	for action := range counts {
		out = append(out, action)
	}
	sort.Strings(out)
	return out
}
