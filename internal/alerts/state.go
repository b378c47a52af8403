// Package alerts serves the task list derived from the catalog and keeps
// which alerts the operator has read or dismissed.
package alerts

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/artstock/console/internal/storage"
)

// State is the per-browser alert bookkeeping.
type State struct {
	Read      []string `json:"read"`
	Dismissed []string `json:"dismissed"`
}

// Load reads the state from kv. Missing or unreadable records yield an empty
// state.
func Load(kv storage.KV) State {
	var s State
	raw := kv.Get(storage.KeyAlerts)
	if raw == "" {
		return s
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return State{}
	}
	return s
}

// Save writes s to kv.
func Save(kv storage.KV, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("alerts: encode: %w", err)
	}
	kv.Set(storage.KeyAlerts, string(data))
	return nil
}

// IsRead reports whether id was marked read.
func (s State) IsRead(id string) bool { return slices.Contains(s.Read, id) }

// IsDismissed reports whether id was dismissed.
func (s State) IsDismissed(id string) bool { return slices.Contains(s.Dismissed, id) }

// MarkRead adds ids to the read set and returns how many were new.
func (s *State) MarkRead(ids ...string) int {
	return addAll(&s.Read, ids)
}

// Dismiss hides ids and marks them read. It returns how many were new.
func (s *State) Dismiss(ids ...string) int {
	s.MarkRead(ids...)
	return addAll(&s.Dismissed, ids)
}

// Prune drops ids no longer present in current so the record does not grow
// with alerts that resolved themselves.
func (s *State) Prune(current []string) {
	keep := func(list []string) []string {
		return slices.DeleteFunc(list, func(id string) bool { return !slices.Contains(current, id) })
	}
	s.Read = keep(s.Read)
	s.Dismissed = keep(s.Dismissed)
}

func addAll(set *[]string, ids []string) int {
	added := 0
	for _, id := range ids {
		if id == "" || slices.Contains(*set, id) {
			continue
		}
		*set = append(*set, id)
		added++
	}
	return added
}
