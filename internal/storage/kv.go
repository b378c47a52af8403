// Package storage defines the per-browser key/value contract the console
// persists session, audit and preference state into.
package storage

import "sync"

// Persisted keys.
const (
	KeySession  = "artstock_session"
	KeyAuditLog = "artstock_audit_log"
	KeyTheme    = "artstock_theme"
	KeyLanguage = "artstock_language"
	KeySettings = "artstock_settings"
	KeyTeam     = "artstock_team"
	KeyAlerts   = "artstock_alerts"
)

// KV is a string key/value bag scoped to one browser profile.
// Get returns "" for missing keys.
type KV interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// MemoryKV is an in-process KV used by tests and tools.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get retrieves a value.
func (m *MemoryKV) Get(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Set stores a value.
func (m *MemoryKV) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
}

// Delete removes a value.
func (m *MemoryKV) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

// Has reports whether key is present, including empty values.
func (m *MemoryKV) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}
