package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/artstock/console/internal/shared"
	"github.com/artstock/console/internal/storage"
)

// ErrActionRequired is returned when an entry carries no action tag.
var ErrActionRequired = errors.New("audit: action required")

// Sink appends entries to the persisted log held in browser storage.
// Appends read, prepend and write back the whole list; two writers sharing
// the same storage race and the last write wins.
type Sink struct {
	kv  storage.KV
	mu  sync.Mutex
	now func() time.Time
}

// NewSink constructs a Sink over kv.
func NewSink(kv storage.KV) *Sink {
	return &Sink{kv: kv, now: time.Now}
}

// WithClock overrides the time source.
func (s *Sink) WithClock(now func() time.Time) *Sink {
	if now != nil {
		s.now = now
	}
	return s
}

// Append prepends entry and truncates the log to MaxEntries. A missing ID or
// timestamp is filled in.
func (s *Sink) Append(ctx context.Context, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(entry.Action) == "" {
		return ErrActionRequired
	}
	now := s.now().UTC()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	if entry.ID == "" {
		entry.ID = shared.NewID("AUD", now)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load()
	next := make([]Entry, 0, min(len(entries)+1, MaxEntries))
	next = append(next, entry)
	for _, e := range entries {
		if len(next) == MaxEntries {
			break
		}
		next = append(next, e)
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("audit: encode log: %w", err)
	}
	s.kv.Set(storage.KeyAuditLog, string(data))
	return nil
}

// Record builds an entry for actor and appends it. Without an actor nothing
// is recorded and the zero Entry is returned.
func (s *Sink) Record(ctx context.Context, actor Actor, action, entityType, entityID, details string, before, after map[string]any) (Entry, error) {
	if actor.IsZero() {
		return Entry{}, nil
	}
	now := s.now().UTC()
	entry := Entry{
		ID:         shared.NewID("AUD", now),
		Timestamp:  now,
		ActorEmail: actor.Email,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		Before:     before,
		After:      after,
	}
	if err := s.Append(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Query returns the full log, newest first.
func (s *Sink) Query(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// load decodes the persisted list; an unreadable list counts as empty and is
// overwritten by the next append.
func (s *Sink) load() []Entry {
	raw := s.kv.Get(storage.KeyAuditLog)
	if raw == "" {
		return nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil
	}
	return entries
}
