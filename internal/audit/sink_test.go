package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artstock/console/internal/storage"
)

var admin = Actor{Email: "admin@artstock.demo", Role: "admin"}

func fixedClock() func() time.Time {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		at = at.Add(time.Second)
		return at
	}
}

func TestAppendPrependsNewest(t *testing.T) {
	ctx := context.Background()
	sink := NewSink(storage.NewMemoryKV()).WithClock(fixedClock())

	_, err := sink.Record(ctx, admin, ActionLoginSuccess, "session", "USR-1", "login", nil, nil)
	require.NoError(t, err)
	_, err = sink.Record(ctx, admin, ActionLogout, "session", "USR-1", "logout", nil, nil)
	require.NoError(t, err)

	entries, err := sink.Query(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionLogout, entries[0].Action)
	assert.Equal(t, ActionLoginSuccess, entries[1].Action)
	assert.True(t, entries[0].Timestamp.After(entries[1].Timestamp))
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Regexp(t, `^AUD-[0-9A-Z]+$`, entries[0].ID)
}

func TestAppendCapsLog(t *testing.T) {
	ctx := context.Background()
	sink := NewSink(storage.NewMemoryKV()).WithClock(fixedClock())

	for i := 0; i < MaxEntries+1; i++ {
		_, err := sink.Record(ctx, admin, ActionSettingsUpdated, "settings", fmt.Sprintf("n%d", i), "", nil, nil)
		require.NoError(t, err)
	}

	entries, err := sink.Query(ctx)
	require.NoError(t, err)
	require.Len(t, entries, MaxEntries)
	assert.Equal(t, fmt.Sprintf("n%d", MaxEntries), entries[0].EntityID)
	assert.Equal(t, "n1", entries[MaxEntries-1].EntityID)
}

func TestRecordWithoutActorIsNoop(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	sink := NewSink(kv)

	entry, err := sink.Record(ctx, Actor{}, ActionLogout, "session", "", "", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, entry.ID)
	assert.False(t, kv.Has(storage.KeyAuditLog))
}

func TestAppendRequiresAction(t *testing.T) {
	sink := NewSink(storage.NewMemoryKV())
	err := sink.Append(context.Background(), Entry{ActorEmail: "a@b.c"})
	assert.ErrorIs(t, err, ErrActionRequired)
}

func TestCorruptLogIsReplaced(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	kv.Set(storage.KeyAuditLog, "[{broken")
	sink := NewSink(kv)

	entries, err := sink.Query(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = sink.Record(ctx, admin, ActionLogout, "session", "USR-1", "", nil, nil)
	require.NoError(t, err)
	entries, err = sink.Query(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestBeforeAfterSnapshotsPersist(t *testing.T) {
	ctx := context.Background()
	sink := NewSink(storage.NewMemoryKV())

	_, err := sink.Record(ctx, admin, ActionProfileUpdated, "user", "USR-1", "",
		map[string]any{"name": "Y"}, map[string]any{"name": "X"})
	require.NoError(t, err)

	entries, err := sink.Query(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Y", entries[0].Before["name"])
	assert.Equal(t, "X", entries[0].After["name"])
}

func TestQueryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSink(storage.NewMemoryKV()).Query(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteCSV(t *testing.T) {
	entries := []Entry{{
		ID:         "AUD-1",
		Timestamp:  time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		ActorEmail: "admin@artstock.demo",
		ActorRole:  "admin",
		Action:     ActionRoleChanged,
		EntityType: "user",
		EntityID:   "USR-002",
		Details:    "Rol cambiado a user",
		Before:     map[string]any{"role": "admin"},
	}}
	data, err := WriteCSV(entries)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, "2024-05-01T09:00:00Z", records[1][1])
	assert.Equal(t, `{"role":"admin"}`, records[1][8])
	assert.Equal(t, "", records[1][9])
}
