package filestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/lifecycle"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/partflow/partflow/internal/repository"
	"github.com/stretchr/testify/require"
)

func ts(day, hour int) int64 {
	return time.Date(2025, 2, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func completed(partID string, timestamp int64) event.Event {
	return event.Event{Type: event.TypePartCompleted, PartID: partID, Timestamp: timestamp}
}

func TestAppendLoad_RoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	snooze := event.Event{
		Type: event.TypePartSnoozed, PartID: "p2",
		Timestamp: ts(10, 10), CommandID: "cmd-1", NotificationDate: "2025-02-25",
	}
	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{completed("p1", ts(10, 9)), snooze}))

	events, err := store.LoadByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, int64(1), events[0].Version)
	require.Equal(t, int64(2), events[1].Version)
	require.Equal(t, "2025-02-25", events[1].NotificationDate)
	require.Equal(t, "cmd-1", events[1].CommandID)
}

func TestAppend_CreatesDirLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "store")
	store := New(root)

	require.NoError(t, store.Append(context.Background(), "proj1", 0, []event.Event{completed("p1", ts(10, 9))}))
	_, err := os.Stat(filepath.Join(root, "proj1", "events.ndjson"))
	require.NoError(t, err)
}

func TestAppend_StaleVersion(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{completed("p1", ts(10, 9))}))
	err := store.Append(ctx, "proj1", 0, []event.Event{completed("p2", ts(10, 10))})
	require.ErrorIs(t, err, repository.ErrConcurrency)

	events, err := store.LoadByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestAppend_BadProjectID(t *testing.T) {
	store := New(t.TempDir())
	for _, id := range []string{"", "a/b", `a\b`, "..", "."} {
		err := store.Append(context.Background(), id, 0, nil)
		require.ErrorIs(t, err, repository.ErrInvalidProjectID, "id %q", id)
	}
}

func TestLoad_UnknownProject(t *testing.T) {
	store := New(t.TempDir())
	events, err := store.LoadByProject(context.Background(), "nope")
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestLoad_MalformedLine(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{completed("p1", ts(10, 9))}))

	path := filepath.Join(root, "proj1", "events.ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = store.LoadByProject(ctx, "proj1")
	require.ErrorIs(t, err, repository.ErrMalformedRecord)
}

func TestCompact(t *testing.T) {
	root := t.TempDir()
	store := New(root)
	ctx := context.Background()

	first := completed("p1", ts(10, 9))
	first.CommandID = "cmd-1"
	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{first, completed("p2", ts(11, 9))}))

	snap := projection.Snapshot{
		ProjectID:          "proj1",
		LastEventTimestamp: ts(10, 9),
		LifecycleStateByPart: map[string]lifecycle.State{
			"p1": lifecycle.StateCompleted,
		},
	}
	require.NoError(t, store.Compact(ctx, "proj1", snap))

	// The log file itself only retains the tail.
	data, err := os.ReadFile(filepath.Join(root, "proj1", "events.ndjson"))
	require.NoError(t, err)
	require.Equal(t, 1, len(splitLines(data)))

	events, err := store.LoadByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "p2", events[0].PartID)

	// Version continues past the compacted prefix.
	version, err := store.CurrentVersion(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, int64(2), version)

	require.NoError(t, store.Append(ctx, "proj1", 2, []event.Event{completed("p3", ts(12, 9))}))
	events, err = store.LoadByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, int64(3), events[1].Version)

	// Dedup data survives compaction.
	seen, err := store.HasCommand(ctx, "proj1", "cmd-1")
	require.NoError(t, err)
	require.True(t, seen)

	loaded, err := store.LoadSnapshot(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, lifecycle.StateCompleted, loaded.StateOf("p1"))
	require.Equal(t, ts(10, 9), loaded.LastEventTimestamp)
}

func TestCompact_ProjectMismatch(t *testing.T) {
	store := New(t.TempDir())
	err := store.Compact(context.Background(), "proj1", projection.Snapshot{ProjectID: "other"})
	require.ErrorIs(t, err, repository.ErrSnapshotMismatch)
}

func TestCompact_ThenEmptyTail(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{completed("p1", ts(10, 9))}))
	require.NoError(t, store.Compact(ctx, "proj1", projection.Snapshot{
		ProjectID:          "proj1",
		LastEventTimestamp: ts(10, 9),
	}))

	events, err := store.LoadByProject(ctx, "proj1")
	require.NoError(t, err)
	require.Empty(t, events)

	// The version survives in the snapshot record alone.
	version, err := store.CurrentVersion(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
}

func TestReopenStore_SeesPriorWrites(t *testing.T) {
	root := t.TempDir()
	ctx := context.Background()

	store := New(root)
	require.NoError(t, store.Append(ctx, "proj1", 0, []event.Event{completed("p1", ts(10, 9))}))

	// A fresh store over the same directory picks up where we left off.
	reopened := New(root)
	version, err := reopened.CurrentVersion(ctx, "proj1")
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
	require.ErrorIs(t, reopened.Append(ctx, "proj1", 0, nil), repository.ErrConcurrency)
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(line) > 0 {
			lines = append(lines, line)
		}
	}
	return lines
}
