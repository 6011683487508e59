// Package repository defines the persistence contracts of the event
// store and the errors its implementations share.
package repository

import (
	"context"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/projection"
)

// EventStore is the append-only, project-scoped event log.
//
// Implementations serialize appends and compaction per project so the
// version check and the write are atomic together: of two writers racing
// with the same expected version exactly one wins, the other receives
// ErrConcurrency. Reads may run concurrently and reflect a consistent
// snapshot of completed writes.
type EventStore interface {
	// Append adds events to a project's log. expectedVersion must equal
	// the log's current version or the append fails with ErrConcurrency
	// and writes nothing. Each stored event is assigned
	// version = priorLength + index + 1. An empty events slice is a
	// no-op that still enforces the version check. Durable
	// implementations flush to stable storage before returning.
	Append(ctx context.Context, projectID string, expectedVersion int64, events []event.Event) error

	// LoadByProject returns a project's events in version order. When a
	// snapshot exists only events after its cutoff timestamp are
	// returned; callers fold them onto the snapshot's state. A project
	// with no stored data yields an empty slice, not an error.
	LoadByProject(ctx context.Context, projectID string) ([]event.Event, error)

	// LoadByPart is LoadByProject filtered to one part.
	LoadByPart(ctx context.Context, projectID, partID string) ([]event.Event, error)

	// CurrentVersion returns the project's logical log length, counting
	// events removed by compaction. Zero for an unknown project.
	CurrentVersion(ctx context.Context, projectID string) (int64, error)

	// LoadSnapshot returns the project's projector snapshot, nil when
	// none has been written.
	LoadSnapshot(ctx context.Context, projectID string) (*projection.Snapshot, error)

	// Compact durably writes the snapshot, then removes the log prefix
	// at or before its cutoff timestamp. Safe to run at any time;
	// queries always account for the cutoff. Fails with
	// ErrSnapshotMismatch before touching storage when the snapshot
	// names a different project. Command-id dedup data survives
	// compaction.
	Compact(ctx context.Context, projectID string, snap projection.Snapshot) error

	// HasCommand reports whether an event carrying commandID was ever
	// appended for the project. Callers use it to skip re-appending the
	// result of a duplicated command.
	HasCommand(ctx context.Context, projectID, commandID string) (bool, error)
}
