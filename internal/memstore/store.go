// Package memstore is the in-memory reference implementation of the
// event store contract. Each project owns an independent ordered log
// guarded by its own mutex, so the version check and the write are
// atomic per project while projects never contend with each other.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/lifecycle"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/partflow/partflow/internal/repository"
)

// Store implements repository.EventStore in memory.
type Store struct {
	mu       sync.Mutex
	projects map[string]*projectLog
}

type projectLog struct {
	mu       sync.Mutex
	events   []event.Event
	version  int64
	commands map[string]bool
	snapshot *projection.Snapshot
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{projects: make(map[string]*projectLog)}
}

func (s *Store) project(projectID string) *projectLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectID]
	if !ok {
		p = &projectLog{commands: make(map[string]bool)}
		s.projects[projectID] = p
	}
	return p
}

// Append adds events under optimistic concurrency.
func (s *Store) Append(ctx context.Context, projectID string, expectedVersion int64, events []event.Event) error {
	if projectID == "" {
		return repository.ErrInvalidProjectID
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrInvalidEvent, err)
		}
	}

	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if expectedVersion != p.version {
		return fmt.Errorf("%w: expected version %d, have %d", repository.ErrConcurrency, expectedVersion, p.version)
	}
	for i, e := range events {
		e.Version = p.version + int64(i) + 1
		p.events = append(p.events, e)
		if e.CommandID != "" {
			p.commands[e.CommandID] = true
		}
	}
	p.version += int64(len(events))
	return nil
}

// LoadByProject returns the project's events after the snapshot cutoff.
func (s *Store) LoadByProject(ctx context.Context, projectID string) ([]event.Event, error) {
	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()

	cutoff := int64(-1)
	if p.snapshot != nil {
		cutoff = p.snapshot.LastEventTimestamp
	}
	out := make([]event.Event, 0, len(p.events))
	for _, e := range p.events {
		if e.Timestamp > cutoff {
			out = append(out, e)
		}
	}
	return out, nil
}

// LoadByPart returns one part's events after the snapshot cutoff.
func (s *Store) LoadByPart(ctx context.Context, projectID, partID string) ([]event.Event, error) {
	all, err := s.LoadByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return event.ForPart(all, partID), nil
}

// CurrentVersion returns the logical log length, compaction included.
func (s *Store) CurrentVersion(ctx context.Context, projectID string) (int64, error) {
	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version, nil
}

// LoadSnapshot returns a copy of the stored snapshot, nil when absent.
func (s *Store) LoadSnapshot(ctx context.Context, projectID string) (*projection.Snapshot, error) {
	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.snapshot == nil {
		return nil, nil
	}
	snap := copySnapshot(*p.snapshot)
	return &snap, nil
}

// Compact stores the snapshot and drops the now-redundant log prefix.
// Command dedup data is retained.
func (s *Store) Compact(ctx context.Context, projectID string, snap projection.Snapshot) error {
	if snap.ProjectID != projectID {
		return fmt.Errorf("%w: snapshot for %q, compacting %q", repository.ErrSnapshotMismatch, snap.ProjectID, projectID)
	}

	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()

	stored := copySnapshot(snap)
	p.snapshot = &stored

	retained := p.events[:0:0]
	for _, e := range p.events {
		if e.Timestamp > snap.LastEventTimestamp {
			retained = append(retained, e)
		}
	}
	p.events = retained
	return nil
}

// HasCommand reports whether the command id was ever appended.
func (s *Store) HasCommand(ctx context.Context, projectID, commandID string) (bool, error) {
	if commandID == "" {
		return false, nil
	}
	p := s.project(projectID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commands[commandID], nil
}

func copySnapshot(snap projection.Snapshot) projection.Snapshot {
	states := make(map[string]lifecycle.State, len(snap.LifecycleStateByPart))
	for partID, state := range snap.LifecycleStateByPart {
		states[partID] = state
	}
	snap.LifecycleStateByPart = states
	return snap
}
