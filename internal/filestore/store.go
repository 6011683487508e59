// Package filestore is the durable file-backed event store: one
// newline-delimited JSON event log per project plus a companion
// snapshot file. Appends are fsynced before they are acknowledged and
// snapshots are written temp-then-rename, so a crash cannot lose an
// acknowledged write or leave a torn snapshot.
package filestore

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/partflow/partflow/internal/repository"
)

const (
	eventsFile   = "events.ndjson"
	snapshotFile = "snapshot.json"
)

// Store implements repository.EventStore on the local filesystem.
// Every project gets its own directory under the store root, created
// lazily on first append.
type Store struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// snapshotRecord is the on-disk snapshot document. Besides the
// projector snapshot it carries the log's logical version and the seen
// command ids, both of which must survive compaction.
type snapshotRecord struct {
	projection.Snapshot
	Version    int64    `json:"version"`
	CommandIDs []string `json:"commandIds,omitempty"`
}

// New creates a store rooted at dir. The directory itself is created
// lazily by the first write.
func New(dir string) *Store {
	return &Store{dir: dir, locks: make(map[string]*sync.Mutex)}
}

// projectLock returns the mutex serializing writes and compaction for
// one project.
func (s *Store) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	return l
}

func validProjectID(projectID string) error {
	if projectID == "" || strings.ContainsAny(projectID, `/\`) || projectID == "." || projectID == ".." {
		return fmt.Errorf("%w: %q", repository.ErrInvalidProjectID, projectID)
	}
	return nil
}

func (s *Store) projectDir(projectID string) string {
	return filepath.Join(s.dir, projectID)
}

// Append adds events under optimistic concurrency and flushes them to
// stable storage before returning.
func (s *Store) Append(ctx context.Context, projectID string, expectedVersion int64, events []event.Event) error {
	if err := validProjectID(projectID); err != nil {
		return err
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrInvalidEvent, err)
		}
	}

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return err
	}
	stored, err := s.readEvents(projectID)
	if err != nil {
		return err
	}
	version := currentVersion(snap, stored)
	if expectedVersion != version {
		return fmt.Errorf("%w: expected version %d, have %d", repository.ErrConcurrency, expectedVersion, version)
	}
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i, e := range events {
		e.Version = version + int64(i) + 1
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := os.MkdirAll(s.projectDir(projectID), 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.projectDir(projectID), eventsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	// The append is acknowledged only once it is on stable storage.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}

// LoadByProject returns the project's events after the snapshot cutoff.
func (s *Store) LoadByProject(ctx context.Context, projectID string) ([]event.Event, error) {
	if err := validProjectID(projectID); err != nil {
		return nil, err
	}
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return nil, err
	}
	events, err := s.readEvents(projectID)
	if err != nil {
		return nil, err
	}
	cutoff := int64(-1)
	if snap != nil {
		cutoff = snap.LastEventTimestamp
	}
	out := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.Timestamp > cutoff {
			out = append(out, e)
		}
	}
	return out, nil
}

// LoadByPart is LoadByProject filtered to one part.
func (s *Store) LoadByPart(ctx context.Context, projectID, partID string) ([]event.Event, error) {
	all, err := s.LoadByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return event.ForPart(all, partID), nil
}

// CurrentVersion returns the logical log length, compaction included.
func (s *Store) CurrentVersion(ctx context.Context, projectID string) (int64, error) {
	if err := validProjectID(projectID); err != nil {
		return 0, err
	}
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return 0, err
	}
	events, err := s.readEvents(projectID)
	if err != nil {
		return 0, err
	}
	return currentVersion(snap, events), nil
}

// LoadSnapshot returns the stored projector snapshot, nil when absent.
func (s *Store) LoadSnapshot(ctx context.Context, projectID string) (*projection.Snapshot, error) {
	if err := validProjectID(projectID); err != nil {
		return nil, err
	}
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	record, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}
	snap := record.Snapshot
	return &snap, nil
}

// Compact durably writes the snapshot, then rewrites the log keeping
// only events after the cutoff. The snapshot lands first: if the
// process dies between the two renames the log merely retains a
// redundant prefix that loads already filter out.
func (s *Store) Compact(ctx context.Context, projectID string, snap projection.Snapshot) error {
	if err := validProjectID(projectID); err != nil {
		return err
	}
	if snap.ProjectID != projectID {
		return fmt.Errorf("%w: snapshot for %q, compacting %q", repository.ErrSnapshotMismatch, snap.ProjectID, projectID)
	}

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	prior, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return err
	}
	events, err := s.readEvents(projectID)
	if err != nil {
		return err
	}

	record := snapshotRecord{
		Snapshot:   snap,
		Version:    currentVersion(prior, events),
		CommandIDs: mergeCommandIDs(prior, events),
	}
	if err := os.MkdirAll(s.projectDir(projectID), 0o755); err != nil {
		return fmt.Errorf("create project dir: %w", err)
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.projectDir(projectID), snapshotFile), data); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, e := range events {
		if e.Timestamp <= snap.LastEventTimestamp {
			continue
		}
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return writeFileAtomic(filepath.Join(s.projectDir(projectID), eventsFile), buf.Bytes())
}

// HasCommand reports whether the command id was ever appended,
// including in compacted history.
func (s *Store) HasCommand(ctx context.Context, projectID, commandID string) (bool, error) {
	if err := validProjectID(projectID); err != nil {
		return false, err
	}
	if commandID == "" {
		return false, nil
	}
	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := s.readSnapshotRecord(projectID)
	if err != nil {
		return false, err
	}
	if snap != nil {
		for _, id := range snap.CommandIDs {
			if id == commandID {
				return true, nil
			}
		}
	}
	events, err := s.readEvents(projectID)
	if err != nil {
		return false, err
	}
	for _, e := range events {
		if e.CommandID == commandID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) readEvents(projectID string) ([]event.Event, error) {
	path := filepath.Join(s.projectDir(projectID), eventsFile)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	var events []event.Event
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var e event.Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", repository.ErrMalformedRecord, path, line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return events, nil
}

func (s *Store) readSnapshotRecord(projectID string) (*snapshotRecord, error) {
	path := filepath.Join(s.projectDir(projectID), snapshotFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var record snapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrMalformedRecord, path, err)
	}
	return &record, nil
}

func currentVersion(snap *snapshotRecord, events []event.Event) int64 {
	if len(events) > 0 {
		return events[len(events)-1].Version
	}
	if snap != nil {
		return snap.Version
	}
	return 0
}

func mergeCommandIDs(snap *snapshotRecord, events []event.Event) []string {
	seen := make(map[string]bool)
	var out []string
	if snap != nil {
		for _, id := range snap.CommandIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, e := range events {
		if e.CommandID != "" && !seen[e.CommandID] {
			seen[e.CommandID] = true
			out = append(out, e.CommandID)
		}
	}
	return out
}

// writeFileAtomic writes data to a temp file in the target directory,
// syncs it and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
