package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/lifecycle"
	"github.com/partflow/partflow/internal/domain/projection"
	"github.com/partflow/partflow/internal/repository"
)

// Store implements repository.EventStore on SQLite. Writes and
// compaction are serialized per project so the version check and the
// insert commit atomically together.
type Store struct {
	db *DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a Store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db, locks: make(map[string]*sync.Mutex)}
}

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

// Append adds events under optimistic concurrency, committing the
// version check, the inserts and the command ids as one transaction.
func (s *Store) Append(ctx context.Context, projectID string, expectedVersion int64, events []event.Event) error {
	if projectID == "" {
		return repository.ErrInvalidProjectID
	}
	for _, e := range events {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %v", repository.ErrInvalidEvent, err)
		}
	}

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (id, version) VALUES (?, 0) ON CONFLICT(id) DO NOTHING`, projectID); err != nil {
		return fmt.Errorf("ensure project row: %w", err)
	}

	var version int64
	if err := tx.QueryRowContext(ctx,
		`SELECT version FROM projects WHERE id = ?`, projectID).Scan(&version); err != nil {
		return fmt.Errorf("read project version: %w", err)
	}
	if expectedVersion != version {
		return fmt.Errorf("%w: expected version %d, have %d", repository.ErrConcurrency, expectedVersion, version)
	}
	if len(events) == 0 {
		return tx.Commit()
	}

	for i, e := range events {
		e.Version = version + int64(i) + 1
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO events (project_id, version, type, part_id, timestamp, command_id, notification_date)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			projectID, e.Version, string(e.Type), e.PartID, e.Timestamp,
			nullable(e.CommandID), nullable(e.NotificationDate),
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		if e.CommandID != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO commands (project_id, command_id) VALUES (?, ?)
				ON CONFLICT(project_id, command_id) DO NOTHING`,
				projectID, e.CommandID,
			); err != nil {
				return fmt.Errorf("record command id: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE projects SET version = ? WHERE id = ?`, version+int64(len(events)), projectID); err != nil {
		return fmt.Errorf("advance project version: %w", err)
	}
	return tx.Commit()
}

// LoadByProject returns the project's events after the snapshot cutoff.
func (s *Store) LoadByProject(ctx context.Context, projectID string) ([]event.Event, error) {
	return s.load(ctx, projectID, "")
}

// LoadByPart is LoadByProject filtered to one part.
func (s *Store) LoadByPart(ctx context.Context, projectID, partID string) ([]event.Event, error) {
	return s.load(ctx, projectID, partID)
}

func (s *Store) load(ctx context.Context, projectID, partID string) ([]event.Event, error) {
	cutoff, err := s.snapshotCutoff(ctx, projectID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT version, type, part_id, timestamp, command_id, notification_date
		FROM events
		WHERE project_id = ? AND timestamp > ?`
	args := []any{projectID, cutoff}
	if partID != "" {
		query += ` AND part_id = ?`
		args = append(args, partID)
	}
	query += ` ORDER BY version`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []event.Event{}
	for rows.Next() {
		var (
			e            event.Event
			typ          string
			commandID    sql.NullString
			notification sql.NullString
		)
		if err := rows.Scan(&e.Version, &typ, &e.PartID, &e.Timestamp, &commandID, &notification); err != nil {
			return nil, fmt.Errorf("%w: %v", repository.ErrMalformedRecord, err)
		}
		e.Type = event.Type(typ)
		e.CommandID = commandID.String
		e.NotificationDate = notification.String
		if !e.Type.IsValid() {
			return nil, fmt.Errorf("%w: unknown event type %q", repository.ErrMalformedRecord, typ)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// CurrentVersion returns the logical log length, compaction included.
func (s *Store) CurrentVersion(ctx context.Context, projectID string) (int64, error) {
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT version FROM projects WHERE id = ?`, projectID).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read project version: %w", err)
	}
	return version, nil
}

// LoadSnapshot returns the stored projector snapshot, nil when absent.
func (s *Store) LoadSnapshot(ctx context.Context, projectID string) (*projection.Snapshot, error) {
	var (
		cutoff    int64
		stateJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT last_event_timestamp, state_json FROM snapshots WHERE project_id = ?`, projectID).
		Scan(&cutoff, &stateJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	states := make(map[string]lifecycle.State)
	if err := json.Unmarshal([]byte(stateJSON), &states); err != nil {
		return nil, fmt.Errorf("%w: snapshot state: %v", repository.ErrMalformedRecord, err)
	}
	return &projection.Snapshot{
		ProjectID:            projectID,
		LastEventTimestamp:   cutoff,
		LifecycleStateByPart: states,
	}, nil
}

// Compact writes the snapshot and deletes the redundant log prefix in
// one transaction. The commands table and the version counter are left
// alone.
func (s *Store) Compact(ctx context.Context, projectID string, snap projection.Snapshot) error {
	if snap.ProjectID != projectID {
		return fmt.Errorf("%w: snapshot for %q, compacting %q", repository.ErrSnapshotMismatch, snap.ProjectID, projectID)
	}

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	stateJSON, err := json.Marshal(snap.LifecycleStateByPart)
	if err != nil {
		return fmt.Errorf("encode snapshot state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin compaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO projects (id, version) VALUES (?, 0) ON CONFLICT(id) DO NOTHING`, projectID); err != nil {
		return fmt.Errorf("ensure project row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (project_id, last_event_timestamp, state_json) VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			last_event_timestamp = excluded.last_event_timestamp,
			state_json = excluded.state_json`,
		projectID, snap.LastEventTimestamp, string(stateJSON),
	); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE project_id = ? AND timestamp <= ?`,
		projectID, snap.LastEventTimestamp); err != nil {
		return fmt.Errorf("truncate log prefix: %w", err)
	}
	return tx.Commit()
}

// HasCommand reports whether the command id was ever appended,
// including in compacted history.
func (s *Store) HasCommand(ctx context.Context, projectID, commandID string) (bool, error) {
	if commandID == "" {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM commands WHERE project_id = ? AND command_id = ?)`,
		projectID, commandID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query command id: %w", err)
	}
	return exists, nil
}

func (s *Store) snapshotCutoff(ctx context.Context, projectID string) (int64, error) {
	var cutoff int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_event_timestamp FROM snapshots WHERE project_id = ?`, projectID).Scan(&cutoff)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read snapshot cutoff: %w", err)
	}
	return cutoff, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
