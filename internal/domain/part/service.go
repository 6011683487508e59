// Package part implements the command side of part lifecycle changes:
// validating a command against the current state and appending the
// resulting event under optimistic concurrency.
package part

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/lifecycle"
	"github.com/partflow/partflow/internal/repository"
)

// Service handles part lifecycle commands.
type Service struct {
	store  repository.EventStore
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new part service.
func NewService(store repository.EventStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Command identifies the part a lifecycle command targets. CommandID is
// optional; a missing one is filled with a fresh UUID, which disables
// dedup for that command.
type Command struct {
	ProjectID string
	PartID    string
	CommandID string
}

// SnoozeCommand is a Command carrying the notification date of a snooze.
type SnoozeCommand struct {
	Command
	NotificationDate string
}

// Result reports what a command did. Duplicate is true when the command
// id was seen before; the event was appended by the earlier delivery and
// State reflects the stored log. How to answer a duplicate is the
// caller's policy.
type Result struct {
	Event     event.Event
	State     lifecycle.State
	Duplicate bool
}

// Approve marks a part approved.
func (s *Service) Approve(ctx context.Context, cmd Command) (*Result, error) {
	return s.apply(ctx, cmd, "approve", func(current lifecycle.State, at time.Time) (event.Event, error) {
		return lifecycle.ApproveFrom(current, cmd.PartID, at)
	})
}

// Complete marks a part completed.
func (s *Service) Complete(ctx context.Context, cmd Command) (*Result, error) {
	return s.apply(ctx, cmd, "complete", func(current lifecycle.State, at time.Time) (event.Event, error) {
		return lifecycle.CompleteFrom(current, cmd.PartID, at)
	})
}

// Snooze defers a part's notifications until the command's date.
func (s *Service) Snooze(ctx context.Context, cmd SnoozeCommand) (*Result, error) {
	return s.apply(ctx, cmd.Command, "snooze", func(current lifecycle.State, at time.Time) (event.Event, error) {
		return lifecycle.SnoozeFrom(current, cmd.PartID, at, cmd.NotificationDate)
	})
}

// Reopen returns a completed or approved part to active work.
func (s *Service) Reopen(ctx context.Context, cmd Command) (*Result, error) {
	return s.apply(ctx, cmd, "reopen", func(current lifecycle.State, at time.Time) (event.Event, error) {
		return lifecycle.ReopenFrom(current, cmd.PartID, at)
	})
}

func (s *Service) apply(ctx context.Context, cmd Command, name string, build func(lifecycle.State, time.Time) (event.Event, error)) (*Result, error) {
	if cmd.ProjectID == "" {
		return nil, ErrMissingProjectID
	}
	if cmd.PartID == "" {
		return nil, ErrMissingPartID
	}
	if cmd.CommandID == "" {
		cmd.CommandID = uuid.NewString()
	}

	seen, err := s.store.HasCommand(ctx, cmd.ProjectID, cmd.CommandID)
	if err != nil {
		return nil, fmt.Errorf("checking command id: %w", err)
	}
	if seen {
		s.logger.Info("duplicate command skipped",
			"command", name, "project_id", cmd.ProjectID, "part_id", cmd.PartID, "command_id", cmd.CommandID)
		state, err := s.partState(ctx, cmd.ProjectID, cmd.PartID)
		if err != nil {
			return nil, err
		}
		return &Result{State: state, Duplicate: true}, nil
	}

	version, err := s.store.CurrentVersion(ctx, cmd.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("reading log version: %w", err)
	}
	current, err := s.partState(ctx, cmd.ProjectID, cmd.PartID)
	if err != nil {
		return nil, err
	}

	ev, err := build(current, s.now())
	if err != nil {
		return nil, err
	}
	ev.CommandID = cmd.CommandID

	// A concurrent writer fails this append; retrying is the caller's
	// decision, not ours.
	if err := s.store.Append(ctx, cmd.ProjectID, version, []event.Event{ev}); err != nil {
		return nil, fmt.Errorf("appending %s event: %w", name, err)
	}

	s.logger.Info("part command applied",
		"command", name, "project_id", cmd.ProjectID, "part_id", cmd.PartID, "version", version+1)
	return &Result{Event: ev, State: lifecycle.ResumeState(current, []event.Event{ev}, cmd.PartID)}, nil
}

// partState restores the part's lifecycle state from the snapshot plus
// the post-cutoff tail.
func (s *Service) partState(ctx context.Context, projectID, partID string) (lifecycle.State, error) {
	snap, err := s.store.LoadSnapshot(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("loading snapshot: %w", err)
	}
	tail, err := s.store.LoadByPart(ctx, projectID, partID)
	if err != nil {
		return "", fmt.Errorf("loading events: %w", err)
	}

	base := lifecycle.StatePlanned
	if snap != nil {
		base = snap.StateOf(partID)
	}
	return lifecycle.ResumeState(base, tail, partID), nil
}
