// Package lifecycle implements the part state machine: replaying a
// part's events into its current state and validating transitions.
package lifecycle

import (
	"github.com/partflow/partflow/internal/domain/event"
)

// State is the lifecycle state of a part, derived from its events.
type State string

const (
	// StatePlanned is the initial state of a part with no events.
	StatePlanned State = "Planned"
	// StateActive marks a part that has activity but is neither
	// completed nor approved.
	StateActive State = "Active"
	// StateCompleted marks a part whose work finished.
	StateCompleted State = "Completed"
	// StateApproved marks a part that passed final approval.
	StateApproved State = "Approved"
	// StateBlocked is reserved and currently unreachable.
	StateBlocked State = "Blocked"
)

// Apply folds a single event type onto a state. Snoozes and deviations
// leave the lifecycle state untouched; their effect lives in the
// projections.
func Apply(current State, t event.Type) State {
	switch t {
	case event.TypePartApproved:
		return StateApproved
	case event.TypePartCompleted:
		return StateCompleted
	case event.TypePartReopened:
		return StateActive
	case event.TypePartSnoozed:
		return current
	case event.TypeDeviationRaised, event.TypeDeviationResolved:
		return current
	default:
		return current
	}
}

// ProjectState replays every event for partID, ordered by timestamp with
// ties kept in sequence order, and returns the resulting state. A part
// with events that still folds to Planned is normalized to Active: an
// event occurred, so the part is no longer untouched.
func ProjectState(events []event.Event, partID string) State {
	own := event.ForPart(events, partID)
	return ResumeState(StatePlanned, own, partID)
}

// ResumeState folds events for partID onto a prior state, typically one
// restored from a projector snapshot. The Planned-to-Active
// normalization applies exactly as in a full replay.
func ResumeState(base State, events []event.Event, partID string) State {
	state := base
	seen := false
	for _, e := range event.SortedByTimestamp(event.ForPart(events, partID)) {
		seen = true
		state = Apply(state, e.Type)
	}
	if seen && state == StatePlanned {
		state = StateActive
	}
	return state
}
