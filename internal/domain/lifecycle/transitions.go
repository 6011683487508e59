package lifecycle

import (
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
)

// Allow-lists per transition.
var (
	approveFrom  = []State{StatePlanned, StateActive}
	completeFrom = []State{StatePlanned, StateActive}
	snoozeFrom   = []State{StatePlanned, StateActive}
	reopenFrom   = []State{StateCompleted, StateApproved}
)

func checkTransition(current State, valid []State) error {
	for _, s := range valid {
		if current == s {
			return nil
		}
	}
	return &InvariantError{Current: current, Valid: valid}
}

// ApproveFrom validates approval against a known current state and
// returns the event to append. Used when the state was restored from a
// snapshot instead of a full replay.
func ApproveFrom(current State, partID string, at time.Time) (event.Event, error) {
	if err := checkTransition(current, approveFrom); err != nil {
		return event.Event{}, err
	}
	return event.Event{Type: event.TypePartApproved, PartID: partID, Timestamp: at.UTC().UnixMilli()}, nil
}

// CompleteFrom validates completion against a known current state.
func CompleteFrom(current State, partID string, at time.Time) (event.Event, error) {
	if err := checkTransition(current, completeFrom); err != nil {
		return event.Event{}, err
	}
	return event.Event{Type: event.TypePartCompleted, PartID: partID, Timestamp: at.UTC().UnixMilli()}, nil
}

// SnoozeFrom validates a snooze against a known current state. The
// notification date must be a valid date key.
func SnoozeFrom(current State, partID string, at time.Time, notificationDate string) (event.Event, error) {
	if _, err := calendar.ParseDate(notificationDate); err != nil {
		return event.Event{}, err
	}
	if err := checkTransition(current, snoozeFrom); err != nil {
		return event.Event{}, err
	}
	return event.Event{
		Type:             event.TypePartSnoozed,
		PartID:           partID,
		Timestamp:        at.UTC().UnixMilli(),
		NotificationDate: notificationDate,
	}, nil
}

// ReopenFrom validates a reopen against a known current state.
func ReopenFrom(current State, partID string, at time.Time) (event.Event, error) {
	if err := checkTransition(current, reopenFrom); err != nil {
		return event.Event{}, err
	}
	return event.Event{Type: event.TypePartReopened, PartID: partID, Timestamp: at.UTC().UnixMilli()}, nil
}

// Approve replays the prior events, validates the transition and
// returns a new list with the approval appended. The input is never
// mutated.
func Approve(events []event.Event, partID string, at time.Time) ([]event.Event, error) {
	ev, err := ApproveFrom(ProjectState(events, partID), partID, at)
	if err != nil {
		return nil, err
	}
	return withEvent(events, ev), nil
}

// Complete appends a completion after validating the transition.
func Complete(events []event.Event, partID string, at time.Time) ([]event.Event, error) {
	ev, err := CompleteFrom(ProjectState(events, partID), partID, at)
	if err != nil {
		return nil, err
	}
	return withEvent(events, ev), nil
}

// Snooze appends a snooze until notificationDate after validating the
// transition.
func Snooze(events []event.Event, partID string, at time.Time, notificationDate string) ([]event.Event, error) {
	ev, err := SnoozeFrom(ProjectState(events, partID), partID, at, notificationDate)
	if err != nil {
		return nil, err
	}
	return withEvent(events, ev), nil
}

// Reopen appends a reopen after validating the transition.
func Reopen(events []event.Event, partID string, at time.Time) ([]event.Event, error) {
	ev, err := ReopenFrom(ProjectState(events, partID), partID, at)
	if err != nil {
		return nil, err
	}
	return withEvent(events, ev), nil
}

func withEvent(events []event.Event, ev event.Event) []event.Event {
	out := make([]event.Event, len(events), len(events)+1)
	copy(out, events)
	return append(out, ev)
}
