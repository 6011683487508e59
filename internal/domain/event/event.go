// Package event defines the closed set of domain events recorded for a
// project's parts. Events are immutable facts; the store assigns their
// versions on append.
package event

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
)

// Type identifies the kind of a domain event.
type Type string

const (
	// TypePartApproved records that a part passed final approval.
	TypePartApproved Type = "PartApproved"
	// TypePartSnoozed records that a part's notification was deferred.
	TypePartSnoozed Type = "PartSnoozed"
	// TypePartCompleted records that a part's work finished.
	TypePartCompleted Type = "PartCompleted"
	// TypePartReopened records that a completed or approved part was reopened.
	TypePartReopened Type = "PartReopened"
	// TypeDeviationRaised records a deviation opened against a part.
	TypeDeviationRaised Type = "DeviationRaised"
	// TypeDeviationResolved records a deviation closed on a part.
	TypeDeviationResolved Type = "DeviationResolved"
)

// Types lists every event type. Folds switch exhaustively over this set;
// adding a type here forces every projection to handle it.
var Types = []Type{
	TypePartApproved,
	TypePartSnoozed,
	TypePartCompleted,
	TypePartReopened,
	TypeDeviationRaised,
	TypeDeviationResolved,
}

var (
	// ErrUnknownType indicates an event type outside the closed set.
	ErrUnknownType = errors.New("unknown event type")
	// ErrMissingPartID indicates an event without a part id.
	ErrMissingPartID = errors.New("event part id is required")
	// ErrMissingTimestamp indicates an event without a timestamp.
	ErrMissingTimestamp = errors.New("event timestamp is required")
	// ErrMissingNotificationDate indicates a snooze without a notification date.
	ErrMissingNotificationDate = errors.New("snooze requires a notification date")
)

// Event is a single immutable entry in a project's event log.
type Event struct {
	// Type identifies the kind of event.
	Type Type `json:"type"`
	// PartID is the part the event belongs to.
	PartID string `json:"partId"`
	// Timestamp is when the event occurred, in UTC epoch milliseconds.
	Timestamp int64 `json:"timestamp"`
	// CommandID is an opaque idempotency token, empty when the caller
	// did not supply one.
	CommandID string `json:"commandId,omitempty"`
	// Version is the event's position in the project log, starting at 1.
	// Assigned by the store on append.
	Version int64 `json:"version,omitempty"`
	// NotificationDate is the snooze-until date key. Set only on
	// PartSnoozed events.
	NotificationDate string `json:"notificationDate,omitempty"`
}

// IsValid reports whether t belongs to the closed event type set.
func (t Type) IsValid() bool {
	switch t {
	case TypePartApproved, TypePartSnoozed, TypePartCompleted,
		TypePartReopened, TypeDeviationRaised, TypeDeviationResolved:
		return true
	}
	return false
}

// Validate checks the event's own shape, independent of any log position.
func (e Event) Validate() error {
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if e.PartID == "" {
		return ErrMissingPartID
	}
	if e.Timestamp <= 0 {
		return ErrMissingTimestamp
	}
	if e.Type == TypePartSnoozed {
		if e.NotificationDate == "" {
			return ErrMissingNotificationDate
		}
		if _, err := calendar.ParseDate(e.NotificationDate); err != nil {
			return err
		}
	}
	return nil
}

// OccurredAt returns the event timestamp as a UTC instant.
func (e Event) OccurredAt() time.Time {
	return time.UnixMilli(e.Timestamp).UTC()
}

// ForPart returns the events belonging to partID, preserving order.
func ForPart(events []Event, partID string) []Event {
	var out []Event
	for _, e := range events {
		if e.PartID == partID {
			out = append(out, e)
		}
	}
	return out
}

// SortedByTimestamp returns a copy ordered by timestamp, with ties kept
// in their original sequence order.
func SortedByTimestamp(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}
