// Package projection derives read models from a project's event log:
// per-part display state, the dashboard task list, completion pace and
// progress statistics. Every function is pure; time and calendar are
// explicit inputs.
package projection

import (
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
)

// DisplayState classifies a part against the clock for presentation.
// It is a separate state space from the lifecycle state.
type DisplayState string

const (
	// StateNotDue marks a part whose end date has not been reached.
	StateNotDue DisplayState = "NotDue"
	// StateDue marks a part on its end date's grace window.
	StateDue DisplayState = "Due"
	// StateOverdue marks a part past the first working day after its
	// end date.
	StateOverdue DisplayState = "Overdue"
	// StateSnoozed marks a part deferred until a notification date.
	StateSnoozed DisplayState = "Snoozed"
	// StateApproved marks a part that passed final approval.
	StateApproved DisplayState = "Approved"
)

// notificationFold is the per-part fold the display state derives from.
type notificationFold struct {
	approved         bool
	notificationDate string
}

// foldNotifications replays partID's events into the approval flag and
// the pending snooze. Reopening or approving clears a prior snooze.
func foldNotifications(events []event.Event, partID string) notificationFold {
	var fold notificationFold
	for _, e := range event.SortedByTimestamp(event.ForPart(events, partID)) {
		switch e.Type {
		case event.TypePartApproved:
			fold.approved = true
			fold.notificationDate = ""
		case event.TypePartReopened:
			fold.approved = false
			fold.notificationDate = ""
		case event.TypePartSnoozed:
			fold.notificationDate = e.NotificationDate
		case event.TypePartCompleted, event.TypeDeviationRaised, event.TypeDeviationResolved:
			// No effect on the display fold.
		}
	}
	return fold
}

// PartState classifies a part at instant now. The cutoff of a date is
// 00:01:00 local time on that date; a part becomes Overdue once the
// cutoff of the first working day after its end date passes.
func PartState(events []event.Event, partID string, endDate calendar.Date, now time.Time, loc *time.Location, cal calendar.Calendar) (DisplayState, error) {
	fold := foldNotifications(events, partID)

	if fold.approved {
		return StateApproved, nil
	}
	if now.Before(endDate.Cutoff(loc)) {
		return StateNotDue, nil
	}
	if fold.notificationDate != "" {
		notification, err := calendar.ParseDate(fold.notificationDate)
		if err != nil {
			return "", err
		}
		if now.Before(notification.Cutoff(loc)) {
			return StateSnoozed, nil
		}
	}
	overdueFrom := cal.FirstWorkingDayAfter(endDate).Cutoff(loc)
	if !now.Before(overdueFrom) {
		return StateOverdue, nil
	}
	return StateDue, nil
}
