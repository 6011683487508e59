package projection

import (
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
)

// CompletionStatus buckets a part's pace for progress reporting.
type CompletionStatus string

const (
	// StatusNotCompleted marks a part without a completion event.
	StatusNotCompleted CompletionStatus = "NotCompleted"
	// StatusEarly marks completion more than one working day early.
	StatusEarly CompletionStatus = "Early"
	// StatusOnTime marks completion within one working day of the plan.
	StatusOnTime CompletionStatus = "OnTime"
	// StatusDelayed marks completion more than one working day late.
	StatusDelayed CompletionStatus = "Delayed"
)

// PartPace returns the signed working-day distance from a part's
// planned end date to its actual completion date, nil when the part has
// no completion event. Negative is early, positive late, zero exact.
// The first completion by timestamp counts; later reopens and
// re-completions do not move the pace.
func PartPace(events []event.Event, partID string, endDate calendar.Date, cal calendar.Calendar, loc *time.Location) *int {
	var completion *event.Event
	for _, e := range event.SortedByTimestamp(event.ForPart(events, partID)) {
		if e.Type == event.TypePartCompleted {
			completion = &e
			break
		}
	}
	if completion == nil {
		return nil
	}

	completedOn := calendar.DateOf(completion.OccurredAt().In(loc))
	pace := cal.DiffWorkingDays(endDate, completedOn)
	return &pace
}

// PartCompletionStatus buckets a pace value.
func PartCompletionStatus(pace *int) CompletionStatus {
	switch {
	case pace == nil:
		return StatusNotCompleted
	case *pace < -1:
		return StatusEarly
	case *pace > 1:
		return StatusDelayed
	default:
		return StatusOnTime
	}
}
