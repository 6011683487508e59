package projection

import (
	"sort"
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/project"
)

// TaskStatus is the dashboard grouping of a part requiring attention.
type TaskStatus string

const (
	// StatusActionRequired groups parts that are due or overdue.
	StatusActionRequired TaskStatus = "ActionRequired"
	// StatusSnoozed groups parts deferred to a later date.
	StatusSnoozed TaskStatus = "Snoozed"
)

// TaskItem is one dashboard row.
type TaskItem struct {
	PartID  string     `json:"partId"`
	Status  TaskStatus `json:"status"`
	EndDate string     `json:"endDate"`
	Overdue bool       `json:"overdue"`
}

// isInTasks reports whether a display state belongs on the dashboard.
func isInTasks(state DisplayState) bool {
	return state == StateDue || state == StateOverdue || state == StateSnoozed
}

// DashboardState computes the ordered task list for a set of parts.
// Ordering is total and stable for identical inputs: ActionRequired
// before Snoozed, then end date ascending, then part id.
func DashboardState(parts []project.Part, events []event.Event, now time.Time, loc *time.Location, cal calendar.Calendar) ([]TaskItem, error) {
	var items []TaskItem
	for _, p := range parts {
		endDate, err := calendar.ParseDate(p.EndDate)
		if err != nil {
			return nil, err
		}
		state, err := PartState(events, p.ID, endDate, now, loc, cal)
		if err != nil {
			return nil, err
		}
		if !isInTasks(state) {
			continue
		}
		status := StatusActionRequired
		if state == StateSnoozed {
			status = StatusSnoozed
		}
		items = append(items, TaskItem{
			PartID:  p.ID,
			Status:  status,
			EndDate: p.EndDate,
			Overdue: state == StateOverdue,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Status != b.Status {
			return a.Status == StatusActionRequired
		}
		if a.EndDate != b.EndDate {
			return a.EndDate < b.EndDate
		}
		return a.PartID < b.PartID
	})
	return items, nil
}
