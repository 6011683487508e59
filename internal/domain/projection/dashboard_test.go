package projection

import (
	"testing"
	"time"

	"github.com/partflow/partflow/internal/domain/event"
	"github.com/partflow/partflow/internal/domain/project"
	"github.com/stretchr/testify/require"
)

func TestDashboardState_SnoozeLifecycle(t *testing.T) {
	cal, loc := utcCalendar()
	parts := []project.Part{{ID: "p4", StageID: "s1", EndDate: "2025-02-17"}}
	events := []event.Event{
		{Type: event.TypePartSnoozed, PartID: "p4", Timestamp: 1, NotificationDate: "2025-02-25"},
	}

	// While the snooze holds, the part shows as Snoozed.
	items, err := DashboardState(parts, events, time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, StatusSnoozed, items[0].Status)
	require.False(t, items[0].Overdue)

	// At the notification date's cutoff the part demands action again.
	items, err = DashboardState(parts, events, time.Date(2025, 2, 25, 0, 1, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, StatusActionRequired, items[0].Status)
	require.True(t, items[0].Overdue)
}

func TestDashboardState_FiltersAndOrders(t *testing.T) {
	cal, loc := utcCalendar()
	now := time.Date(2025, 2, 20, 12, 0, 0, 0, time.UTC)

	parts := []project.Part{
		{ID: "p-approved", StageID: "s1", EndDate: "2025-02-17"},
		{ID: "p-future", StageID: "s1", EndDate: "2025-03-10"},
		{ID: "p-snoozed", StageID: "s1", EndDate: "2025-02-17"},
		{ID: "p-late-b", StageID: "s1", EndDate: "2025-02-18"},
		{ID: "p-late-a", StageID: "s1", EndDate: "2025-02-18"},
		{ID: "p-due", StageID: "s1", EndDate: "2025-02-20"},
	}
	events := []event.Event{
		{Type: event.TypePartApproved, PartID: "p-approved", Timestamp: 1},
		{Type: event.TypePartSnoozed, PartID: "p-snoozed", Timestamp: 2, NotificationDate: "2025-02-28"},
	}

	items, err := DashboardState(parts, events, now, loc, cal)
	require.NoError(t, err)

	var ids []string
	for _, item := range items {
		ids = append(ids, item.PartID)
	}
	// Approved and not-yet-due parts are excluded. ActionRequired sorts
	// before Snoozed, then end date, then part id.
	require.Equal(t, []string{"p-late-a", "p-late-b", "p-due", "p-snoozed"}, ids)

	require.True(t, items[0].Overdue)
	require.True(t, items[1].Overdue)
	require.False(t, items[2].Overdue)
	require.Equal(t, StatusSnoozed, items[3].Status)
}

func TestDashboardState_Empty(t *testing.T) {
	cal, loc := utcCalendar()
	items, err := DashboardState(nil, nil, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDashboardState_BadEndDate(t *testing.T) {
	cal, loc := utcCalendar()
	parts := []project.Part{{ID: "p1", StageID: "s1", EndDate: "soon"}}
	_, err := DashboardState(parts, nil, time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), loc, cal)
	require.Error(t, err)
}
