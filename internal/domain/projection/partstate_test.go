package projection

import (
	"testing"
	"time"

	"github.com/partflow/partflow/internal/domain/calendar"
	"github.com/partflow/partflow/internal/domain/event"
	"github.com/stretchr/testify/require"
)

func utcCalendar() (calendar.Calendar, *time.Location) {
	cal := calendar.Default()
	cal.Timezone = "UTC"
	return cal, time.UTC
}

func TestPartState_CutoffBoundaries(t *testing.T) {
	cal, loc := utcCalendar()
	endDate := calendar.MustDate("2025-02-17") // Monday

	cases := []struct {
		now  time.Time
		want DisplayState
	}{
		{time.Date(2025, 2, 17, 0, 0, 59, 0, time.UTC), StateNotDue},
		{time.Date(2025, 2, 17, 0, 1, 0, 0, time.UTC), StateDue},
		{time.Date(2025, 2, 17, 23, 59, 0, 0, time.UTC), StateDue},
		{time.Date(2025, 2, 18, 0, 0, 59, 0, time.UTC), StateDue},
		{time.Date(2025, 2, 18, 0, 1, 0, 0, time.UTC), StateOverdue},
	}
	for _, tc := range cases {
		state, err := PartState(nil, "p1", endDate, tc.now, loc, cal)
		require.NoError(t, err)
		require.Equal(t, tc.want, state, "now %s", tc.now)
	}
}

func TestPartState_OverdueWaitsForWorkingDay(t *testing.T) {
	cal, loc := utcCalendar()
	endDate := calendar.MustDate("2025-02-14") // Friday

	// Saturday and Sunday do not push the part into Overdue; the first
	// working day after the end date is Monday.
	state, err := PartState(nil, "p1", endDate, time.Date(2025, 2, 15, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateDue, state)

	state, err = PartState(nil, "p1", endDate, time.Date(2025, 2, 17, 0, 1, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateOverdue, state)
}

func TestPartState_Approved(t *testing.T) {
	cal, loc := utcCalendar()
	events := []event.Event{
		{Type: event.TypePartApproved, PartID: "p1", Timestamp: 1},
	}
	// Approval wins regardless of the clock.
	state, err := PartState(events, "p1", calendar.MustDate("2025-02-17"), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateApproved, state)
}

func TestPartState_Snoozed(t *testing.T) {
	cal, loc := utcCalendar()
	events := []event.Event{
		{Type: event.TypePartSnoozed, PartID: "p1", Timestamp: 1, NotificationDate: "2025-02-25"},
	}
	endDate := calendar.MustDate("2025-02-17")

	state, err := PartState(events, "p1", endDate, time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateSnoozed, state)

	// At the notification date's cutoff the snooze expires.
	state, err = PartState(events, "p1", endDate, time.Date(2025, 2, 25, 0, 1, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateOverdue, state)

	// A snooze does not shadow NotDue before the end date.
	state, err = PartState(events, "p1", endDate, time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateNotDue, state)
}

func TestPartState_ReopenClearsSnooze(t *testing.T) {
	cal, loc := utcCalendar()
	events := []event.Event{
		{Type: event.TypePartSnoozed, PartID: "p1", Timestamp: 1, NotificationDate: "2025-02-25"},
		{Type: event.TypePartCompleted, PartID: "p1", Timestamp: 2},
		{Type: event.TypePartReopened, PartID: "p1", Timestamp: 3},
	}
	state, err := PartState(events, "p1", calendar.MustDate("2025-02-17"), time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateOverdue, state)
}

func TestPartState_ApproveClearsSnoozeUntilReopen(t *testing.T) {
	cal, loc := utcCalendar()
	events := []event.Event{
		{Type: event.TypePartSnoozed, PartID: "p1", Timestamp: 1, NotificationDate: "2025-02-25"},
		{Type: event.TypePartApproved, PartID: "p1", Timestamp: 2},
		{Type: event.TypePartReopened, PartID: "p1", Timestamp: 3},
	}
	// After reopen, neither the approval nor the old snooze survives;
	// the part is simply past its overdue gate again.
	state, err := PartState(events, "p1", calendar.MustDate("2025-02-17"), time.Date(2025, 2, 19, 12, 0, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateOverdue, state)
}

func TestPartState_TimezoneMatters(t *testing.T) {
	cal := calendar.Default() // Europe/Stockholm
	loc, err := cal.Location()
	require.NoError(t, err)

	endDate := calendar.MustDate("2025-02-17")
	// 23:30 UTC on Feb 16 is already past the Feb 17 cutoff in Stockholm.
	state, err := PartState(nil, "p1", endDate, time.Date(2025, 2, 16, 23, 30, 0, 0, time.UTC), loc, cal)
	require.NoError(t, err)
	require.Equal(t, StateDue, state)
}

func TestPartState_MalformedSnoozeDate(t *testing.T) {
	cal, loc := utcCalendar()
	events := []event.Event{
		{Type: event.TypePartSnoozed, PartID: "p1", Timestamp: 1, NotificationDate: "garbage"},
	}
	_, err := PartState(events, "p1", calendar.MustDate("2025-02-17"), time.Date(2025, 2, 19, 0, 0, 0, 0, time.UTC), loc, cal)
	require.ErrorIs(t, err, calendar.ErrInvalidDateKey)
}
