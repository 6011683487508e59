package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-17")
	require.NoError(t, err)
	require.Equal(t, "2025-02-17", d.Key())
	require.Equal(t, time.Monday, d.Weekday())
}

func TestParseDate_Malformed(t *testing.T) {
	for _, key := range []string{
		"",
		"2025-2-17",
		"17-02-2025",
		"2025-02-30",
		"2025-13-01",
		"2025-02-17T00:00:00Z",
		"not a date",
	} {
		_, err := ParseDate(key)
		require.ErrorIs(t, err, ErrInvalidDateKey, "key %q", key)
	}
}

func TestDate_AddDays(t *testing.T) {
	d := MustDate("2025-02-28")
	require.Equal(t, "2025-03-01", d.AddDays(1).Key())
	require.Equal(t, "2025-02-27", d.AddDays(-1).Key())
	require.Equal(t, "2024-02-29", MustDate("2024-02-28").AddDays(1).Key())
}

func TestDate_Compare(t *testing.T) {
	a := MustDate("2025-02-17")
	b := MustDate("2025-02-18")
	require.True(t, a.Before(b))
	require.True(t, b.After(a))
	require.Equal(t, 0, a.Compare(MustDate("2025-02-17")))
}

func TestDate_Cutoff(t *testing.T) {
	loc, err := time.LoadLocation("UTC")
	require.NoError(t, err)

	cutoff := MustDate("2025-02-17").Cutoff(loc)
	require.Equal(t, time.Date(2025, 2, 17, 0, 1, 0, 0, time.UTC), cutoff)

	// Exact midnight is before the cutoff.
	midnight := time.Date(2025, 2, 17, 0, 0, 0, 0, time.UTC)
	require.True(t, midnight.Before(cutoff))
}

func TestDateOf(t *testing.T) {
	stockholm, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	// 23:30 UTC is already the next day in Stockholm.
	instant := time.Date(2025, 2, 17, 23, 30, 0, 0, time.UTC)
	require.Equal(t, "2025-02-18", DateOf(instant.In(stockholm)).Key())
	require.Equal(t, "2025-02-17", DateOf(instant).Key())
}
