// Package calendar implements the working-day engine: weekend and holiday
// aware date arithmetic with per-date manual overrides. All functions are
// pure; the calendar configuration is the only input state.
package calendar

import (
	"fmt"
	"time"
)

// Calendar describes the working-day configuration of a project.
type Calendar struct {
	// Timezone is the IANA name used to anchor date cutoffs.
	Timezone string
	// Country selects the national holiday rule set.
	Country string
	// WeekendDays lists the weekdays that are never working days.
	WeekendDays []time.Weekday
	// Overrides force individual dates to be working or non-working.
	Overrides []Override
}

// Override forces a single date's working status, beating both the
// weekend configuration and computed holidays.
type Override struct {
	Date         Date
	IsWorkingDay bool
	Label        string
	Note         string
}

// Default returns the standard calendar: Stockholm time, Swedish
// holidays, Saturday and Sunday weekends, no overrides.
func Default() Calendar {
	return Calendar{
		Timezone:    "Europe/Stockholm",
		Country:     CountrySweden,
		WeekendDays: []time.Weekday{time.Saturday, time.Sunday},
	}
}

// Validate checks the calendar configuration. Duplicate override dates
// and weekend sets covering the whole week are rejected.
func (c Calendar) Validate() error {
	seen := make(map[Date]bool, len(c.Overrides))
	for _, ov := range c.Overrides {
		if ov.Date.IsZero() {
			return fmt.Errorf("%w: override without date", ErrInvalidDateKey)
		}
		if seen[ov.Date] {
			return fmt.Errorf("%w: %s", ErrDuplicateOverride, ov.Date)
		}
		seen[ov.Date] = true
	}
	weekend := make(map[time.Weekday]bool, len(c.WeekendDays))
	for _, wd := range c.WeekendDays {
		if wd < time.Sunday || wd > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, wd)
		}
		weekend[wd] = true
	}
	if len(weekend) == 7 {
		return ErrAllDaysNonWorking
	}
	return nil
}

// Location resolves the calendar's timezone.
func (c Calendar) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTimezone, c.Timezone)
	}
	return loc, nil
}

// IsWorkingDay reports whether d is a working day. An override for the
// exact date wins outright; otherwise national holidays and then the
// weekend configuration exclude the day.
func (c Calendar) IsWorkingDay(d Date) bool {
	if ov, ok := c.overrideFor(d); ok {
		return ov.IsWorkingDay
	}
	if isHoliday(c.Country, d) {
		return false
	}
	for _, wd := range c.WeekendDays {
		if d.Weekday() == wd {
			return false
		}
	}
	return true
}

// NextWorkingDay returns d if it is a working day, else the next
// working date after it.
func (c Calendar) NextWorkingDay(d Date) Date {
	for !c.IsWorkingDay(d) {
		d = d.AddDays(1)
	}
	return d
}

// FirstWorkingDayAfter returns the first working day strictly after d.
func (c Calendar) FirstWorkingDayAfter(d Date) Date {
	return c.NextWorkingDay(d.AddDays(1))
}

// AddWorkingDays advances one calendar day at a time from start until n
// working days have been consumed. n = 0 returns start unchanged whether
// or not start itself is a working day. Negative n is rejected.
func (c Calendar) AddWorkingDays(start Date, n int) (Date, error) {
	if n < 0 {
		return Date{}, fmt.Errorf("%w: %d", ErrNegativeWorkingDays, n)
	}
	d := start
	for remaining := n; remaining > 0; {
		d = d.AddDays(1)
		if c.IsWorkingDay(d) {
			remaining--
		}
	}
	return d, nil
}

// DiffWorkingDays counts working days in [start, endExclusive), walking
// forward. If endExclusive is earlier than start the count over the
// reversed range is negated; equal dates yield 0.
func (c Calendar) DiffWorkingDays(start, endExclusive Date) int {
	cmp := start.Compare(endExclusive)
	if cmp == 0 {
		return 0
	}
	if cmp > 0 {
		return -c.DiffWorkingDays(endExclusive, start)
	}
	count := 0
	for d := start; d.Before(endExclusive); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

func (c Calendar) overrideFor(d Date) (Override, bool) {
	for _, ov := range c.Overrides {
		if ov.Date == d {
			return ov, true
		}
	}
	return Override{}, false
}
