package calendar

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// Date is a date-only value, the parsed form of a YYYY-MM-DD date key.
// The zero value is not a valid date.
type Date struct {
	year  int
	month time.Month
	day   int
}

// ParseDate parses a date key in YYYY-MM-DD form. Malformed keys fail
// rather than normalizing into a different date.
func ParseDate(key string) (Date, error) {
	t, err := time.Parse(dateKeyLayout, key)
	if err != nil || t.Format(dateKeyLayout) != key {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}, nil
}

// MustDate parses a date key and panics on failure. Intended for fixtures.
func MustDate(key string) Date {
	d, err := ParseDate(key)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

func (d Date) time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// Key returns the YYYY-MM-DD form of the date.
func (d Date) Key() string {
	return d.time().Format(dateKeyLayout)
}

func (d Date) String() string {
	return d.Key()
}

// AddDays returns the date n calendar days after d (before, for negative n).
func (d Date) AddDays(n int) Date {
	t := d.time().AddDate(0, 0, n)
	return Date{year: t.Year(), month: t.Month(), day: t.Day()}
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.time().Weekday()
}

// Compare orders two dates: -1 if d is earlier, 0 if equal, 1 if later.
func (d Date) Compare(o Date) int {
	switch {
	case d.year != o.year:
		return sign(d.year - o.year)
	case d.month != o.month:
		return sign(int(d.month) - int(o.month))
	default:
		return sign(d.day - o.day)
	}
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// IsZero reports whether d is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Cutoff returns the instant the date counts as reached in loc: 00:01:00
// local time. One minute past midnight keeps exact-midnight timestamps
// unambiguously before the cutoff across DST shifts.
func (d Date) Cutoff(loc *time.Location) time.Time {
	return time.Date(d.year, d.month, d.day, 0, 1, 0, 0, loc)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
