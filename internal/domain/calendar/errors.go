package calendar

import "errors"

var (
	// ErrInvalidDateKey indicates a date string that is not YYYY-MM-DD.
	ErrInvalidDateKey = errors.New("invalid date key")
	// ErrDuplicateOverride indicates two overrides for the same date.
	ErrDuplicateOverride = errors.New("duplicate calendar override date")
	// ErrNegativeWorkingDays indicates a negative working-day count.
	ErrNegativeWorkingDays = errors.New("working day count must not be negative")
	// ErrUnknownTimezone indicates a timezone the host cannot resolve.
	ErrUnknownTimezone = errors.New("unknown timezone")
	// ErrInvalidWeekday indicates a weekend day outside 0 (Sunday) to 6 (Saturday).
	ErrInvalidWeekday = errors.New("weekday must be between 0 and 6")
	// ErrAllDaysNonWorking indicates a weekend configuration with no working days left.
	ErrAllDaysNonWorking = errors.New("weekend days cover the whole week")
)
