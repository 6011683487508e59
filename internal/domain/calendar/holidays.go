package calendar

import "time"

// CountrySweden selects the Swedish national holiday rules.
const CountrySweden = "SE"

// holidayRules maps a country code to its holiday computation. Rules are
// fully deterministic per year; countries without a rule set have no
// computed holidays.
var holidayRules = map[string]func(year int) []Date{
	CountrySweden: swedishHolidays,
}

func isHoliday(country string, d Date) bool {
	rule, ok := holidayRules[country]
	if !ok {
		return false
	}
	for _, h := range rule(d.year) {
		if h == d {
			return true
		}
	}
	return false
}

// easterSunday computes Gregorian Easter Sunday using the
// Meeus/Jones/Butcher algorithm.
func easterSunday(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return Date{year: year, month: time.Month(month), day: day}
}

// swedishHolidays returns the Swedish public holidays for a year, plus
// Christmas Eve and New Year's Eve which are non-working in practice.
func swedishHolidays(year int) []Date {
	easter := easterSunday(year)
	return []Date{
		{year: year, month: time.January, day: 1},   // New Year's Day
		{year: year, month: time.January, day: 6},   // Epiphany
		{year: year, month: time.May, day: 1},       // May Day
		{year: year, month: time.June, day: 6},      // National Day
		{year: year, month: time.December, day: 24}, // Christmas Eve
		{year: year, month: time.December, day: 25}, // Christmas Day
		{year: year, month: time.December, day: 26}, // Second Day of Christmas
		{year: year, month: time.December, day: 31}, // New Year's Eve
		easter.AddDays(-2),                          // Good Friday
		easter,                                      // Easter Sunday
		easter.AddDays(1),                           // Easter Monday
		easter.AddDays(39),                          // Ascension Day
		easter.AddDays(49),                          // Pentecost
		saturdayIn(Date{year: year, month: time.June, day: 20},
			Date{year: year, month: time.June, day: 26}), // Midsummer Day
		saturdayIn(Date{year: year, month: time.October, day: 31},
			Date{year: year, month: time.November, day: 6}), // All Saints' Day
	}
}

// saturdayIn returns the Saturday within the inclusive date range. Every
// seven-day range contains exactly one.
func saturdayIn(from, to Date) Date {
	for d := from; !d.After(to); d = d.AddDays(1) {
		if d.Weekday() == time.Saturday {
			return d
		}
	}
	return to
}
