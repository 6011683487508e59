package calendar

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// calendarFile mirrors the on-disk YAML document.
type calendarFile struct {
	Timezone    string          `yaml:"timezone"`
	Country     string          `yaml:"country"`
	WeekendDays []int           `yaml:"weekend_days"`
	Overrides   []overrideEntry `yaml:"overrides"`
}

type overrideEntry struct {
	Date         string `yaml:"date"`
	IsWorkingDay bool   `yaml:"is_working_day"`
	Label        string `yaml:"label"`
	Note         string `yaml:"note"`
}

// Parse reads a calendar from YAML, starting from Default for any field
// the document omits, and validates the result.
func Parse(data []byte) (Calendar, error) {
	var file calendarFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Calendar{}, fmt.Errorf("parse calendar: %w", err)
	}

	cal := Default()
	if file.Timezone != "" {
		cal.Timezone = file.Timezone
	}
	if file.Country != "" {
		cal.Country = file.Country
	}
	if file.WeekendDays != nil {
		cal.WeekendDays = make([]time.Weekday, 0, len(file.WeekendDays))
		for _, wd := range file.WeekendDays {
			cal.WeekendDays = append(cal.WeekendDays, time.Weekday(wd))
		}
	}
	for _, entry := range file.Overrides {
		date, err := ParseDate(entry.Date)
		if err != nil {
			return Calendar{}, err
		}
		cal.Overrides = append(cal.Overrides, Override{
			Date:         date,
			IsWorkingDay: entry.IsWorkingDay,
			Label:        entry.Label,
			Note:         entry.Note,
		})
	}

	if err := cal.Validate(); err != nil {
		return Calendar{}, err
	}
	if _, err := cal.Location(); err != nil {
		return Calendar{}, err
	}
	return cal, nil
}

// LoadFile reads a calendar from a YAML file.
func LoadFile(path string) (Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Calendar{}, fmt.Errorf("read calendar file: %w", err)
	}
	return Parse(data)
}
