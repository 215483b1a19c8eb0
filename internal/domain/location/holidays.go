// internal/domain/location/holidays.go
package location

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const isoDate = "2006-01-02"

// HolidayCalendar decides which weekdays are not business days
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
	// Covers reports whether the calendar has data for the year at all
	Covers(year int) bool
}

// StaticCalendar is a fixed set of ISO dates grouped by year
type StaticCalendar struct {
	dates map[string]struct{}
	years map[int]struct{}
}

// NewStaticCalendar builds a calendar from ISO dates (YYYY-MM-DD)
func NewStaticCalendar(dates ...string) (*StaticCalendar, error) {
	c := &StaticCalendar{
		dates: make(map[string]struct{}, len(dates)),
		years: map[int]struct{}{},
	}
	for _, d := range dates {
		t, err := time.Parse(isoDate, d)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", d, err)
		}
		c.dates[d] = struct{}{}
		c.years[t.Year()] = struct{}{}
	}
	return c, nil
}

// IsHoliday checks the calendar date of t in t's own location
func (c *StaticCalendar) IsHoliday(date time.Time) bool {
	_, ok := c.dates[date.Format(isoDate)]
	return ok
}

// Covers reports whether any holiday of the year is known
func (c *StaticCalendar) Covers(year int) bool {
	_, ok := c.years[year]
	return ok
}

// colombianHolidays are the national holidays (festivos) after the
// Ley Emiliani moves, per year.
var colombianHolidays = map[int][]string{
	2024: {
		"2024-01-01", "2024-01-08", "2024-03-25", "2024-03-28", "2024-03-29",
		"2024-05-01", "2024-05-13", "2024-06-03", "2024-06-10", "2024-06-24",
		"2024-07-01", "2024-07-20", "2024-08-07", "2024-08-19", "2024-10-14",
		"2024-11-04", "2024-11-11", "2024-12-08", "2024-12-25",
	},
	2025: {
		"2025-01-01", "2025-01-06", "2025-03-24", "2025-04-17", "2025-04-18",
		"2025-05-01", "2025-06-02", "2025-06-23", "2025-06-30", "2025-07-20",
		"2025-08-07", "2025-08-18", "2025-10-13", "2025-11-03", "2025-11-17",
		"2025-12-08", "2025-12-25",
	},
	2026: {
		"2026-01-01", "2026-01-12", "2026-03-23", "2026-04-02", "2026-04-03",
		"2026-05-01", "2026-05-18", "2026-06-08", "2026-06-15", "2026-06-29",
		"2026-07-20", "2026-08-07", "2026-08-17", "2026-10-12", "2026-11-02",
		"2026-11-16", "2026-12-08", "2026-12-25",
	},
	2027: {
		"2027-01-01", "2027-01-11", "2027-03-22", "2027-03-25", "2027-03-26",
		"2027-05-01", "2027-05-10", "2027-05-31", "2027-06-07", "2027-07-05",
		"2027-07-20", "2027-08-07", "2027-08-16", "2027-10-18", "2027-11-01",
		"2027-11-15", "2027-12-08", "2027-12-25",
	},
}

// DefaultCalendar returns the built-in Colombian holiday calendar
func DefaultCalendar() *StaticCalendar {
	var all []string
	for _, dates := range colombianHolidays {
		all = append(all, dates...)
	}
	c, err := NewStaticCalendar(all...)
	if err != nil {
		panic(err)
	}
	return c
}

type holidaysFile struct {
	Holidays map[string][]string `yaml:"holidays"`
}

// LoadCalendarFile reads holidays from YAML keyed by year:
//
//	holidays:
//	  "2028": ["2028-01-01", "2028-01-10"]
func LoadCalendarFile(path string) (*StaticCalendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holidays file: %w", err)
	}

	var f holidaysFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse holidays file: %w", err)
	}

	var all []string
	for year, dates := range f.Holidays {
		y, err := strconv.Atoi(year)
		if err != nil {
			return nil, fmt.Errorf("invalid year key %q in holidays file", year)
		}
		for _, d := range dates {
			t, err := time.Parse(isoDate, d)
			if err != nil {
				return nil, fmt.Errorf("invalid holiday date %q: %w", d, err)
			}
			if t.Year() != y {
				return nil, fmt.Errorf("holiday %s listed under year %d", d, y)
			}
		}
		all = append(all, dates...)
	}
	return NewStaticCalendar(all...)
}
