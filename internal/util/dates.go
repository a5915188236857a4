package util

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// ValidateDate checks that dateStr is a real ISO calendar date (YYYY-MM-DD).
func ValidateDate(dateStr string) error {
	if dateStr == "" {
		return fmt.Errorf("date is empty")
	}
	if _, err := time.Parse(dateLayout, dateStr); err != nil {
		return fmt.Errorf("invalid date format: %w", err)
	}
	return nil
}

// MonthBounds returns the inclusive first and last calendar day of the
// given "YYYY-MM" month. The upper bound is the true last day of the month,
// not a blanket day 31.
func MonthBounds(yearMonth string) (string, string, error) {
	t, err := time.Parse(monthLayout, yearMonth)
	if err != nil {
		return "", "", fmt.Errorf("invalid month format: %w", err)
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(dateLayout), last.Format(dateLayout), nil
}

// MonthKey returns the "YYYY-MM" month of an ISO date string.
func MonthKey(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date format: %w", err)
	}
	return t.Format(monthLayout), nil
}

// YearOf returns the calendar year of an ISO date string.
func YearOf(date string) (int, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("invalid date format: %w", err)
	}
	return t.Year(), nil
}

// FullYearRange reports whether [start, end] spans exactly one calendar
// year (Jan 1 through Dec 31), returning that year when it does.
func FullYearRange(start, end string) (int, bool) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return 0, false
	}
	e, err := time.Parse(dateLayout, end)
	if err != nil {
		return 0, false
	}
	if s.Year() != e.Year() {
		return 0, false
	}
	if s.Month() != time.January || s.Day() != 1 {
		return 0, false
	}
	if e.Month() != time.December || e.Day() != 31 {
		return 0, false
	}
	return s.Year(), true
}
