package view

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
)

// Period is a statement window. Years follow the calendar year that document
// numbers are scoped by.
type Period string

const (
	PeriodThisMonth   Period = "this_month"
	PeriodLastMonth   Period = "last_month"
	PeriodThisQuarter Period = "this_quarter"
	PeriodLastQuarter Period = "last_quarter"
	PeriodYearToDate  Period = "year_to_date"
	PeriodLastYear    Period = "last_year"
	PeriodAll         Period = "all"
	PeriodCustom      Period = "custom"
)

var periods = []Period{
	PeriodThisMonth,
	PeriodLastMonth,
	PeriodThisQuarter,
	PeriodLastQuarter,
	PeriodYearToDate,
	PeriodLastYear,
	PeriodAll,
	PeriodCustom,
}

func (p Period) String() string {
	switch p {
	case PeriodThisMonth:
		return "This month"
	case PeriodLastMonth:
		return "Last month"
	case PeriodThisQuarter:
		return "This quarter"
	case PeriodLastQuarter:
		return "Last quarter"
	case PeriodYearToDate:
		return "Year to date"
	case PeriodLastYear:
		return "Last year"
	case PeriodAll:
		return "All time"
	case PeriodCustom:
		return "Custom range"
	}

	return string(p)
}

func periodOptions() []huh.Option[Period] {
	opts := make([]huh.Option[Period], len(periods))
	for i, p := range periods {
		opts[i] = huh.NewOption(p.String(), p)
	}

	return opts
}

// periodRange resolves p against now as whole days. ok is false for periods
// without fixed bounds.
func periodRange(p Period, now time.Time) (start, end time.Time, ok bool) {
	year, month := now.Year(), now.Month()
	quarter := time.Month((int(month)-1)/3*3 + 1)

	switch p {
	case PeriodThisMonth:
		start, end = firstOf(year, month), now
	case PeriodLastMonth:
		start = firstOf(year, month-1)
		end = start.AddDate(0, 1, -1)
	case PeriodThisQuarter:
		start, end = firstOf(year, quarter), now
	case PeriodLastQuarter:
		start = firstOf(year, quarter-3)
		end = start.AddDate(0, 3, -1)
	case PeriodYearToDate:
		start, end = firstOf(year, time.January), now
	case PeriodLastYear:
		start = firstOf(year-1, time.January)
		end = start.AddDate(1, 0, -1)
	default:
		return time.Time{}, time.Time{}, false
	}

	start, end = normalizeDateRange(start, end)

	return start, end, true
}

// firstOf lets time.Date carry months below January into the year before.
func firstOf(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// normalizeDateRange widens the range to whole days so records dated at any
// time of the last day are included.
func normalizeDateRange(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errors.New("use YYYY-MM-DD")
	}

	return t, nil
}

func customRange(startText, endText string) (time.Time, time.Time, error) {
	start, err := parseDay(startText)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := parseDay(endText)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	start, end = normalizeDateRange(start, end)

	return start, end, nil
}
