package model

import (
	"fmt"
	"time"
)

// PeriodKey identifies the period slot a calendar date belongs to. Two dates
// fall in the same slot iff their keys are equal.
type PeriodKey string

func KeyFor(date time.Time, period Period) PeriodKey {
	switch period {
	case PeriodWeekly:
		year, week := date.ISOWeek()
		return PeriodKey(fmt.Sprintf("%04d-W%02d", year, week))
	default:
		return PeriodKey(date.Format(DateLayout))
	}
}

// PreviousKeyFor returns the key of the period slot immediately before the
// one containing date.
func PreviousKeyFor(date time.Time, period Period) PeriodKey {
	if period == PeriodWeekly {
		return KeyFor(date.AddDate(0, 0, -7), PeriodWeekly)
	}
	return KeyFor(date.AddDate(0, 0, -1), PeriodDaily)
}

// PeriodWindow returns the inclusive [start, end] date span of the period
// slot containing date. Daily slots span a single day; weekly slots span
// Monday through Sunday of the ISO week.
func PeriodWindow(date time.Time, period Period) (time.Time, time.Time) {
	day := DateOnly(date)
	if period == PeriodWeekly {
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6)
	}
	return day, day
}

// WeekSpan counts the distinct ISO week slots touched between start and end,
// inclusive, as (endYear-startYear)*52 + (endWeek-startWeek) + 1. The flat 52
// multiplier is slightly off across ISO year boundaries with 53-week years;
// adherence denominators depend on this exact arithmetic, so it stays.
func WeekSpan(start, end time.Time) int {
	sy, sw := start.ISOWeek()
	ey, ew := end.ISOWeek()
	return (ey-sy)*52 + (ew - sw) + 1
}

// DaysBetween returns the count of calendar-day boundaries between a and b.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the storage format for log dates.
const DateLayout = "2006-01-02"
