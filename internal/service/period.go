package service

import (
	"fmt"
	"time"

	"influence-api/internal/domain"
)

// dateOnly truncates t to its UTC calendar date. All window math in the
// aggregation core compares at date granularity; time-of-day is ignored.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// periodKey formats t into its bucket key: YYYY-MM-DD for daily, ISO-8601
// YYYY-Www for weekly (the week containing Thursday defines the year),
// YYYY-MM for monthly.
func periodKey(t time.Time, period domain.PeriodType) string {
	t = t.UTC()
	switch period {
	case domain.PeriodDaily:
		return t.Format("2006-01-02")
	case domain.PeriodWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// periodEnd returns the date-only end of the bucket containing t: the day
// itself for daily, the Sunday of the ISO week for weekly, the last day of
// the month for monthly.
func periodEnd(t time.Time, period domain.PeriodType) time.Time {
	d := dateOnly(t)
	switch period {
	case domain.PeriodDaily:
		return d
	case domain.PeriodWeekly:
		weekday := int(d.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return d.AddDate(0, 0, 7-weekday)
	default:
		return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	}
}

// inActiveWindow reports whether an acquisition at ev falls inside the
// 30-day window ending at end, inclusive on both ends, date-only comparison
func inActiveWindow(ev, end time.Time) bool {
	evDate := dateOnly(ev)
	endDate := dateOnly(end)
	windowStart := endDate.AddDate(0, 0, -activeWindowDays)
	return !evDate.Before(windowStart) && !evDate.After(endDate)
}
