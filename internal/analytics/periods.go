package analytics

import (
	"fmt"
	"time"
)

// Period granularities for chronic-issue bucketing.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// NormalizePeriod folds any unrecognized granularity to PeriodWeek.
func NormalizePeriod(period string) string {
	switch period {
	case PeriodWeek, PeriodMonth:
		return period
	default:
		return PeriodWeek
	}
}

// PeriodLabel returns the calendar bucket label for a date, e.g. "2026-W05"
// for weeks or "2026-01" for months. Labels sort chronologically as strings
// within a year, which keeps period sets deterministic.
func PeriodLabel(t time.Time, period string) string {
	switch NormalizePeriod(period) {
	case PeriodMonth:
		return t.Format("2006-01")
	default:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	}
}

// PeriodStart snaps a date to the beginning of its calendar bucket:
// the first of the month, or Monday for weeks.
func PeriodStart(t time.Time, period string) time.Time {
	switch NormalizePeriod(period) {
	case PeriodMonth:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		weekday := int(t.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday -> 7
		}
		return time.Date(t.Year(), t.Month(), t.Day()-(weekday-1), 0, 0, 0, 0, t.Location())
	}
}
