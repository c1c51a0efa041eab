package utils

import (
	"time"
)

// AddMonthsClamped advances t by exactly n calendar months, preserving the
// day of month when the target month has enough days and clamping to the last
// day otherwise (Jan 31 + 1 month = Feb 28/29, not Mar 3).
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	firstOfTarget := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// ElapsedMonths approximates whole months between start and asOf using a
// 30-day month, matching the balance-only progress fallback. Never negative.
func ElapsedMonths(start, asOf time.Time) int {
	if asOf.Before(start) {
		return 0
	}
	days := int(asOf.Sub(start).Hours() / 24)
	return days / 30
}

// IsOverdue reports whether dueDate has passed as of asOf.
func IsOverdue(dueDate, asOf time.Time) bool {
	return dueDate.Before(asOf)
}
