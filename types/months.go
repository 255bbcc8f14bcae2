package types

import "time"

// AddMonths moves t by n calendar months, clamping the day to the end of the
// target month (Mar 31 - 1 month = Feb 28/29), so month-end series line up.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateKey identifies a calendar day independent of location and clock.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}
