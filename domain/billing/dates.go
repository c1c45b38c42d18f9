package billing

import "time"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
// Day 0 of the following month is the last day of this one.
func DaysInMonth(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// AnchorDate returns midnight of the given day in the given month, clamping day
// to the last day of that month. Anchor 31 in February yields Feb 28 (or 29),
// never a date in March. Months outside 1..12 roll into adjacent years.
func AnchorDate(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	year, month = first.Year(), first.Month()

	if day < 1 {
		day = 1
	}
	if last := DaysInMonth(year, month, loc); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// DaysBetween returns the calendar days from from's day to to's day, read in
// from's location. Time of day and DST shifts do not matter; never negative.
func DaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.In(from.Location()).Date()
	days := int(time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Sub(time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)) / (24 * time.Hour))
	if days < 0 {
		return 0
	}
	return days
}
