package schedule

import (
	"math"
	"time"
)

// DateKeyLayout is the civil-date key format used for buckets and query
// parameters.
const DateKeyLayout = "2006-01-02"

// DateKey formats t's civil date in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// ComputeWeekDays returns the 7 consecutive civil dates of the Sunday-start
// week offsetWeeks away from the week containing ref, as local midnights in
// loc.
//
// The day-of-week is taken from ref's civil date in loc, not in the process
// local zone; 02:00 UTC can still be the previous evening in a US timezone
// and must land in that week. Day stepping uses calendar arithmetic
// (AddDate), so DST transitions never shift the sequence off midnight.
func ComputeWeekDays(ref time.Time, offsetWeeks int, loc *time.Location) [7]time.Time {
	local := ref.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	sunday := day.AddDate(0, 0, -int(day.Weekday()))
	first := sunday.AddDate(0, 0, offsetWeeks*7)

	var days [7]time.Time
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// WeekStart returns the local midnight of the Sunday on or before t's civil
// date in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// GoToDate computes the integer week offset that makes target's week the
// visible one: ComputeWeekDays(now, GoToDate(target, now, loc), loc) always
// contains target's civil date.
//
// The division rounds to the nearest whole week instead of truncating; a
// Sunday boundary under a DST transition yields 167- or 169-hour weeks, and
// truncation would select the neighboring week.
func GoToDate(target, now time.Time, loc *time.Location) int {
	ts := WeekStart(target, loc)
	ns := WeekStart(now, loc)
	return int(math.Round(ts.Sub(ns).Hours() / (24 * 7)))
}
