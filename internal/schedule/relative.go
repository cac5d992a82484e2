package schedule

import (
	"fmt"
	"time"
)

// RelativeLabel renders ts relative to now as "Today", "Tomorrow",
// "In N days" or "N days ago".
//
// The difference is computed between the two civil dates in loc, never from
// raw elapsed duration: a card 5 minutes after midnight is "Tomorrow" even
// though it is less than a day away, and one 23 hours out that stays on
// today's date is still "Today".
func RelativeLabel(ts, now time.Time, loc *time.Location) string {
	d := civilDaysBetween(now, ts, loc)
	switch {
	case d < 0:
		return fmt.Sprintf("%d days ago", -d)
	case d == 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %d days", d)
	}
}

// ShortDate formats ts's civil date in loc for list headers, e.g.
// "Sat, Mar 9".
func ShortDate(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format("Mon, Jan 2")
}

// TimeOfDay formats ts's wall-clock time in loc, e.g. "8:30 PM".
func TimeOfDay(ts time.Time, loc *time.Location) string {
	return ts.In(loc).Format("3:04 PM")
}

// civilDaysBetween counts whole calendar days from from's civil date to to's
// civil date, both read in loc. Re-anchoring both dates at UTC midnight
// makes the subtraction exact regardless of DST offsets in loc.
func civilDaysBetween(from, to time.Time, loc *time.Location) int {
	f := from.In(loc)
	t := to.In(loc)
	fu := time.Date(f.Year(), f.Month(), f.Day(), 0, 0, 0, 0, time.UTC)
	tu := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(tu.Sub(fu).Hours() / 24)
}
