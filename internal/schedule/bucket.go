package schedule

import (
	"sort"
	"time"

	"schedarr/internal/model"
)

// Bucket groups items into per-civil-date buckets for the given week.
//
// Rules:
//   - The bucket key is the civil date of Start in loc ("2006-01-02"); End
//     never influences keying, so a card running past midnight stays on the
//     day it starts.
//   - Filters are applied before bucketing.
//   - Items with a zero Start (an upstream timestamp that failed to parse)
//     are skipped and counted in the second return value.
//   - Items starting outside the 7 given days are dropped silently.
//   - Each bucket is sorted ascending by Start, ties broken by ID.
//   - Days with no items have no map entry.
//
// The function is pure: it never mutates its inputs and holds no state
// across calls.
func Bucket(items []model.ScheduledItem, weekDays [7]time.Time, filters FilterState, loc *time.Location) (map[string][]model.ScheduledItem, int) {
	inWeek := make(map[string]bool, len(weekDays))
	for _, d := range weekDays {
		inWeek[DateKey(d)] = true
	}

	buckets := make(map[string][]model.ScheduledItem)
	skipped := 0

	for _, it := range items {
		if it.Start.IsZero() {
			skipped++
			continue
		}
		if !filters.Matches(it) {
			continue
		}
		key := DateKey(it.Start.In(loc))
		if !inWeek[key] {
			continue
		}
		buckets[key] = append(buckets[key], it)
	}

	for key := range buckets {
		b := buckets[key]
		sort.Slice(b, func(i, j int) bool {
			if !b[i].Start.Equal(b[j].Start) {
				return b[i].Start.Before(b[j].Start)
			}
			return b[i].ID < b[j].ID
		})
	}

	return buckets, skipped
}
