package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedarr/internal/model"
)

func item(id int64, start time.Time, org string) model.ScheduledItem {
	return model.ScheduledItem{
		ID:           id,
		Kind:         model.KindEvent,
		Title:        "card",
		Start:        start,
		End:          start.Add(3 * time.Hour),
		Organization: org,
	}
}

func TestBucketUsesCivilDateOfDisplayTimezone(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	ref := time.Date(2024, 3, 10, 1, 30, 0, 0, time.UTC)
	days := ComputeWeekDays(ref, 0, loc)

	// 01:30 UTC on March 10 is 20:30 on March 9 in New York (EST).
	items := []model.ScheduledItem{item(1, ref, "UFC")}

	buckets, skipped := Bucket(items, days, FilterState{}, loc)
	require.Zero(t, skipped)
	require.Len(t, buckets, 1)
	assert.Len(t, buckets["2024-03-09"], 1)
	assert.NotContains(t, buckets, "2024-03-10")
}

func TestBucketKeyingIgnoresDuration(t *testing.T) {
	loc := time.UTC
	start := time.Date(2024, 6, 12, 22, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(start, 0, loc)

	short := item(1, start, "UFC")
	long := item(2, start, "UFC")
	long.End = start.Add(6 * time.Hour) // crosses midnight
	inverted := item(3, start, "UFC")
	inverted.End = start.Add(-time.Hour) // bad data, still displayed

	buckets, skipped := Bucket([]model.ScheduledItem{short, long, inverted}, days, FilterState{}, loc)
	require.Zero(t, skipped)
	require.Len(t, buckets["2024-06-12"], 3)
	assert.Zero(t, inverted.Duration())
}

func TestBucketSortsByStartThenID(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	items := []model.ScheduledItem{
		item(9, day.Add(20*time.Hour), "UFC"),
		item(3, day.Add(18*time.Hour), "UFC"),
		item(2, day.Add(20*time.Hour), "UFC"),
	}

	buckets, _ := Bucket(items, days, FilterState{}, loc)
	b := buckets["2024-06-12"]
	require.Len(t, b, 3)
	assert.Equal(t, int64(3), b[0].ID)
	assert.Equal(t, int64(2), b[1].ID)
	assert.Equal(t, int64(9), b[2].ID)

	for i := 1; i < len(b); i++ {
		assert.False(t, b[i].Start.Before(b[i-1].Start))
	}
}

func TestBucketOrganizationFilterIsExact(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	items := []model.ScheduledItem{
		item(1, day.Add(12*time.Hour), "Fighting"),
		item(2, day.Add(13*time.Hour), "Soccer"),
		item(3, day.AddDate(0, 0, 2), "Soccer"),
		item(4, day.Add(14*time.Hour), "fighting"), // case-sensitive: excluded
	}

	buckets, _ := Bucket(items, days, FilterState{Organization: "Fighting"}, loc)
	require.Len(t, buckets, 1)
	require.Len(t, buckets["2024-06-12"], 1)
	assert.Equal(t, int64(1), buckets["2024-06-12"][0].ID)

	// "all" disables the filter.
	buckets, _ = Bucket(items, days, FilterState{Organization: FilterAll}, loc)
	assert.Len(t, buckets["2024-06-12"], 3)
}

func TestBucketFilterMonotonic(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	items := make([]model.ScheduledItem, 0, 14)
	for i := int64(0); i < 14; i++ {
		it := item(i, day.Add(time.Duration(i*11)*time.Hour), "UFC")
		if i%3 == 0 {
			it.Organization = "PFL"
		}
		if i%2 == 0 {
			it.Broadcast = "ESPN"
		}
		items = append(items, it)
	}

	count := func(f FilterState) int {
		buckets, _ := Bucket(items, days, f, loc)
		n := 0
		for _, b := range buckets {
			n += len(b)
		}
		return n
	}

	base := count(FilterState{})
	org := count(FilterState{Organization: "UFC"})
	orgBroadcast := count(FilterState{Organization: "UFC", BroadcastOnly: true})

	assert.LessOrEqual(t, org, base)
	assert.LessOrEqual(t, orgBroadcast, org)
}

func TestBucketSkipsUnparsedTimestamps(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	bad := model.ScheduledItem{ID: 1, Kind: model.KindEvent, Title: "no start"}
	good := item(2, day.Add(10*time.Hour), "UFC")

	buckets, skipped := Bucket([]model.ScheduledItem{bad, good}, days, FilterState{}, loc)
	assert.Equal(t, 1, skipped)
	assert.Len(t, buckets["2024-06-12"], 1)
}

func TestBucketEmptyDaysAbsent(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	buckets, _ := Bucket([]model.ScheduledItem{item(1, day.Add(time.Hour), "UFC")}, days, FilterState{}, loc)
	assert.Len(t, buckets, 1)
	assert.NotContains(t, buckets, "2024-06-13")

	// Items outside the visible week are dropped, not bucketed elsewhere.
	outside := item(2, day.AddDate(0, 0, 10), "UFC")
	buckets, skipped := Bucket([]model.ScheduledItem{outside}, days, FilterState{}, loc)
	assert.Empty(t, buckets)
	assert.Zero(t, skipped)
}

func TestBucketStatusFilterOnlyAffectsRecordings(t *testing.T) {
	loc := time.UTC
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	days := ComputeWeekDays(day, 0, loc)

	rec := model.Recording{
		ID:     5,
		Title:  "rec",
		Start:  day.Add(9 * time.Hour),
		End:    day.Add(12 * time.Hour),
		Status: model.StatusFailed,
	}.ScheduledItem()
	ev := item(6, day.Add(10*time.Hour), "UFC")

	f := FilterState{Statuses: []model.RecordingStatus{model.StatusScheduled, model.StatusRecording}}
	buckets, _ := Bucket([]model.ScheduledItem{rec, ev}, days, f, loc)
	require.Len(t, buckets["2024-06-12"], 1)
	assert.Equal(t, model.KindEvent, buckets["2024-06-12"][0].Kind)

	f.Statuses = []model.RecordingStatus{model.StatusFailed}
	buckets, _ = Bucket([]model.ScheduledItem{rec, ev}, days, f, loc)
	assert.Len(t, buckets["2024-06-12"], 2)
}
