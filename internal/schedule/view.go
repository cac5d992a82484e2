package schedule

import (
	"time"

	"schedarr/internal/model"
)

// ItemView is the JSON-facing projection of a scheduled item with its
// display strings precomputed in the requested timezone.
type ItemView struct {
	ID              int64                 `json:"id"`
	Kind            model.ItemKind        `json:"kind"`
	Title           string                `json:"title"`
	Organization    string                `json:"organization,omitempty"`
	Sport           string                `json:"sport,omitempty"`
	Broadcast       string                `json:"broadcast,omitempty"`
	Status          model.RecordingStatus `json:"status,omitempty"`
	Monitored       bool                  `json:"monitored,omitempty"`
	HasFile         bool                  `json:"hasFile,omitempty"`
	Start           time.Time             `json:"start"`
	End             time.Time             `json:"end"`
	StartTime       string                `json:"startTime"`
	DurationMinutes int                   `json:"durationMinutes"`
	Relative        string                `json:"relative"`
}

// DayView is one column of the weekly grid.
type DayView struct {
	Date      string     `json:"date"`
	ShortDate string     `json:"shortDate"`
	Weekday   string     `json:"weekday"`
	Relative  string     `json:"relative"`
	IsToday   bool       `json:"isToday"`
	Items     []ItemView `json:"items"`
}

// WeekView is the complete view model for one week of the schedule.
type WeekView struct {
	Offset   int        `json:"offset"`
	Timezone string     `json:"timezone"`
	Days     [7]DayView `json:"days"`
	Total    int        `json:"total"`
	Skipped  int        `json:"skipped,omitempty"`
}

// BuildWeekView assembles the full week view model: window computation,
// filtering, bucketing and display formatting in one pass. now is explicit
// so callers (and tests) control the clock.
func BuildWeekView(items []model.ScheduledItem, now time.Time, offset int, filters FilterState, loc *time.Location) WeekView {
	days := ComputeWeekDays(now, offset, loc)
	buckets, skipped := Bucket(items, days, filters, loc)
	todayKey := DateKey(now.In(loc))

	view := WeekView{
		Offset:   offset,
		Timezone: loc.String(),
		Skipped:  skipped,
	}

	for i, day := range days {
		key := DateKey(day)
		dv := DayView{
			Date:      key,
			ShortDate: ShortDate(day, loc),
			Weekday:   day.Format("Monday"),
			Relative:  RelativeLabel(day, now, loc),
			IsToday:   key == todayKey,
			Items:     []ItemView{},
		}
		for _, it := range buckets[key] {
			dv.Items = append(dv.Items, newItemView(it, now, loc))
		}
		view.Total += len(dv.Items)
		view.Days[i] = dv
	}

	return view
}

func newItemView(it model.ScheduledItem, now time.Time, loc *time.Location) ItemView {
	return ItemView{
		ID:              it.ID,
		Kind:            it.Kind,
		Title:           it.Title,
		Organization:    it.Organization,
		Sport:           it.Sport,
		Broadcast:       it.Broadcast,
		Status:          it.Status,
		Monitored:       it.Monitored,
		HasFile:         it.HasFile,
		Start:           it.Start,
		End:             it.End,
		StartTime:       TimeOfDay(it.Start, loc),
		DurationMinutes: int(it.Duration().Minutes()),
		Relative:        RelativeLabel(it.Start, now, loc),
	}
}
