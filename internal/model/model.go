package model

import "time"

// ItemKind distinguishes the two schedulable record types that share the
// weekly view: upcoming events and DVR recordings.
type ItemKind string

const (
	KindEvent     ItemKind = "event"
	KindRecording ItemKind = "recording"
	KindSeries    ItemKind = "series"
)

// ScheduledItem is the flat, kind-agnostic entry the schedule core operates
// on. Events and recordings are both projected into this shape before
// bucketing; the view layer never needs to know which upstream collection an
// item came from beyond Kind.
type ScheduledItem struct {
	ID    int64
	Kind  ItemKind
	Title string

	// Start / End are absolute instants. A zero Start marks an item whose
	// upstream timestamp failed to parse; the bucketer skips and counts it.
	Start time.Time
	End   time.Time

	// Organization is the classification label used for filtering
	// (e.g. "UFC", "Bellator", "PFL").
	Organization string
	Sport        string

	// Broadcast is the airing channel/network; empty when unknown. The
	// broadcast-only filter keys off this field.
	Broadcast string

	// Event-only fields.
	Monitored bool
	HasFile   bool

	// Recording-only field; empty for events.
	Status RecordingStatus
}

// Duration returns End-Start, clamped to zero. Upstream occasionally ships
// End before Start; such items still render, with a zero duration.
func (it ScheduledItem) Duration() time.Duration {
	if it.End.IsZero() || it.Start.IsZero() {
		return 0
	}
	d := it.End.Sub(it.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Event is an upstream Sportarr event (a fight card, a match broadcast).
type Event struct {
	ID           int64
	Title        string
	Organization string
	Sport        string
	Start        time.Time
	End          time.Time
	Broadcast    string
	Monitored    bool
	HasFile      bool
	Fighters     []Fighter
}

// ScheduledItem projects the event into the shape the bucketer consumes.
func (e Event) ScheduledItem() ScheduledItem {
	return ScheduledItem{
		ID:           e.ID,
		Kind:         KindEvent,
		Title:        e.Title,
		Start:        e.Start,
		End:          e.End,
		Organization: e.Organization,
		Sport:        e.Sport,
		Broadcast:    e.Broadcast,
		Monitored:    e.Monitored,
		HasFile:      e.HasFile,
	}
}

// Recording is a DVR entry tied to an event.
type Recording struct {
	ID           int64
	EventID      int64
	Title        string
	Organization string
	Start        time.Time
	End          time.Time
	Broadcast    string
	Status       RecordingStatus
}

func (r Recording) ScheduledItem() ScheduledItem {
	return ScheduledItem{
		ID:           r.ID,
		Kind:         KindRecording,
		Title:        r.Title,
		Start:        r.Start,
		End:          r.End,
		Organization: r.Organization,
		Broadcast:    r.Broadcast,
		Status:       r.Status,
	}
}

// SeriesRule is an upstream recurring weekly show definition. The rule is an
// RFC 5545 RRULE anchored at Anchor; occurrences are expanded locally into
// ScheduledItems for the visible window.
type SeriesRule struct {
	ID              int64
	Title           string
	Organization    string
	Broadcast       string
	RRule           string
	Anchor          time.Time
	DurationMinutes int
}
