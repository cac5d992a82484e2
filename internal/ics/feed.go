package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedarr/internal/model"
)

// BuildCalendar renders schedule items as a VCALENDAR subscription feed, the
// same shape media managers expose for external calendar apps. Items without
// a usable start time are left out. now stamps DTSTAMP and is injected so
// feed output is deterministic under test.
func BuildCalendar(items []model.ScheduledItem, now time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//schedarr//schedule feed//EN")

	for _, it := range items {
		if it.Start.IsZero() {
			continue
		}

		// Kind is part of the UID: an event and a recording may share a
		// numeric id.
		uid := fmt.Sprintf("%s-%d-%d@schedarr", it.Kind, it.ID, it.Start.Unix())
		ev := cal.AddEvent(uid)
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(it.Start.UTC())
		ev.SetEndAt(it.Start.UTC().Add(it.Duration()))
		ev.SetSummary(feedSummary(it))

		if it.Broadcast != "" {
			ev.SetLocation(it.Broadcast)
		}
		if it.Kind == model.KindRecording && it.Status != "" {
			ev.SetDescription(fmt.Sprintf("DVR status: %s", it.Status))
		}
	}

	return cal
}

func feedSummary(it model.ScheduledItem) string {
	if it.Organization != "" {
		return it.Organization + ": " + it.Title
	}
	return it.Title
}
