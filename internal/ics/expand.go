package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "schedarr/internal/log"
	"schedarr/internal/model"
)

const defaultMaxOccurrencesPerRule = 500

// ExpandSeries turns upstream recurring show rules (weekly league nights,
// regular broadcast slots) into concrete schedule items inside
// [rangeStart, rangeEnd], in the display timezone.
//
// A rule whose RRULE fails to parse is logged and skipped; the rest of the
// schedule still renders. A per-rule occurrence cap guards against
// pathological rules.
func ExpandSeries(rules []model.SeriesRule, rangeStart, rangeEnd time.Time, loc *time.Location) []model.ScheduledItem {
	if rangeEnd.Before(rangeStart) || loc == nil {
		return nil
	}

	out := make([]model.ScheduledItem, 0)

	for _, rule := range rules {
		r, err := rrule.StrToRRule(rule.RRule)
		if err != nil {
			appLog.Error("series: failed to parse rrule", err, "id", rule.ID, "rrule", rule.RRule)
			continue
		}

		anchor := rule.Anchor.In(loc)
		r.DTStart(anchor)

		occTimes := r.Between(rangeStart.In(loc), rangeEnd.In(loc), true)
		if len(occTimes) > defaultMaxOccurrencesPerRule {
			appLog.Error("series: occurrence cap hit", errors.New("max occurrences reached"),
				"id", rule.ID, "cap", defaultMaxOccurrencesPerRule)
			occTimes = occTimes[:defaultMaxOccurrencesPerRule]
		}

		dur := time.Duration(rule.DurationMinutes) * time.Minute
		for _, start := range occTimes {
			start = start.In(loc)
			out = append(out, model.ScheduledItem{
				ID:           rule.ID,
				Kind:         model.KindSeries,
				Title:        rule.Title,
				Start:        start,
				End:          start.Add(dur),
				Organization: rule.Organization,
				Broadcast:    rule.Broadcast,
			})
		}
	}

	return out
}
