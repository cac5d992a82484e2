package store

import (
	"context"
	"fmt"
	"time"

	"schedarr/internal/ics"
	appLog "schedarr/internal/log"
	"schedarr/internal/model"
	"schedarr/internal/schedule"
)

// backfillDays is how far behind the current week each refresh reaches, so
// negative week offsets have data without a refetch.
const backfillDays = 28

// Upstream is the slice of the backend client the refresher needs.
type Upstream interface {
	Events(ctx context.Context, start, end time.Time) ([]model.Event, int, error)
	Recordings(ctx context.Context) ([]model.Recording, int, error)
	Series(ctx context.Context) ([]model.SeriesRule, error)
}

// Refresher drives the fetch → expand → commit pipeline. Both the cron loop
// and the manual refresh endpoint funnel through Refresh, so every attempt
// is sequenced by the store.
type Refresher struct {
	Client      Upstream
	Store       *Store
	Loc         *time.Location
	HorizonDays int

	// Now is the injected clock; nil means time.Now.
	Now func() time.Time
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Refresh fetches a new snapshot and commits it unless a newer refresh
// began in the meantime. On upstream failure the store keeps its last
// committed snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	now := r.now()
	seq := r.Store.Begin()

	horizon := r.HorizonDays
	if horizon <= 0 {
		horizon = 28
	}
	rangeStart := schedule.WeekStart(now, r.Loc).AddDate(0, 0, -backfillDays)
	rangeEnd := now.AddDate(0, 0, horizon)

	events, skippedEvents, err := r.Client.Events(ctx, rangeStart, rangeEnd)
	if err != nil {
		return fmt.Errorf("refresh events: %w", err)
	}

	recordings, skippedRecordings, err := r.Client.Recordings(ctx)
	if err != nil {
		return fmt.Errorf("refresh recordings: %w", err)
	}

	// Series rules are an enrichment; a failure here should not cost us a
	// fresh events/recordings snapshot.
	rules, err := r.Client.Series(ctx)
	if err != nil {
		appLog.Error("refresh: series fetch failed; continuing without rules", err)
		rules = nil
	}
	occurrences := ics.ExpandSeries(rules, rangeStart, rangeEnd, r.Loc)

	snap := Snapshot{
		Events:      events,
		Recordings:  recordings,
		Occurrences: occurrences,
		Skipped:     skippedEvents + skippedRecordings,
		FetchedAt:   now,
	}

	if !r.Store.Commit(seq, snap) {
		appLog.Info("refresh superseded by a newer attempt", "seq", seq)
		return nil
	}

	appLog.Info("refresh committed",
		"seq", seq,
		"events", len(events),
		"recordings", len(recordings),
		"series_occurrences", len(occurrences),
		"skipped", snap.Skipped,
	)
	return nil
}
