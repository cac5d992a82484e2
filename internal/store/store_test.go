package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedarr/internal/model"
)

func TestStoreEmptyBeforeFirstCommit(t *testing.T) {
	s := New()

	_, ok := s.Snapshot()
	assert.False(t, ok)
	assert.Empty(t, s.Items())
	assert.Zero(t, s.Age(time.Now()))
}

func TestCommitLastWriteWins(t *testing.T) {
	s := New()

	older := s.Begin()
	newer := s.Begin()

	// The newer attempt lands first.
	ok := s.Commit(newer, Snapshot{FetchedAt: time.Unix(200, 0)})
	require.True(t, ok)

	// The older in-flight attempt must not clobber it.
	ok = s.Commit(older, Snapshot{FetchedAt: time.Unix(100, 0)})
	assert.False(t, ok)

	snap, committed := s.Snapshot()
	require.True(t, committed)
	assert.Equal(t, time.Unix(200, 0), snap.FetchedAt)
}

func TestCommitRejectedOnceSuperseded(t *testing.T) {
	s := New()

	first := s.Begin()
	_ = s.Begin() // a newer refresh begins while first is in flight

	assert.False(t, s.Commit(first, Snapshot{}))
	_, ok := s.Snapshot()
	assert.False(t, ok, "no snapshot should have been committed")
}

func TestItemsMergesAllKinds(t *testing.T) {
	s := New()
	seq := s.Begin()

	start := time.Date(2024, 6, 12, 20, 0, 0, 0, time.UTC)
	require.True(t, s.Commit(seq, Snapshot{
		Events:      []model.Event{{ID: 1, Title: "UFC 300", Start: start}},
		Recordings:  []model.Recording{{ID: 2, Title: "rec", Start: start, Status: model.StatusScheduled}},
		Occurrences: []model.ScheduledItem{{ID: 3, Kind: model.KindSeries, Title: "weekly", Start: start}},
		FetchedAt:   start,
	}))

	items := s.Items()
	require.Len(t, items, 3)
	kinds := map[model.ItemKind]bool{}
	for _, it := range items {
		kinds[it.Kind] = true
	}
	assert.True(t, kinds[model.KindEvent])
	assert.True(t, kinds[model.KindRecording])
	assert.True(t, kinds[model.KindSeries])

	assert.Equal(t, time.Hour, s.Age(start.Add(time.Hour)))
}

type fakeUpstream struct {
	events     []model.Event
	recordings []model.Recording
	series     []model.SeriesRule
	eventsErr  error
	seriesErr  error
}

func (f *fakeUpstream) Events(_ context.Context, _, _ time.Time) ([]model.Event, int, error) {
	return f.events, 1, f.eventsErr
}

func (f *fakeUpstream) Recordings(_ context.Context) ([]model.Recording, int, error) {
	return f.recordings, 2, nil
}

func (f *fakeUpstream) Series(_ context.Context) ([]model.SeriesRule, error) {
	return f.series, f.seriesErr
}

func TestRefresherCommitsSnapshot(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	s := New()
	r := &Refresher{
		Client: &fakeUpstream{
			events: []model.Event{{ID: 1, Title: "UFC 300", Start: now.Add(48 * time.Hour)}},
			series: []model.SeriesRule{{
				ID:              5,
				Title:           "Tuesday Night Contender",
				RRule:           "FREQ=WEEKLY;BYDAY=TU",
				Anchor:          time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC),
				DurationMinutes: 120,
			}},
		},
		Store:       s,
		Loc:         time.UTC,
		HorizonDays: 14,
		Now:         func() time.Time { return now },
	}

	require.NoError(t, r.Refresh(context.Background()))

	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Len(t, snap.Events, 1)
	assert.Equal(t, 3, snap.Skipped)
	assert.Equal(t, now, snap.FetchedAt)
	assert.NotEmpty(t, snap.Occurrences, "weekly rule should expand inside the window")
}

func TestRefresherKeepsLastKnownGoodOnFailure(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	s := New()
	up := &fakeUpstream{events: []model.Event{{ID: 1, Start: now}}}
	r := &Refresher{Client: up, Store: s, Loc: time.UTC, Now: func() time.Time { return now }}

	require.NoError(t, r.Refresh(context.Background()))

	up.eventsErr = errors.New("backend down")
	err := r.Refresh(context.Background())
	assert.Error(t, err)

	snap, ok := s.Snapshot()
	require.True(t, ok, "failed refresh must not clear the snapshot")
	assert.Len(t, snap.Events, 1)
}

func TestRefresherSeriesFailureIsNotFatal(t *testing.T) {
	now := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	s := New()
	up := &fakeUpstream{
		events:    []model.Event{{ID: 1, Start: now}},
		seriesErr: errors.New("not implemented upstream"),
	}
	r := &Refresher{Client: up, Store: s, Loc: time.UTC, Now: func() time.Time { return now }}

	require.NoError(t, r.Refresh(context.Background()))
	snap, ok := s.Snapshot()
	require.True(t, ok)
	assert.Empty(t, snap.Occurrences)
	assert.Len(t, snap.Events, 1)
}
