package sportarr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	appLog "schedarr/internal/log"
	"schedarr/internal/model"
)

// Wire shapes. Timestamps arrive as RFC3339 strings and are parsed
// leniently: a record whose scheduledStart does not parse is dropped and
// counted rather than failing the whole response.

type eventDTO struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Organization   string          `json:"organization"`
	Sport          string          `json:"sport"`
	ScheduledStart string          `json:"scheduledStart"`
	ScheduledEnd   string          `json:"scheduledEnd"`
	Broadcast      string          `json:"broadcast"`
	Monitored      bool            `json:"monitored"`
	HasFile        bool            `json:"hasFile"`
	Fighters       []model.Fighter `json:"fighters"`
}

type recordingDTO struct {
	ID             int64  `json:"id"`
	EventID        int64  `json:"eventId"`
	Title          string `json:"title"`
	Organization   string `json:"organization"`
	Status         string `json:"status"`
	ScheduledStart string `json:"scheduledStart"`
	ScheduledEnd   string `json:"scheduledEnd"`
	Broadcast      string `json:"broadcast"`
}

type seriesDTO struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Organization    string `json:"organization"`
	Broadcast       string `json:"broadcast"`
	RRule           string `json:"rrule"`
	Anchor          string `json:"anchor"`
	DurationMinutes int    `json:"durationMinutes"`
}

// Events lists events overlapping [start, end]. The second return value is
// the number of records dropped for unparsable timestamps.
func (c *Client) Events(ctx context.Context, start, end time.Time) ([]model.Event, int, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))

	body, _, err := c.getCached(ctx, "/api/v1/event", q)
	if err != nil {
		return nil, 0, err
	}

	var dtos []eventDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, 0, fmt.Errorf("sportarr: decode events: %w", err)
	}

	events := make([]model.Event, 0, len(dtos))
	skipped := 0
	for _, d := range dtos {
		st, ok := parseTimestamp(d.ScheduledStart)
		if !ok {
			skipped++
			appLog.Debug("event dropped: bad scheduledStart", "id", d.ID, "value", d.ScheduledStart)
			continue
		}
		en, _ := parseTimestamp(d.ScheduledEnd) // optional; zero means unknown
		events = append(events, model.Event{
			ID:           d.ID,
			Title:        d.Title,
			Organization: d.Organization,
			Sport:        d.Sport,
			Start:        st,
			End:          en,
			Broadcast:    d.Broadcast,
			Monitored:    d.Monitored,
			HasFile:      d.HasFile,
			Fighters:     d.Fighters,
		})
	}
	return events, skipped, nil
}

// Recordings lists all DVR entries. Same skip semantics as Events.
func (c *Client) Recordings(ctx context.Context) ([]model.Recording, int, error) {
	body, _, err := c.getCached(ctx, "/api/v1/recording", nil)
	if err != nil {
		return nil, 0, err
	}

	var dtos []recordingDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, 0, fmt.Errorf("sportarr: decode recordings: %w", err)
	}

	recs := make([]model.Recording, 0, len(dtos))
	skipped := 0
	for _, d := range dtos {
		st, ok := parseTimestamp(d.ScheduledStart)
		if !ok {
			skipped++
			appLog.Debug("recording dropped: bad scheduledStart", "id", d.ID, "value", d.ScheduledStart)
			continue
		}
		en, _ := parseTimestamp(d.ScheduledEnd)
		recs = append(recs, model.Recording{
			ID:           d.ID,
			EventID:      d.EventID,
			Title:        d.Title,
			Organization: d.Organization,
			Status:       model.ParseRecordingStatus(d.Status),
			Start:        st,
			End:          en,
			Broadcast:    d.Broadcast,
		})
	}
	return recs, skipped, nil
}

// Series lists recurring weekly show rules. Rules with an unparsable anchor
// are dropped; their occurrences could not be placed anyway.
func (c *Client) Series(ctx context.Context) ([]model.SeriesRule, error) {
	body, _, err := c.getCached(ctx, "/api/v1/series", nil)
	if err != nil {
		return nil, err
	}

	var dtos []seriesDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("sportarr: decode series: %w", err)
	}

	rules := make([]model.SeriesRule, 0, len(dtos))
	for _, d := range dtos {
		anchor, ok := parseTimestamp(d.Anchor)
		if !ok || d.RRule == "" {
			appLog.Debug("series rule dropped", "id", d.ID, "anchor", d.Anchor)
			continue
		}
		rules = append(rules, model.SeriesRule{
			ID:              d.ID,
			Title:           d.Title,
			Organization:    d.Organization,
			Broadcast:       d.Broadcast,
			RRule:           d.RRule,
			Anchor:          anchor,
			DurationMinutes: d.DurationMinutes,
		})
	}
	return rules, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
