package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"schedarr/internal/capture"
	"schedarr/internal/config"
	"schedarr/internal/ics"
	appLog "schedarr/internal/log"
	"schedarr/internal/model"
	"schedarr/internal/schedule"
	"schedarr/internal/store"
)

// Commander is the slice of the upstream client needed for action
// endpoints.
type Commander interface {
	TriggerCommand(ctx context.Context, name string) error
}

// Options wires a Server.
type Options struct {
	Config    *config.Config
	Store     *store.Store
	Refresher *store.Refresher
	Commander Commander
	// Location is the configured display timezone; requests may override it
	// per-call with ?tz=.
	Location *time.Location
	Debug    bool
	// Now is the injected clock; nil means time.Now.
	Now func() time.Time
}

// Server provides the schedule HTTP surface: week view models, snapshot
// passthroughs, the iCal feed, the rendered calendar page and its PNG
// capture.
type Server struct {
	cfg       *config.Config
	store     *store.Store
	refresher *store.Refresher
	commander Commander
	loc       *time.Location
	debug     bool
	now       func() time.Time
	router    chi.Router

	// captureFn is swappable so tests do not need a browser.
	captureFn func(ctx context.Context, opts capture.Options) ([]byte, error)

	// Serializing the whole snapshot into an iCal feed on every poll from a
	// calendar app is wasteful; a short TTL keeps feeds fresh enough.
	feedMu    sync.RWMutex
	feedCache *feedCache
}

type feedCache struct {
	body      []byte
	updatedAt time.Time
}

const feedCacheTTL = 30 * time.Second

// NewServer constructs a Server and registers its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		cfg:       opts.Config,
		store:     opts.Store,
		refresher: opts.Refresher,
		commander: opts.Commander,
		loc:       opts.Location,
		debug:     opts.Debug,
		now:       opts.Now,
		captureFn: capture.PagePNG,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	if s.debug {
		r.Use(s.requestLogger)
	}

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schedule/week", s.handleWeek)
		r.Get("/schedule/goto", s.handleGoto)
		r.Get("/events", s.handleEvents)
		r.Get("/recordings", s.handleRecordings)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/search", s.handleSearch)
		r.Get("/snapshot", s.handleSnapshot)
	})

	r.Get("/feed/calendar.ics", s.handleFeed)
	r.Get("/calendar", s.handleCalendarPage)

	return r
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Treat an empty username or password as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health and /calendar.
// The calendar page stays open so kiosk displays and the local snapshot
// capture can fetch it without credentials.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/calendar" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="schedarr", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger traces every request at debug level.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// weekResponse is the week view model plus snapshot freshness info.
type weekResponse struct {
	schedule.WeekView
	FetchedAt          *time.Time `json:"fetchedAt,omitempty"`
	SnapshotAgeSeconds int64      `json:"snapshotAgeSeconds"`
}

// handleWeek returns the bucketed week view model.
//
// GET /api/schedule/week?offset=-1&tz=America/New_York&organization=UFC&broadcastOnly=1&status=scheduled,recording
func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	offset, err := parseIntParam(q.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	loc, herr := s.requestLocation(q.Get("tz"))
	if herr != nil {
		writeError(w, http.StatusBadRequest, herr.Error())
		return
	}

	filters := filtersFromQuery(q)
	now := s.now()

	view := schedule.BuildWeekView(s.store.Items(), now, offset, filters, loc)

	resp := weekResponse{WeekView: view}
	if snap, ok := s.store.Snapshot(); ok {
		// Items dropped upstream for bad timestamps count as skipped too.
		resp.Skipped += snap.Skipped
		resp.FetchedAt = &snap.FetchedAt
		resp.SnapshotAgeSeconds = int64(s.store.Age(now).Seconds())
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGoto maps a target civil date to the week offset that shows it.
//
// GET /api/schedule/goto?date=2024-03-09&tz=America/New_York
func (s *Server) handleGoto(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, herr := s.requestLocation(q.Get("tz"))
	if herr != nil {
		writeError(w, http.StatusBadRequest, herr.Error())
		return
	}

	target, err := time.ParseInLocation(schedule.DateKeyLayout, q.Get("date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; want YYYY-MM-DD")
		return
	}

	offset := schedule.GoToDate(target, s.now(), loc)
	writeJSON(w, http.StatusOK, map[string]int{"offset": offset})
}

// eventDTO is the JSON passthrough shape for /api/events.
type eventDTO struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Organization string          `json:"organization,omitempty"`
	Sport        string          `json:"sport,omitempty"`
	Start        time.Time       `json:"scheduledStart"`
	End          time.Time       `json:"scheduledEnd"`
	Broadcast    string          `json:"broadcast,omitempty"`
	Monitored    bool            `json:"monitored"`
	HasFile      bool            `json:"hasFile"`
	Fighters     []model.Fighter `json:"fighters,omitempty"`
}

type recordingDTO struct {
	ID           int64                 `json:"id"`
	EventID      int64                 `json:"eventId"`
	Title        string                `json:"title"`
	Organization string                `json:"organization,omitempty"`
	Status       model.RecordingStatus `json:"status"`
	Start        time.Time             `json:"scheduledStart"`
	End          time.Time             `json:"scheduledEnd"`
	Broadcast    string                `json:"broadcast,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	snap, _ := s.store.Snapshot()
	dtos := make([]eventDTO, 0, len(snap.Events))
	for _, e := range snap.Events {
		dtos = append(dtos, eventDTO{
			ID:           e.ID,
			Title:        e.Title,
			Organization: e.Organization,
			Sport:        e.Sport,
			Start:        e.Start,
			End:          e.End,
			Broadcast:    e.Broadcast,
			Monitored:    e.Monitored,
			HasFile:      e.HasFile,
			Fighters:     e.Fighters,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleRecordings(w http.ResponseWriter, _ *http.Request) {
	snap, _ := s.store.Snapshot()
	dtos := make([]recordingDTO, 0, len(snap.Recordings))
	for _, rec := range snap.Recordings {
		dtos = append(dtos, recordingDTO{
			ID:           rec.ID,
			EventID:      rec.EventID,
			Title:        rec.Title,
			Organization: rec.Organization,
			Status:       rec.Status,
			Start:        rec.Start,
			End:          rec.End,
			Broadcast:    rec.Broadcast,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// handleRefresh triggers a sequenced upstream refresh. A refresh that lost
// the last-write-wins race still reports success; the view state is fresh
// either way.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not configured")
		return
	}
	if err := s.refresher.Refresh(r.Context()); err != nil {
		appLog.Error("manual refresh failed", err)
		writeError(w, http.StatusBadGateway, "upstream refresh failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

// handleSearch forwards an EventSearch command to the backend.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.commander == nil {
		writeError(w, http.StatusServiceUnavailable, "upstream commands not configured")
		return
	}
	if err := s.commander.TriggerCommand(r.Context(), "EventSearch"); err != nil {
		appLog.Error("event search trigger failed", err)
		writeError(w, http.StatusBadGateway, "upstream command failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// handleFeed serves the schedule as an iCal subscription feed.
func (s *Server) handleFeed(w http.ResponseWriter, _ *http.Request) {
	now := s.now()

	s.feedMu.RLock()
	fc := s.feedCache
	s.feedMu.RUnlock()
	if fc != nil && now.Sub(fc.updatedAt) < feedCacheTTL {
		writeCalendar(w, fc.body)
		return
	}

	body := []byte(ics.BuildCalendar(s.store.Items(), now).Serialize())

	s.feedMu.Lock()
	s.feedCache = &feedCache{body: body, updatedAt: now}
	s.feedMu.Unlock()

	writeCalendar(w, body)
}

// handleSnapshot renders the calendar page through headless Chromium and
// returns the PNG.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	offset, err := parseIntParam(r.URL.Query().Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	url := "http://" + s.cfg.Listen + "/calendar?offset=" + strconv.Itoa(offset)
	png, err := s.captureFn(r.Context(), capture.Options{
		URL:    url,
		Width:  s.cfg.Snapshot.Width,
		Height: s.cfg.Snapshot.Height,
	})
	if err != nil {
		appLog.Error("calendar snapshot failed", err, "url", url)
		writeError(w, http.StatusInternalServerError, "snapshot capture failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// requestLocation resolves the per-request timezone, defaulting to the
// configured display zone. An explicit-but-invalid tz is an error, never a
// silent fallback.
func (s *Server) requestLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return s.loc, nil
	}
	return schedule.ResolveLocation(tz)
}

func filtersFromQuery(q map[string][]string) schedule.FilterState {
	get := func(key string) string {
		if vs := q[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	f := schedule.FilterState{
		Organization: get("organization"),
	}
	switch strings.ToLower(get("broadcastOnly")) {
	case "1", "true", "yes":
		f.BroadcastOnly = true
	}
	if raw := get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Statuses = append(f.Statuses, model.ParseRecordingStatus(part))
			}
		}
	}
	return f
}

func parseIntParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeCalendar(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
