package web

import (
	_ "embed"
	"html/template"
	"net/http"

	appLog "schedarr/internal/log"
	"schedarr/internal/schedule"
)

//go:embed calendar.html
var calendarHTML string

var calendarTmpl = template.Must(template.New("calendar").Parse(calendarHTML))

type calendarPageData struct {
	View       schedule.WeekView
	PrevOffset int
	NextOffset int
}

// handleCalendarPage renders the server-side HTML week grid. The page marks
// its root with data-ready="true" so the snapshot capture knows when to
// shoot.
func (s *Server) handleCalendarPage(w http.ResponseWriter, r *http.Request) {
	offset, err := parseIntParam(r.URL.Query().Get("offset"), 0)
	if err != nil {
		http.Error(w, "invalid offset", http.StatusBadRequest)
		return
	}

	view := schedule.BuildWeekView(s.store.Items(), s.now(), offset, schedule.FilterState{}, s.loc)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := calendarPageData{
		View:       view,
		PrevOffset: offset - 1,
		NextOffset: offset + 1,
	}
	if err := calendarTmpl.Execute(w, data); err != nil {
		appLog.Error("calendar page render failed", err)
	}
}
