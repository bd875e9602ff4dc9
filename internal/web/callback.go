package web

import (
	"net/http"
	"time"

	"github.com/guilherme-santos/agendahub/dategrid"
	"github.com/guilherme-santos/agendahub/internal/ics"
)

// fragmentShim relays the URL fragment to the server. Providers return
// the implicit-grant token in the fragment, which never reaches us over
// the wire; this page re-requests the callback with the fragment
// parameters as a query string so the handler can see them.
const fragmentShim = `<!DOCTYPE html>
<html>
<head><title>Signing in...</title></head>
<body>
<script>
var h = window.location.hash;
if (h && h.length > 1) {
  window.location.replace("/auth/callback?" + h.substring(1));
} else {
  window.location.replace("/");
}
</script>
</body>
</html>`

// handleAuthCallback terminates the OAuth redirect. The first request
// carries the token in the fragment and gets the shim; the second
// carries it as a query, is applied to the collection, and ends in a
// redirect to a clean URL so a reload never reprocesses a stale callback.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("access_token") == "" && query.Get("error") == "" && query.Get("state") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(fragmentShim))
		return
	}

	agendaID, err := s.manager.HandleCallback(r.Context(), query)
	if err == nil && agendaID != "" {
		// Freshly authenticated; fetch its events right away.
		_ = s.manager.Synchronize(r.Context(), agendaID)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type gridView struct {
	View         string        `json:"view"`
	Label        string        `json:"label"`
	WeekdayNames []string      `json:"weekdayNames"`
	Days         [][]time.Time `json:"days"`
}

// handleGrid returns the day layout for the requested view mode. The
// week view snaps its reference date to the start of the week.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must look like 2006-01-02")
			return
		}
		date = parsed
	}
	weekStartsOn := s.cfg.WeekStartsOn()

	view := r.URL.Query().Get("view")
	if view == "" {
		view = "month"
	}

	var resp gridView
	resp.View = view
	resp.WeekdayNames = dategrid.WeekdayNames(weekStartsOn, true)

	switch view {
	case "month":
		resp.Label = dategrid.FormatMonthYear(date)
		resp.Days = dategrid.MonthGrid(date, weekStartsOn)
	case "week":
		start := dategrid.StartOfWeek(date, weekStartsOn)
		resp.Label = dategrid.FormatWeekRange(start)
		week := make([]time.Time, 7)
		for i := range week {
			week[i] = dategrid.AddDays(start, i)
		}
		resp.Days = [][]time.Time{week}
	case "day":
		resp.Label = dategrid.FormatDayDate(date)
		resp.Days = [][]time.Time{{date}}
	default:
		writeError(w, http.StatusBadRequest, "unknown view mode")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportICS(w http.ResponseWriter, _ *http.Request) {
	appts := s.manager.AggregateVisible()

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agendahub.ics"`)
	// Headers are already out; a serialization failure can only cut the
	// body short.
	_ = ics.Export(w, appts)
}
