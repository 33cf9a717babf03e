package web

import (
	"context"
	"net/http"
	"time"

	"odincal/internal/ics"
	appLog "odincal/internal/log"
	"odincal/internal/model"
	"odincal/internal/planner"
	"odincal/internal/schedule"
)

type eventsCache struct {
	day       time.Time
	revision  uint64
	processed planner.Processed
}

// processed returns the expansion for now, reusing the cached one while the
// calendar date and the store revision are unchanged.
func (s *Server) processed(ctx context.Context, now time.Time) (planner.Processed, error) {
	today := schedule.Today(now, s.loc)
	rev := s.events.Revision()

	s.eventsMu.RLock()
	c := s.eventsCache
	s.eventsMu.RUnlock()
	if c != nil && c.day.Equal(today) && c.revision == rev {
		return c.processed, nil
	}

	p, err := s.events.Processed(ctx, now)
	if err != nil {
		return planner.Processed{}, err
	}

	expansionsTotal.Inc()
	expandedOccurrences.Set(float64(len(p.Occurrences)))
	truncatedDefinitions.Set(float64(len(p.TruncatedEvents)))

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{day: today, revision: p.Revision, processed: p}
	s.eventsMu.Unlock()

	appLog.Debug("expansion cache refreshed",
		"today", today.Format(time.DateOnly),
		"revision", p.Revision,
		"occurrences", len(p.Occurrences),
	)
	return p, nil
}

// characterFilter reads the character query parameter. Absent means no
// filtering, "global" means the global view, anything else is a character id.
func characterFilter(r *http.Request) (id *string, filter bool) {
	v := r.URL.Query().Get("character")
	switch v {
	case "":
		return nil, false
	case "global":
		return nil, true
	default:
		return &v, true
	}
}

func (s *Server) visibleOccurrences(r *http.Request) ([]model.Activity, planner.Processed, error) {
	p, err := s.processed(r.Context(), s.now())
	if err != nil {
		return nil, planner.Processed{}, err
	}
	occ := p.Occurrences
	if id, ok := characterFilter(r); ok {
		occ = schedule.FilterFor(occ, id)
	}
	return occ, p, nil
}

type eventsResponse struct {
	Occurrences     []model.Activity `json:"occurrences"`
	TruncatedIDs    []string         `json:"truncatedIds,omitempty"`
	RangeStart      time.Time        `json:"rangeStart"`
	RangeEnd        time.Time        `json:"rangeEnd"`
	DisplayTimeZone string           `json:"displayTimeZone"`
	Revision        uint64           `json:"revision"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	occ, p, err := s.visibleOccurrences(r)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Occurrences:     nonNil(occ),
		TruncatedIDs:    p.TruncatedEvents,
		RangeStart:      p.WindowStart,
		RangeEnd:        p.WindowEnd,
		DisplayTimeZone: s.loc.String(),
		Revision:        p.Revision,
	})
}

type calendarResponse struct {
	Segments        []model.Segment `json:"segments"`
	RangeStart      time.Time       `json:"rangeStart"`
	RangeEnd        time.Time       `json:"rangeEnd"`
	DisplayTimeZone string          `json:"displayTimeZone"`
}

// handleCalendar serves the day-split segments a calendar grid renders.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	occ, p, err := s.visibleOccurrences(r)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	segs := schedule.SplitAll(occ)
	if segs == nil {
		segs = []model.Segment{}
	}
	writeJSON(w, http.StatusOK, calendarResponse{
		Segments:        segs,
		RangeStart:      p.WindowStart,
		RangeEnd:        p.WindowEnd,
		DisplayTimeZone: s.loc.String(),
	})
}

type agendaResponse struct {
	Date        string           `json:"date"`
	Occurrences []model.Activity `json:"occurrences"`
}

// handleAgenda lists the occurrences starting on one date (default today).
func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request) {
	day := schedule.Today(s.now(), s.loc)
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, s.loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = d
	}

	occ, _, err := s.visibleOccurrences(r)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agendaResponse{
		Date:        day.Format(time.DateOnly),
		Occurrences: nonNil(schedule.OnDay(occ, day)),
	})
}

func (s *Server) handleActivityTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, model.ActivityTypes())
}

// handleICS exports the expanded window as an iCalendar feed.
func (s *Server) handleICS(w http.ResponseWriter, r *http.Request) {
	occ, _, err := s.visibleOccurrences(r)
	if err != nil {
		writePlannerError(w, err)
		return
	}
	body := ics.Export(occ, ics.ExportConfig{Stamp: s.now()})

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="odincal.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		appLog.Error("failed to write ics response", err)
	}
}

func nonNil(occ []model.Activity) []model.Activity {
	if occ == nil {
		return []model.Activity{}
	}
	return occ
}
