package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"odincal/internal/config"
	appLog "odincal/internal/log"
	"odincal/internal/planner"
)

// Server exposes the planner over a JSON HTTP API plus an iCalendar feed.
type Server struct {
	cfg    *config.Config
	loc    *time.Location
	events *planner.Events
	roster *planner.Roster
	now    func() time.Time
	mux    *http.ServeMux

	// Expansion cache; valid for one calendar day and one store revision.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Config   *config.Config
	Location *time.Location
	Events   *planner.Events
	Roster   *planner.Roster
	// Now is the request clock; nil means time.Now.
	Now func() time.Time
}

// NewServer constructs a new Server.
func NewServer(d Deps) *Server {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Config == nil {
		d.Config = config.DefaultConfig()
	}
	s := &Server{
		cfg:    d.Config,
		loc:    d.Location,
		events: d.Events,
		roster: d.Roster,
		now:    d.Now,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := instrument(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// Rollover drops the cached expansion; wired to the midnight cron job so
// the first request of a new day does not pay for a stale check.
func (s *Server) Rollover() {
	s.eventsMu.Lock()
	s.eventsCache = nil
	s.eventsMu.Unlock()
	appLog.Info("day rollover; expansion cache cleared", "today", s.now().In(s.loc).Format(time.DateOnly))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password disables auth.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="odincal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/agenda", s.handleAgenda)
	s.mux.HandleFunc("GET /api/activity-types", s.handleActivityTypes)
	s.mux.HandleFunc("GET /calendar.ics", s.handleICS)

	s.mux.HandleFunc("GET /api/activities", s.handleListActivities)
	s.mux.HandleFunc("POST /api/activities", s.handleAddActivity)
	s.mux.HandleFunc("POST /api/activities/shared", s.handleAddShared)
	s.mux.HandleFunc("POST /api/activities/reset-global", s.handleResetGlobal)
	s.mux.HandleFunc("GET /api/activities/{id}", s.handleGetActivity)
	s.mux.HandleFunc("PATCH /api/activities/{id}", s.handleUpdateActivity)
	s.mux.HandleFunc("DELETE /api/activities/{id}", s.handleDeleteActivity)

	s.mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	s.mux.HandleFunc("POST /api/accounts", s.handleAddAccount)
	s.mux.HandleFunc("PATCH /api/accounts/{id}", s.handleRenameAccount)
	s.mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)
	s.mux.HandleFunc("POST /api/accounts/{id}/activate", s.handleSwitchAccount)
	s.mux.HandleFunc("POST /api/accounts/{id}/characters", s.handleAddCharacter)
	s.mux.HandleFunc("PATCH /api/characters/{id}", s.handleUpdateCharacter)
	s.mux.HandleFunc("DELETE /api/characters/{id}", s.handleDeleteCharacter)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

// writePlannerError maps planner errors onto HTTP statuses. Invariant
// violations carry the user-facing reason.
func writePlannerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvariantViolation):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, planner.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		appLog.Error("api request failed", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
