// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/1970jjh/saudi/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Simulate runs one scoring pass for a raw price string.
	Simulate(ctx context.Context, rawPrice string) ([]model.RankedResult, error)

	// Reveal and ResetRound broadcast session control, guarded by the
	// shared admin secret.
	Reveal(ctx context.Context, secret string) error
	ResetRound(ctx context.Context, secret string) error
	Revealed() bool

	// Team note access.
	TeamNotes(ctx context.Context, teamID int) ([]string, error)
	SaveTeamNotes(ctx context.Context, teamID int, notes []string) error
}

// StatsProvider exposes service statistics for monitoring.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	simulateHandler *SimulateHandler
	sessionHandler  *SessionHandler
	notesHandler    *NotesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		simulateHandler: NewSimulateHandler(deps),
		sessionHandler:  NewSessionHandler(deps),
		notesHandler:    NewNotesHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/simulate", MetricsMiddleware(s.simulateHandler.HandleSimulate, "simulate"))
	mux.HandleFunc("/session/reveal", MetricsMiddleware(s.sessionHandler.HandleReveal, "session_reveal"))
	mux.HandleFunc("/session/reset", MetricsMiddleware(s.sessionHandler.HandleReset, "session_reset"))
	mux.HandleFunc("/session/state", MetricsMiddleware(s.sessionHandler.HandleState, "session_state"))
	mux.HandleFunc("/teams/", MetricsMiddleware(s.notesHandler.HandleNotes, "team_notes"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
