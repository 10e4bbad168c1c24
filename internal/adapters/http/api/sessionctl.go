// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/1970jjh/saudi/internal/mission"
)

// adminSecretHeader carries the shared secret on admin requests.
const adminSecretHeader = "X-Admin-Secret"

// SessionDependencies defines the interface for session control dependencies.
type SessionDependencies interface {
	Reveal(ctx context.Context, secret string) error
	ResetRound(ctx context.Context, secret string) error
	Revealed() bool
}

// SessionHandler handles session control requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session control handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type sessionStateResponse struct {
	Revealed bool `json:"revealed"`
}

// HandleReveal handles POST /session/reveal requests.
func (h *SessionHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.deps.Reveal)
}

// HandleReset handles POST /session/reset requests.
func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.control(w, r, h.deps.ResetRound)
}

// HandleState handles GET /session/state requests. This is the admin's
// own view of the round; learner sessions track theirs from broadcasts.
func (h *SessionHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateResponse{Revealed: h.deps.Revealed()})
}

func (h *SessionHandler) control(w http.ResponseWriter, r *http.Request, op func(context.Context, string) error) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := op(r.Context(), r.Header.Get(adminSecretHeader)); err != nil {
		if errors.Is(err, mission.ErrBadSecret) {
			writeError(w, http.StatusUnauthorized, "unauthorized", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionStateResponse{Revealed: h.deps.Revealed()})
}
