// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/1970jjh/saudi/internal/mission"
)

// NotesDependencies defines the interface for team note dependencies.
type NotesDependencies interface {
	TeamNotes(ctx context.Context, teamID int) ([]string, error)
	SaveTeamNotes(ctx context.Context, teamID int, notes []string) error
}

// NotesHandler handles team note requests.
type NotesHandler struct {
	deps NotesDependencies
}

// NewNotesHandler creates a new team notes handler.
func NewNotesHandler(deps NotesDependencies) *NotesHandler {
	return &NotesHandler{deps: deps}
}

type notesDocument struct {
	TeamID int      `json:"team_id"`
	Notes  []string `json:"notes"`
}

// HandleNotes handles GET and PUT /teams/{id}/notes requests.
func (h *NotesHandler) HandleNotes(w http.ResponseWriter, r *http.Request) {
	teamID, ok := parseTeamPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		notes, err := h.deps.TeamNotes(r.Context(), teamID)
		if err != nil {
			h.writeTeamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, notesDocument{TeamID: teamID, Notes: notes})
	case http.MethodPut:
		var doc notesDocument
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		if err := h.deps.SaveTeamNotes(r.Context(), teamID, doc.Notes); err != nil {
			h.writeTeamError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, notesDocument{TeamID: teamID, Notes: doc.Notes})
	default:
		http.NotFound(w, r)
	}
}

func (h *NotesHandler) writeTeamError(w http.ResponseWriter, err error) {
	if errors.Is(err, mission.ErrBadTeam) {
		writeError(w, http.StatusNotFound, "unknown_team", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", err)
}

// parseTeamPath extracts the team id from /teams/{id}/notes.
func parseTeamPath(path string) (int, bool) {
	rest, ok := strings.CutPrefix(path, "/teams/")
	if !ok {
		return 0, false
	}
	idStr, ok := strings.CutSuffix(rest, "/notes")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
