// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/1970jjh/saudi/internal/domain/model"
	"github.com/1970jjh/saudi/internal/domain/scoring"
)

// SimulateDependencies defines the interface for scoring dependencies.
type SimulateDependencies interface {
	Simulate(ctx context.Context, rawPrice string) ([]model.RankedResult, error)
}

// SimulateHandler handles scoring requests.
type SimulateHandler struct {
	deps SimulateDependencies
}

// NewSimulateHandler creates a new simulate handler.
func NewSimulateHandler(deps SimulateDependencies) *SimulateHandler {
	return &SimulateHandler{deps: deps}
}

// simulateRequest mirrors the POST /simulate body.
type simulateRequest struct {
	PriceMillion string `json:"price_million"`
}

func (s simulateRequest) validate() error {
	if strings.TrimSpace(s.PriceMillion) == "" {
		return errors.New("missing price_million")
	}
	return nil
}

// simulateResponse carries a full recomputed result set.
type simulateResponse struct {
	Results []model.RankedResult `json:"results"`
}

// HandleSimulate handles POST /simulate requests.
func (h *SimulateHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	results, err := h.deps.Simulate(r.Context(), req.PriceMillion)
	if errors.Is(err, scoring.ErrInvalidPrice) {
		// The engine declined to compute; there is no result set to
		// return, and the caller keeps whatever it had.
		writeError(w, http.StatusUnprocessableEntity, "invalid_price", err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}
	writeJSON(w, http.StatusOK, simulateResponse{Results: results})
}
