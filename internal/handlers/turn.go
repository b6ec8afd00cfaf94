package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/rybla/sva-engine/internal/logger"
	"github.com/rybla/sva-engine/pkg/sva"
)

// TurnRequest defines the request body for running a turn.
type TurnRequest struct {
	Actor string `json:"actor"`
	Input string `json:"input"`
}

// TurnResponse is returned after a successful turn: the recorded turn and
// the actor's refreshed view.
type TurnResponse struct {
	Turn *Turn `json:"turn"`
	View any   `json:"view"`
}

// handleTurns runs one interaction cycle against an instance. Failure
// modes map to status codes: 422 for a rejected turn (precondition
// failures, world unchanged), 502 for a generator failure (world
// unchanged), 500 for integrity or persistence failures.
func (h *InstanceHandler) handleTurns(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
		return
	}

	var req TurnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Actor == "" || req.Input == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Both 'actor' and 'input' are required")
		return
	}

	inst, err := h.loadInstance(w, r, id)
	if inst == nil || err != nil {
		return
	}

	log := logger.WithInstanceID(h.logger, id.String())
	turn, err := h.engine.RunTurn(r.Context(), inst, req.Actor, req.Input)
	if err != nil {
		var rejected *sva.RejectedTurnError
		var generation *sva.GenerationError
		var persistence *sva.PersistenceError
		switch {
		case errors.As(err, &rejected):
			writeJSON(w, log, http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "Turn rejected",
				Details: rejected.Messages(),
			})
		case errors.As(err, &generation):
			logger.WithError(log, err).Error("Action generation failed")
			writeError(w, log, http.StatusBadGateway, "Action generation failed")
		case errors.As(err, &persistence):
			logger.WithError(log, err).Error("Turn persisted in memory only")
			writeError(w, log, http.StatusInternalServerError, "Turn completed but could not be saved")
		default:
			logger.WithError(log, err).Error("Turn failed")
			writeError(w, log, http.StatusInternalServerError, "Turn failed")
		}
		return
	}

	view, err := h.engine.Project(inst, req.Actor)
	if err != nil {
		logger.WithError(log, err).Error("Failed to project view after turn")
		writeError(w, log, http.StatusInternalServerError, "Failed to project view")
		return
	}

	writeJSON(w, log, http.StatusOK, TurnResponse{Turn: turn, View: view})
}
