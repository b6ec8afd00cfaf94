// Package handlers implements the HTTP surface over the engine: instance
// CRUD, turn execution, world listing, assets and health.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rybla/sva-engine/pkg/adventure"
	"github.com/rybla/sva-engine/pkg/sva"
)

// Concrete engine types for the adventure application.
type (
	Engine   = sva.Engine[*adventure.World, *adventure.View, adventure.Action]
	Instance = sva.Instance[*adventure.World, adventure.Action]
	Turn     = sva.Turn[*adventure.World, adventure.Action]
)

type ErrorResponse struct {
	Error string `json:"error"`
	// Precondition failures of a rejected turn, one message per action.
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}
