package handlers

import (
	"log/slog"
	"net/http"

	"github.com/rybla/sva-engine/internal/storage"
)

// WorldsHandler lists the authored world seeds available for new
// instances.
type WorldsHandler struct {
	worlds *storage.WorldLibrary
	logger *slog.Logger
}

func NewWorldsHandler(worlds *storage.WorldLibrary, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{worlds: worlds, logger: logger}
}

// ServeHTTP handles:
// GET /v1/worlds - map of world name to seed filename
func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}

	worlds, err := h.worlds.List()
	if err != nil {
		h.logger.Error("Failed to list worlds", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list worlds")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, worlds)
}
