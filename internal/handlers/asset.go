package handlers

import (
	"io"
	"net/http"

	"github.com/google/uuid"
)

const maxAssetSize = 16 << 20 // 16 MiB

// handleAssets serves the asset subresource. Assets are opaque bytes;
// content type is not recorded, so reads come back as octet-stream.
func (h *InstanceHandler) handleAssets(w http.ResponseWriter, r *http.Request, id uuid.UUID, name string) {
	if name == "" {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		names, err := h.assets.List(id)
		if err != nil {
			h.logger.Error("Failed to list assets", "instance_id", id, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to list assets")
			return
		}
		if names == nil {
			names = []string{}
		}
		writeJSON(w, h.logger, http.StatusOK, names)
		return
	}

	switch r.Method {
	case http.MethodGet:
		data, err := h.assets.Load(id, name)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		if data == nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, http.StatusNotFound, "Asset not found")
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		if _, err := w.Write(data); err != nil {
			h.logger.Error("Failed to write asset response", "instance_id", id, "name", name, "error", err)
		}

	case http.MethodPut:
		data, err := io.ReadAll(io.LimitReader(r.Body, maxAssetSize+1))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
			return
		}
		if len(data) > maxAssetSize {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, "Asset too large")
			return
		}
		if err := h.assets.Save(id, name, data); err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PUT")
	}
}
