package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rybla/sva-engine/internal/storage"
)

// InstanceHandler serves the instance resource and its subresources.
type InstanceHandler struct {
	engine *Engine
	worlds *storage.WorldLibrary
	assets *storage.AssetStore
	logger *slog.Logger
}

func NewInstanceHandler(engine *Engine, worlds *storage.WorldLibrary, assets *storage.AssetStore, logger *slog.Logger) *InstanceHandler {
	return &InstanceHandler{
		engine: engine,
		worlds: worlds,
		assets: assets,
		logger: logger,
	}
}

// CreateInstanceRequest defines the request body for creating a new
// instance.
type CreateInstanceRequest struct {
	World string `json:"world"`          // Required: world seed filename
	Name  string `json:"name,omitempty"` // Optional: display name, defaults to the instance id
}

// RenameInstanceRequest defines the request body for renaming an
// instance.
type RenameInstanceRequest struct {
	Name string `json:"name"`
}

// ServeHTTP routes:
// POST   /v1/instances                     - create a new instance
// GET    /v1/instances                     - list instances
// GET    /v1/instances/{id}                - read an instance
// PATCH  /v1/instances/{id}                - rename an instance
// DELETE /v1/instances/{id}                - delete an instance and its assets
// GET    /v1/instances/{id}/view           - project an actor's view (?actor=)
// POST   /v1/instances/{id}/turns          - run a turn
// GET    /v1/instances/{id}/assets         - list assets
// GET    /v1/instances/{id}/assets/{name}  - read an asset
// PUT    /v1/instances/{id}/assets/{name}  - write an asset
func (h *InstanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/instances"), "/")

	if path == "" {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET")
		}
		return
	}

	parts := strings.SplitN(path, "/", 3)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid instance ID", "id", parts[0], "error", err)
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusBadRequest, "Invalid instance ID format")
		return
	}

	if len(parts) == 1 {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, r, id)
		case http.MethodPatch:
			h.handleRename(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, PATCH, DELETE")
		}
		return
	}

	switch parts[1] {
	case "turns":
		w.Header().Set("Content-Type", "application/json")
		h.handleTurns(w, r, id)
	case "view":
		w.Header().Set("Content-Type", "application/json")
		h.handleView(w, r, id)
	case "assets":
		name := ""
		if len(parts) == 3 {
			name = parts[2]
		}
		h.handleAssets(w, r, id, name)
	default:
		w.Header().Set("Content-Type", "application/json")
		writeError(w, h.logger, http.StatusNotFound, "Unknown instance subresource")
	}
}

func (h *InstanceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateInstanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.World == "" {
		writeError(w, h.logger, http.StatusBadRequest, "World seed filename is required")
		return
	}

	world, err := h.worlds.Get(req.World)
	if err != nil {
		h.logger.Warn("Failed to load world seed", "world", req.World, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	inst, err := h.engine.CreateInstance(r.Context(), req.Name, req.World, world)
	if err != nil {
		h.logger.Error("Failed to create instance", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create instance")
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, inst)
}

func (h *InstanceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	metas, err := h.engine.Store().List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list instances", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list instances")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, metas)
}

func (h *InstanceHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	inst, err := h.loadInstance(w, r, id)
	if inst == nil || err != nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, inst)
}

func (h *InstanceHandler) handleRename(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req RenameInstanceRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		writeError(w, h.logger, http.StatusBadRequest, "A non-empty name is required")
		return
	}

	inst, err := h.loadInstance(w, r, id)
	if inst == nil || err != nil {
		return
	}

	inst.Name = req.Name
	if err := h.engine.Store().Save(r.Context(), inst); err != nil {
		h.logger.Error("Failed to save renamed instance", "instance_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save instance")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, inst.Meta())
}

func (h *InstanceHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.engine.Store().Delete(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete instance", "instance_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete instance")
		return
	}
	if err := h.assets.DeleteAll(id); err != nil {
		h.logger.Warn("Failed to delete instance assets", "instance_id", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InstanceHandler) handleView(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
		return
	}
	actor := r.URL.Query().Get("actor")
	if actor == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Query parameter 'actor' is required")
		return
	}

	inst, err := h.loadInstance(w, r, id)
	if inst == nil || err != nil {
		return
	}

	view, err := h.engine.Project(inst, actor)
	if err != nil {
		h.logger.Warn("Failed to project view", "instance_id", id, "actor", actor, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

// loadInstance fetches the instance or writes the appropriate error
// response, returning nil if the request has been handled.
func (h *InstanceHandler) loadInstance(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*Instance, error) {
	inst, err := h.engine.Store().Load(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load instance", "instance_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load instance")
		return nil, err
	}
	if inst == nil {
		writeError(w, h.logger, http.StatusNotFound, "Instance not found")
		return nil, nil
	}
	return inst, nil
}
