package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/internal/game"
)

type CreateWorldRequest struct {
	Name string `json:"name"`
}

type WorldListResponse struct {
	Worlds []WorldSummary `json:"worlds"`
}

type WorldSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt string    `json:"updated_at"`
}

type WorldsHandler struct {
	game   *game.Game
	logger *slog.Logger
}

func NewWorldsHandler(g *game.Game, logger *slog.Logger) *WorldsHandler {
	return &WorldsHandler{
		game:   g,
		logger: logger,
	}
}

// ServeHTTP handles HTTP requests for worlds
// Routes:
// GET /v1/worlds             - List saved worlds, newest first
// POST /v1/worlds            - Create a new world
// GET /v1/worlds/{id}        - Read the current state of a world
// DELETE /v1/worlds/{id}     - Delete a world
// POST /v1/worlds/{id}/turn  - Play one turn
func (h *WorldsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/worlds"), "/")
	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			h.logger.Warn("Method not allowed for worlds endpoint", "method", r.Method)
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, POST")
		}
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	worldID, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid world ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid world ID format")
		return
	}

	switch {
	case action == "turn" && r.Method == http.MethodPost:
		h.handleTurn(w, r, worldID)
	case action == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, worldID)
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, worldID)
	case action == "" || action == "turn":
		h.logger.Warn("Method not allowed for world endpoint", "method", r.Method, "action", action)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown world action: "+action)
	}
}

func (h *WorldsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	infos, err := h.game.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list worlds", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to list worlds")
		return
	}

	resp := WorldListResponse{Worlds: make([]WorldSummary, 0, len(infos))}
	for _, info := range infos {
		resp.Worlds = append(resp.Worlds, WorldSummary{
			ID:        info.ID,
			Name:      info.Name,
			UpdatedAt: info.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

func (h *WorldsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateWorldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	s, err := h.game.Create(r.Context(), req.Name)
	if errors.Is(err, game.ErrEmptyName) {
		writeError(w, h.logger, http.StatusBadRequest, "name field is required")
		return
	}
	if err != nil {
		h.logger.Error("Failed to create world", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create world")
		return
	}

	h.writeState(w, s, http.StatusCreated)
}

func (h *WorldsHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, ok := h.session(w, r, id)
	if !ok {
		return
	}
	h.writeState(w, s, http.StatusOK)
}

func (h *WorldsHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	err := h.game.Delete(r.Context(), id)
	if errors.Is(err, game.ErrWorldNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "World not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete world", "world_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete world")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *WorldsHandler) handleTurn(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}

	s, ok := h.session(w, r, id)
	if !ok {
		return
	}
	playTurn(w, r, h.logger, s, req.Message)
}

// session opens the world, writing the error response when it cannot.
func (h *WorldsHandler) session(w http.ResponseWriter, r *http.Request, id uuid.UUID) (*game.Session, bool) {
	s, err := h.game.Load(r.Context(), id)
	if errors.Is(err, game.ErrWorldNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "World not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("Failed to load world", "world_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load world")
		return nil, false
	}
	return s, true
}

func (h *WorldsHandler) writeState(w http.ResponseWriter, s *game.Session, status int) {
	st, err := s.State()
	if err != nil {
		h.logger.Error("Failed to snapshot world", "world_id", s.ID(), "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read world")
		return
	}
	writeJSON(w, h.logger, status, st)
}
