package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

// ChatHandler plays a turn named by the world_id in the body. It is the
// body-addressed form of POST /v1/worlds/{id}/turn.
type ChatHandler struct {
	game   *game.Game
	logger *slog.Logger
}

func NewChatHandler(g *game.Game, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		game:   g,
		logger: logger,
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for chat endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		writeJSON(w, h.logger, http.StatusMethodNotAllowed, chat.ChatResponse{
			Error: "Method not allowed. Only POST is supported at /v1/chat.",
		})
		return
	}

	var request chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: "Invalid request body. Expected JSON with 'message' field.",
		})
		return
	}
	if request.WorldID == uuid.Nil {
		writeJSON(w, h.logger, http.StatusBadRequest, chat.ChatResponse{
			Error: "Invalid request: world_id is required",
		})
		return
	}

	s, err := h.game.Load(r.Context(), request.WorldID)
	if errors.Is(err, game.ErrWorldNotFound) {
		writeJSON(w, h.logger, http.StatusNotFound, chat.ChatResponse{
			WorldID: request.WorldID,
			Error:   "World not found",
		})
		return
	}
	if err != nil {
		h.logger.Error("Failed to load world", "world_id", request.WorldID, "error", err)
		writeJSON(w, h.logger, http.StatusInternalServerError, chat.ChatResponse{
			WorldID: request.WorldID,
			Error:   "Failed to load world",
		})
		return
	}

	playTurn(w, r, h.logger, s, request.Message)
}

// playTurn runs one turn and writes the ChatResponse. A turn whose model
// calls all failed is still a 200: the narrative reports the failure.
func playTurn(w http.ResponseWriter, r *http.Request, logger *slog.Logger, s *game.Session, message string) {
	req := chat.ChatRequest{WorldID: s.ID(), Message: message}
	if err := req.Validate(); err != nil {
		writeJSON(w, logger, http.StatusBadRequest, chat.ChatResponse{
			WorldID: s.ID(),
			Error:   "Invalid request: " + err.Error(),
		})
		return
	}

	resp, err := s.Turn(r.Context(), req.Message)
	if errors.Is(err, game.ErrWorldNotFound) {
		writeJSON(w, logger, http.StatusNotFound, chat.ChatResponse{WorldID: s.ID(), Error: "World not found"})
		return
	}
	if err != nil {
		logger.Error("Turn failed", "world_id", s.ID(), "error", err)
		writeJSON(w, logger, http.StatusInternalServerError, chat.ChatResponse{
			WorldID: s.ID(),
			Error:   "Failed to play turn. Please try again.",
		})
		return
	}

	logger.Info("Turn played",
		"world_id", s.ID(),
		"narrative_len", len(resp.Narrative),
		"suggestions", len(resp.SuggestedActions),
		"failed", resp.Failed)
	writeJSON(w, logger, http.StatusOK, chat.ChatResponse{
		WorldID:          s.ID(),
		Narrative:        resp.Narrative,
		SuggestedActions: resp.SuggestedActions,
		Failed:           resp.Failed,
	})
}
