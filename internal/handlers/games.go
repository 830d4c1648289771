package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/logger"
	"github.com/jwebster45206/campus-quest/internal/services/queue"
	"github.com/jwebster45206/campus-quest/internal/session"
	"github.com/jwebster45206/campus-quest/pkg/game"
	"github.com/jwebster45206/campus-quest/pkg/progression"
)

type GameResponse struct {
	ID    uuid.UUID            `json:"id"`
	State progression.Snapshot `json:"state"`
}

type HintResponse struct {
	Hint string `json:"hint"`
}

type GamesHandler struct {
	sessions *session.Manager
	events   queue.Queue
	logger   *slog.Logger
}

func NewGamesHandler(sessions *session.Manager, events queue.Queue, logger *slog.Logger) *GamesHandler {
	return &GamesHandler{
		sessions: sessions,
		events:   events,
		logger:   logger,
	}
}

// ServeHTTP routes game requests.
// Routes:
// POST   /v1/games                        - Start a game
// GET    /v1/games/{id}                   - Current progression state
// DELETE /v1/games/{id}                   - End a game
// GET    /v1/games/{id}/scenes/{location} - Visit a location
// POST   /v1/games/{id}/actions/{action}  - Play an action
// GET    /v1/games/{id}/events            - Drain story events (?peek=true keeps them)
// GET    /v1/games/{id}/hint              - Gate hint
func (h *GamesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w)
		return
	}

	parts := strings.Split(path, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}
	s, ok := h.sessions.Get(id)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, h.logger, http.StatusOK, GameResponse{ID: s.ID(), State: s.Snapshot()})
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}

	case len(parts) == 3 && parts[1] == "scenes":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		scene, err := s.Visit(r.Context(), parts[2])
		if err != nil {
			writeGameError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, scene)

	case len(parts) == 3 && parts[1] == "actions":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleAction(w, r, s, game.Action(parts[2]))

	case len(parts) == 2 && parts[1] == "events":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		h.handleEvents(w, r, id)

	case len(parts) == 2 && parts[1] == "hint":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, HintResponse{Hint: s.Hint()})

	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GamesHandler) handleCreate(w http.ResponseWriter) {
	s := h.sessions.Create()
	writeJSON(w, h.logger, http.StatusCreated, GameResponse{ID: s.ID(), State: s.Snapshot()})
}

func (h *GamesHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.sessions.Delete(id)
	if h.events != nil {
		if err := h.events.Clear(r.Context(), id.String()); err != nil {
			logger.WithError(logger.WithGameID(h.logger, id.String()), err).Error("Failed to clear story events")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
