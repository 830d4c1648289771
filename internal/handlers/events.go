package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/logger"
)

type EventsResponse struct {
	Events []string `json:"events"`
}

// handleEvents drains the game's story events, or only reads them with
// ?peek=true.
func (h *GamesHandler) handleEvents(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if h.events == nil {
		writeJSON(w, h.logger, http.StatusOK, EventsResponse{Events: []string{}})
		return
	}

	peek, _ := strconv.ParseBool(r.URL.Query().Get("peek"))

	var (
		events []string
		err    error
	)
	if peek {
		events, err = h.events.Peek(r.Context(), id.String(), 0)
	} else {
		events, err = h.events.Dequeue(r.Context(), id.String())
	}
	if err != nil {
		logger.WithError(logger.WithGameID(h.logger, id.String()), err).Error("Failed to read story events")
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read story events")
		return
	}
	if events == nil {
		events = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, EventsResponse{Events: events})
}
