package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/campus-quest/pkg/campus"
)

type LocationsHandler struct {
	campus *campus.Campus
	logger *slog.Logger
}

func NewLocationsHandler(c *campus.Campus, logger *slog.Logger) *LocationsHandler {
	return &LocationsHandler{campus: c, logger: logger}
}

// ServeHTTP lists the campus map.
// GET /v1/locations
func (h *LocationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.campus)
}
