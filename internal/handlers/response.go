package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/campus-quest/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeGameError maps session errors onto HTTP status codes.
func writeGameError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrUnknownLocation):
		status = http.StatusNotFound
	case errors.Is(err, game.ErrLocked), errors.Is(err, game.ErrUnavailable):
		status = http.StatusConflict
	case errors.Is(err, game.ErrUnknownChoice):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.Error("Game action failed", "error", err)
	} else {
		logger.Debug("Game action rejected", "error", err, "status", status)
	}
	writeError(w, logger, status, err.Error())
}
