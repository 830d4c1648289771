package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is anything that can report its own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	redis    Pinger
	sessions func() int
	logger   *slog.Logger
}

// NewHealthHandler creates the health endpoint. redis may be nil when the
// in-memory queue is in use.
func NewHealthHandler(redis Pinger, sessions func() int, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		redis:    redis,
		sessions: sessions,
		logger:   logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]any)
	overallStatus := "healthy"

	if h.redis == nil {
		components["queue"] = "memory"
	} else if err := h.redis.Ping(ctx); err != nil {
		h.logger.Warn("Queue health check failed", "error", err)
		components["queue"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["queue"] = "healthy"
	}
	if h.sessions != nil {
		components["sessions"] = h.sessions()
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "campus-quest",
		Components: components,
	})
}
