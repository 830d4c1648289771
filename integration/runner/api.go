package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/handlers"
	"github.com/jwebster45206/campus-quest/pkg/progression"
)

// PollInterval is how often WaitForHealthy retries the health endpoint
const PollInterval = 500 * time.Millisecond

// do sends a request and decodes a 2xx body into out. Non-2xx statuses are
// returned with the raw body, not as errors, so steps can expect them.
func (r *Runner) do(ctx context.Context, method, path string, body json.RawMessage, out any) (int, string, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return 0, "", fmt.Errorf("failed to create %s request: %w", method, err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil && resp.StatusCode/100 == 2 && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, string(raw), fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, string(raw), nil
}

func (r *Runner) createGame(ctx context.Context) (uuid.UUID, error) {
	var game handlers.GameResponse
	status, body, err := r.do(ctx, http.MethodPost, "/v1/games", nil, &game)
	if err != nil {
		return uuid.Nil, err
	}
	if status != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("create game returned %d (expected 201): %s", status, body)
	}
	return game.ID, nil
}

func (r *Runner) getGame(ctx context.Context, id uuid.UUID) (progression.Snapshot, error) {
	var game handlers.GameResponse
	status, body, err := r.do(ctx, http.MethodGet, "/v1/games/"+id.String(), nil, &game)
	if err != nil {
		return progression.Snapshot{}, err
	}
	if status != http.StatusOK {
		return progression.Snapshot{}, fmt.Errorf("game endpoint returned %d: %s", status, body)
	}
	return game.State, nil
}

// deleteGame is best effort; the server sweeps idle games anyway.
func (r *Runner) deleteGame(ctx context.Context, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	if _, _, err := r.do(ctx, http.MethodDelete, "/v1/games/"+id.String(), nil, nil); err != nil {
		r.Logger("    failed to delete game %s: %v", id, err)
	}
}

// WaitForHealthy polls /health until it answers 200 or ctx ends.
func (r *Runner) WaitForHealthy(ctx context.Context) error {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		status, body, err := r.do(ctx, http.MethodGet, "/health", nil, nil)
		if err == nil && status == http.StatusOK {
			return nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("API at %s not healthy: %w", r.BaseURL, err)
			}
			return fmt.Errorf("API at %s not healthy: %d %s", r.BaseURL, status, body)
		case <-ticker.C:
		}
	}
}
