package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/handlers"
	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/game"
)

type apiClient struct {
	client  *http.Client
	baseURL string
}

func newAPIClient(client *http.Client, baseURL string) *apiClient {
	return &apiClient{client: client, baseURL: baseURL}
}

func (a *apiClient) testConnection() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// do sends a request and decodes the JSON reply into out when the status
// matches want. Any other status is turned into an error carrying the API's
// error message.
func (a *apiClient) do(method, path string, body any, want int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp handlers.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func (a *apiClient) createGame() (*handlers.GameResponse, error) {
	var resp handlers.GameResponse
	if err := a.do(http.MethodPost, "/v1/games", nil, http.StatusCreated, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *apiClient) getGame(id uuid.UUID) (*handlers.GameResponse, error) {
	var resp handlers.GameResponse
	if err := a.do(http.MethodGet, "/v1/games/"+id.String(), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *apiClient) locations() (*campus.Campus, error) {
	var c campus.Campus
	if err := a.do(http.MethodGet, "/v1/locations", nil, http.StatusOK, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (a *apiClient) visit(id uuid.UUID, location string) (*game.Scene, error) {
	var scene game.Scene
	if err := a.do(http.MethodGet, "/v1/games/"+id.String()+"/scenes/"+location, nil, http.StatusOK, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

func (a *apiClient) act(id uuid.UUID, action game.Action, req handlers.ActionRequest) (*game.Result, error) {
	var res game.Result
	if err := a.do(http.MethodPost, "/v1/games/"+id.String()+"/actions/"+string(action), req, http.StatusOK, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) hint(id uuid.UUID) (string, error) {
	var resp handlers.HintResponse
	if err := a.do(http.MethodGet, "/v1/games/"+id.String()+"/hint", nil, http.StatusOK, &resp); err != nil {
		return "", err
	}
	return resp.Hint, nil
}

func (a *apiClient) drainEvents(id uuid.UUID) ([]string, error) {
	var resp handlers.EventsResponse
	if err := a.do(http.MethodGet, "/v1/games/"+id.String()+"/events", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}
