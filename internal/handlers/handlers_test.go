package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/services/queue"
	"github.com/jwebster45206/campus-quest/internal/session"
	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/game"
	"github.com/jwebster45206/campus-quest/pkg/progression"
	"github.com/jwebster45206/campus-quest/pkg/puzzle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type testServer struct {
	handler  *GamesHandler
	sessions *session.Manager
	events   *queue.MemoryQueue
}

func newTestServer() *testServer {
	events := queue.NewMemoryQueue()
	sessions := session.NewManager(campus.Default(), testLogger(), session.WithQueue(events))
	return &testServer{
		handler:  NewGamesHandler(sessions, events, testLogger()),
		sessions: sessions,
		events:   events,
	}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) create(t *testing.T) uuid.UUID {
	t.Helper()
	rr := ts.do(t, http.MethodPost, "/v1/games", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	var resp GameResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.ID
}

func decodeResult(t *testing.T, rr *httptest.ResponseRecorder) game.Result {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	var res game.Result
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	return res
}

func TestGamesHandler_Create(t *testing.T) {
	ts := newTestServer()
	rr := ts.do(t, http.MethodPost, "/v1/games", "")

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var resp GameResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.ID == uuid.Nil {
		t.Error("Expected non-nil game ID")
	}
	if len(resp.State.Unlocked) != 1 || resp.State.Unlocked[0] != campus.Library {
		t.Errorf("Expected only the library unlocked, got %v", resp.State.Unlocked)
	}
	if ts.sessions.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", ts.sessions.Len())
	}
}

func TestGamesHandler_ReadAndDelete(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t)

	rr := ts.do(t, http.MethodGet, "/v1/games/"+id.String(), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodDelete, "/v1/games/"+id.String(), "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	rr = ts.do(t, http.MethodGet, "/v1/games/"+id.String(), "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", rr.Code)
	}
}

func TestGamesHandler_Errors(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t).String()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad id", http.MethodGet, "/v1/games/not-a-uuid", "", http.StatusBadRequest},
		{"unknown game", http.MethodGet, "/v1/games/" + uuid.NewString(), "", http.StatusNotFound},
		{"collection get", http.MethodGet, "/v1/games", "", http.StatusMethodNotAllowed},
		{"game put", http.MethodPut, "/v1/games/" + id, "", http.StatusMethodNotAllowed},
		{"unknown location", http.MethodGet, "/v1/games/" + id + "/scenes/moon_base", "", http.StatusNotFound},
		{"locked location", http.MethodGet, "/v1/games/" + id + "/scenes/tian", "", http.StatusConflict},
		{"action get", http.MethodGet, "/v1/games/" + id + "/actions/floor", "", http.StatusMethodNotAllowed},
		{"unknown action", http.MethodPost, "/v1/games/" + id + "/actions/dance", "", http.StatusNotFound},
		{"bad body", http.MethodPost, "/v1/games/" + id + "/actions/floor", "{", http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/v1/games/" + id + "/actions/floor", `{"elevator":3}`, http.StatusBadRequest},
		{"bad floor", http.MethodPost, "/v1/games/" + id + "/actions/floor", `{"floor":9}`, http.StatusBadRequest},
		{"gate locked", http.MethodPost, "/v1/games/" + id + "/actions/code", `{"answer":"9527"}`, http.StatusConflict},
		{"escort without accept", http.MethodPost, "/v1/games/" + id + "/actions/escort", `{}`, http.StatusBadRequest},
		{"half a squash roll", http.MethodPost, "/v1/games/" + id + "/actions/squash", `{"player":3}`, http.StatusBadRequest},
		{"unknown subresource", http.MethodGet, "/v1/games/" + id + "/inventory", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.want {
				t.Errorf("Expected status %d, got %d. Response body: %s", tt.want, rr.Code, rr.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("Expected an error body, got %q (%v)", rr.Body.String(), err)
			}
		})
	}
}

func TestGamesHandler_Playthrough(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t).String()
	base := "/v1/games/" + id

	res := decodeResult(t, ts.do(t, http.MethodPost, base+"/actions/floor", `{"floor":3}`))
	if !res.State.Has(progression.LibraryNote) {
		t.Fatalf("Expected the library note, got %v", res.State.Inventory)
	}

	rr := ts.do(t, http.MethodGet, base+"/scenes/tian", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var scene game.Scene
	if err := json.NewDecoder(rr.Body).Decode(&scene); err != nil {
		t.Fatalf("Failed to decode scene: %v", err)
	}
	if len(scene.Actions) != 1 || scene.Actions[0] != game.ActionCode {
		t.Errorf("Expected the code action, got %v", scene.Actions)
	}

	for i := 0; i < puzzle.HintThreshold; i++ {
		res = decodeResult(t, ts.do(t, http.MethodPost, base+"/actions/code", `{"answer":"0000"}`))
	}
	if res.Hint != campus.GateHint {
		t.Errorf("Expected the hint after %d failures, got %q", puzzle.HintThreshold, res.Hint)
	}

	steps := []struct {
		action string
		body   string
	}{
		{"code", `{"answer":"9527"}`},
		{"squash", `{"player":6,"opponent":3}`},
		{"escort", `{"accept":true}`},
		{"decrypt", `{"answer":"fubell"}`},
		{"bell", `{"choice":"A"}`},
		{"summon", ``},
	}
	for _, step := range steps {
		res = decodeResult(t, ts.do(t, http.MethodPost, base+"/actions/"+step.action, step.body))
		if res.Outcome != puzzle.Correct {
			t.Fatalf("%s: expected correct, got %s (%s)", step.action, res.Outcome, res.Message)
		}
	}
	if !res.State.SummonCompleted {
		t.Error("Expected the summon to be completed")
	}

	rr = ts.do(t, http.MethodGet, base+"/scenes/freshman_center", "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected the freshman center to be open, got %d", rr.Code)
	}
}

func TestGamesHandler_SquashRolledByServer(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t)
	s, _ := ts.sessions.Get(id)
	s.WithRoller(puzzle.NewFixedRoller(5, 2))

	ctx := context.Background()
	if _, err := s.SelectFloor(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitCode(ctx, campus.GateCode); err != nil {
		t.Fatal(err)
	}

	res := decodeResult(t, ts.do(t, http.MethodPost, "/v1/games/"+id.String()+"/actions/squash", ""))
	if res.Dice == nil || res.Dice.Player != 5 || res.Dice.Opponent != 2 {
		t.Fatalf("Expected dice 5 vs 2, got %+v", res.Dice)
	}
	if res.Outcome != puzzle.Correct {
		t.Errorf("Expected a win, got %s", res.Outcome)
	}
}

func TestGamesHandler_Events(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t).String()
	base := "/v1/games/" + id

	decodeResult(t, ts.do(t, http.MethodPost, base+"/actions/floor", `{"floor":3}`))

	read := func(path string) []string {
		rr := ts.do(t, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rr.Code)
		}
		var resp EventsResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode events: %v", err)
		}
		return resp.Events
	}

	peeked := read(base + "/events?peek=true")
	if len(peeked) != 2 {
		t.Fatalf("Expected 2 events, got %v", peeked)
	}
	drained := read(base + "/events")
	if len(drained) != 2 || drained[0] != peeked[0] {
		t.Errorf("Expected drained events to match peeked, got %v", drained)
	}
	if again := read(base + "/events"); len(again) != 0 {
		t.Errorf("Expected no events after drain, got %v", again)
	}
}

func TestGamesHandler_Hint(t *testing.T) {
	ts := newTestServer()
	id := ts.create(t).String()

	rr := ts.do(t, http.MethodGet, "/v1/games/"+id+"/hint", "")
	var resp HintResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode hint: %v", err)
	}
	if resp.Hint != campus.GateHint {
		t.Errorf("Expected gate hint, got %q", resp.Hint)
	}
}

func TestLocationsHandler(t *testing.T) {
	h := NewLocationsHandler(campus.Default(), testLogger())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/locations", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var c campus.Campus
	if err := json.NewDecoder(rr.Body).Decode(&c); err != nil {
		t.Fatalf("Failed to decode campus: %v", err)
	}
	if len(c.Locations) != len(campus.LocationKeys) {
		t.Errorf("Expected %d locations, got %d", len(campus.LocationKeys), len(c.Locations))
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/locations", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name      string
		redis     Pinger
		wantCode  int
		wantQueue string
	}{
		{"memory queue", nil, http.StatusOK, "memory"},
		{"redis up", fakePinger{}, http.StatusOK, "healthy"},
		{"redis down", fakePinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.redis, func() int { return 3 }, testLogger())
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode health response: %v", err)
			}
			if resp.Components["queue"] != tt.wantQueue {
				t.Errorf("Expected queue %q, got %v", tt.wantQueue, resp.Components["queue"])
			}
			if resp.Components["sessions"] != float64(3) {
				t.Errorf("Expected 3 sessions, got %v", resp.Components["sessions"])
			}
		})
	}
}

type failingQueue struct{ queue.MemoryQueue }

func (*failingQueue) Dequeue(context.Context, string) ([]string, error) {
	return nil, errors.New("queue down")
}

func (*failingQueue) Clear(context.Context, string) error {
	return errors.New("queue down")
}

func TestGamesHandler_QueueErrorsAreLoggedWithGameID(t *testing.T) {
	var buf strings.Builder
	log := slog.New(slog.NewTextHandler(&buf, nil))
	sessions := session.NewManager(campus.Default(), log)
	h := NewGamesHandler(sessions, &failingQueue{}, log)
	id := sessions.Create().ID()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/games/"+id.String()+"/events", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/games/"+id.String(), nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	out := buf.String()
	for _, want := range []string{
		"Failed to read story events",
		"Failed to clear story events",
		"game_id=" + id.String(),
		"error=\"queue down\"",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}
