package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := LoggerWith(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("locked"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/games/x/actions/code", nil))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rr.Code)
	}
	out := buf.String()
	for _, want := range []string{"level=WARN", "method=POST", "path=/v1/games/x/actions/code", "status=409", "bytes=6"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}

func TestLoggerWith_DefaultStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	h := LoggerWith(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if !strings.Contains(buf.String(), "status=200") || !strings.Contains(buf.String(), "level=INFO") {
		t.Errorf("Expected INFO line with status=200, got %s", buf.String())
	}
}

func TestLogger_UsesDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/v1/games/x", nil))

	out := buf.String()
	for _, want := range []string{"level=INFO", "method=DELETE", "status=204"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log to contain %q, got %s", want, out)
		}
	}
}
