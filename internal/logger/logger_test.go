package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/campus-quest/internal/config"
)

func TestSetup_ProductionUsesJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := setup(&buf, &config.Config{Environment: "production", LogLevel: slog.LevelInfo})
	WithGameID(log, "g-1").Info("Session created")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Session created", line["msg"])
	assert.Equal(t, "g-1", line["game_id"])
}

func TestSetup_DevelopmentUsesText(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := setup(&buf, &config.Config{Environment: "development", LogLevel: slog.LevelWarn})
	log.Info("hidden")
	WithError(log, errors.New("boom")).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "msg=shown"))
	assert.Contains(t, out, "error=boom")
}
