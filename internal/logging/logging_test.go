package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/models"
	"github.com/ahmetcoskunkizilkaya/recipe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerFansOut(t *testing.T) {
	var info, errOnly bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errOnly, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	logger := slog.New(h).With("component", "test")

	logger.Info("hello")
	logger.Error("boom")

	assert.Contains(t, info.String(), "hello")
	assert.Contains(t, info.String(), "component=test")
	assert.NotContains(t, errOnly.String(), "hello")
	assert.Contains(t, errOnly.String(), "boom")
}

func TestMultiHandlerKeepsDeliveringOnError(t *testing.T) {
	var out bytes.Buffer
	h := NewMultiHandler(failingHandler{}, slog.NewTextHandler(&out, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
	assert.Error(t, err)
	assert.Contains(t, out.String(), "boom")
}

func TestPGHandlerPersistsErrors(t *testing.T) {
	cfg := testutil.Config(t)
	db := testutil.NewDB(t, cfg)

	h := NewPGHandler(db)
	logger := slog.New(h).With("request_id", "req-1")

	logger.Info("ignored")
	logger.Error("Failed to create recipe",
		"user_id", "u-1",
		"method", "POST",
		"path", "/api/recipes",
		"error", "disk full",
		"latency_ms", 12,
		"recipe_id", 7,
	)
	h.Stop()

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)

	entry := logs[0]
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)
	assert.Equal(t, "POST", entry.Method)
	assert.Equal(t, "/api/recipes", entry.Path)
	assert.Equal(t, "disk full", entry.Error)
	assert.Equal(t, 12, entry.LatencyMs)
	assert.JSONEq(t, `{"recipe_id":7}`, string(entry.Extra))
}

func TestPurgeBefore(t *testing.T) {
	cfg := testutil.Config(t)
	db := testutil.NewDB(t, cfg)

	h := NewPGHandler(db)
	old := slog.NewRecord(time.Now().Add(-40*24*time.Hour), slog.LevelError, "old", 0)
	recent := slog.NewRecord(time.Now(), slog.LevelError, "recent", 0)
	require.NoError(t, h.Handle(context.Background(), old))
	require.NoError(t, h.Handle(context.Background(), recent))
	h.Stop()

	assert.Equal(t, int64(1), PurgeBefore(db, time.Now().Add(-logRetention)))

	var remaining []models.SystemLog
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "recent", remaining[0].Message)
}
