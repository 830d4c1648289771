package queue

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), logger)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create queue client: %v", err)
	}

	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func queues(t *testing.T) map[string]Queue {
	client, _ := setupTestRedis(t)
	return map[string]Queue{
		"redis":  NewStoryEventQueue(client, client.logger),
		"memory": NewMemoryQueue(),
	}
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gameID := "game-1"

			require.NoError(t, q.Enqueue(ctx, gameID, "Obtained Mysterious Note"))
			require.NoError(t, q.Enqueue(ctx, gameID, "Unlocked Der-Tian Hall"))

			depth, err := q.Depth(ctx, gameID)
			require.NoError(t, err)
			assert.Equal(t, 2, depth)

			events, err := q.Dequeue(ctx, gameID)
			require.NoError(t, err)
			assert.Equal(t, []string{"Obtained Mysterious Note", "Unlocked Der-Tian Hall"}, events)

			depth, err = q.Depth(ctx, gameID)
			require.NoError(t, err)
			assert.Zero(t, depth)

			events, err = q.Dequeue(ctx, gameID)
			require.NoError(t, err)
			assert.Empty(t, events)
		})
	}
}

func TestQueue_PeekDoesNotDrain(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			gameID := "game-peek"
			for _, e := range []string{"a", "b", "c"} {
				require.NoError(t, q.Enqueue(ctx, gameID, e))
			}

			events, err := q.Peek(ctx, gameID, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, events)

			events, err = q.Peek(ctx, gameID, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, events)

			depth, err := q.Depth(ctx, gameID)
			require.NoError(t, err)
			assert.Equal(t, 3, depth)
		})
	}
}

func TestQueue_GamesAreIsolated(t *testing.T) {
	for name, q := range queues(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, q.Enqueue(ctx, "one", "x"))
			require.NoError(t, q.Enqueue(ctx, "two", "y"))

			require.NoError(t, q.Clear(ctx, "one"))

			depth, err := q.Depth(ctx, "one")
			require.NoError(t, err)
			assert.Zero(t, depth)

			events, err := q.Peek(ctx, "two", 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"y"}, events)
		})
	}
}

func TestStoryEventQueue_Key(t *testing.T) {
	client, mr := setupTestRedis(t)
	q := NewStoryEventQueue(client, client.logger)

	require.NoError(t, q.Enqueue(context.Background(), "abc", "hello"))
	list, err := mr.List("story-events:abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, list)
}

func TestClient_PingAfterClose(t *testing.T) {
	client, mr := setupTestRedis(t)
	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewClient_BadURL(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	_, err := NewClient(context.Background(), "not-a-url", logger)
	assert.Error(t, err)
}
