// Package queue holds the per-game story event queue. Events are appended as
// the player earns items and unlocks places, and drained by the API.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Queue is the surface shared by the Redis and in-memory queues.
type Queue interface {
	Enqueue(ctx context.Context, gameID, eventPrompt string) error
	Dequeue(ctx context.Context, gameID string) ([]string, error)
	Peek(ctx context.Context, gameID string, limit int) ([]string, error)
	Clear(ctx context.Context, gameID string) error
	Depth(ctx context.Context, gameID string) (int, error)
}

// StoryEventQueue keeps one Redis list per game.
type StoryEventQueue struct {
	client *Client
	logger *slog.Logger
}

// NewStoryEventQueue creates a Redis backed story event queue.
func NewStoryEventQueue(client *Client, logger *slog.Logger) *StoryEventQueue {
	return &StoryEventQueue{
		client: client,
		logger: logger,
	}
}

func queueKey(gameID string) string {
	return "story-events:" + gameID
}

// Enqueue appends an event to the game's queue.
func (q *StoryEventQueue) Enqueue(ctx context.Context, gameID, eventPrompt string) error {
	if err := q.client.rdb.RPush(ctx, queueKey(gameID), eventPrompt).Err(); err != nil {
		return fmt.Errorf("failed to enqueue story event: %w", err)
	}
	q.logger.Debug("Story event enqueued", "game_id", gameID, "event", eventPrompt)
	return nil
}

// Dequeue removes and returns every queued event for the game, oldest first.
func (q *StoryEventQueue) Dequeue(ctx context.Context, gameID string) ([]string, error) {
	key := queueKey(gameID)

	var lrange *redis.StringSliceCmd
	_, err := q.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to dequeue story events: %w", err)
	}
	return lrange.Val(), nil
}

// Peek returns up to limit events without removing them. A limit of zero or
// less returns everything.
func (q *StoryEventQueue) Peek(ctx context.Context, gameID string, limit int) ([]string, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	events, err := q.client.rdb.LRange(ctx, queueKey(gameID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek story events: %w", err)
	}
	return events, nil
}

// Clear drops every event for the game.
func (q *StoryEventQueue) Clear(ctx context.Context, gameID string) error {
	if err := q.client.rdb.Del(ctx, queueKey(gameID)).Err(); err != nil {
		return fmt.Errorf("failed to clear story event queue: %w", err)
	}
	return nil
}

// Depth returns how many events are waiting.
func (q *StoryEventQueue) Depth(ctx context.Context, gameID string) (int, error) {
	n, err := q.client.rdb.LLen(ctx, queueKey(gameID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(n), nil
}
