// Command enqueue-event pushes a story event onto a game's Redis queue so the
// console can be checked without playing up to it.
//
//	enqueue-event -game <id> "A bell rings somewhere across the lake."
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/services/queue"
)

func main() {
	gameFlag := flag.String("game", "", "Game ID to enqueue for")
	redisFlag := flag.String("redis", "", "Redis URL (defaults to REDIS_URL, then redis://localhost:6379)")
	flag.Parse()

	gameID, err := uuid.Parse(*gameFlag)
	if err != nil {
		log.Fatalf("Invalid -game %q: %v", *gameFlag, err)
	}
	event := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if event == "" {
		event = "A mysterious figure appears by the library steps."
	}

	redisURL := *redisFlag
	if redisURL == "" {
		redisURL = os.Getenv("REDIS_URL")
	}
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := queue.NewClient(ctx, redisURL, logger)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer func() { _ = client.Close() }()

	events := queue.NewStoryEventQueue(client, logger)
	if err := events.Enqueue(ctx, gameID.String(), event); err != nil {
		log.Fatal("Failed to enqueue event: ", err)
	}

	depth, err := events.Depth(ctx, gameID.String())
	if err != nil {
		log.Fatal("Failed to get queue depth: ", err)
	}

	fmt.Printf("✅ Enqueued story event for game %s\n", gameID)
	fmt.Printf("📊 Queue depth: %d events\n", depth)
}
