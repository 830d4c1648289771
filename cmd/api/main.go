package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/campus-quest/internal/config"
	"github.com/jwebster45206/campus-quest/internal/handlers"
	"github.com/jwebster45206/campus-quest/internal/logger"
	"github.com/jwebster45206/campus-quest/internal/middleware"
	"github.com/jwebster45206/campus-quest/internal/services/queue"
	"github.com/jwebster45206/campus-quest/internal/session"
	"github.com/jwebster45206/campus-quest/pkg/campus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Campus Quest API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"session_ttl", cfg.SessionTTL,
		"redis", cfg.RedisURL != "")

	c := campus.Default()
	if err := c.Validate(); err != nil {
		log.Error("Campus data is invalid", "error", err)
		os.Exit(1)
	}

	var (
		events      queue.Queue
		redisClient *queue.Client
	)
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		redisClient, err = queue.NewClient(ctx, cfg.RedisURL, log)
		cancel()
		if err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		events = queue.NewStoryEventQueue(redisClient, log)
	} else {
		log.Info("REDIS_URL not set, story events are kept in memory")
		events = queue.NewMemoryQueue()
	}

	sessions := session.NewManager(c, log,
		session.WithQueue(events),
		session.WithTTL(cfg.SessionTTL),
		session.WithSeed(cfg.RNGSeed))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, cfg.SweepInterval)

	var pinger handlers.Pinger
	if redisClient != nil {
		pinger = redisClient
	}

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(pinger, sessions.Len, log))
	mux.Handle("/v1/locations", handlers.NewLocationsHandler(c, log))

	gamesHandler := handlers.NewGamesHandler(sessions, events, log)
	mux.Handle("/v1/games", gamesHandler)
	mux.Handle("/v1/games/", gamesHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")
	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis connection", "error", err)
		}
	}

	log.Info("Server exited")
}
