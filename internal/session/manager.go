// Package session keeps the live game sessions for the API. Sessions are held
// in memory only and are gone after a restart.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/logger"
	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/game"
	"github.com/jwebster45206/campus-quest/pkg/puzzle"
)

// Manager is the registry of active sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*game.Session
	created  int64

	campus *campus.Campus
	queue  game.EventQueue
	ttl    time.Duration
	seed   int64
	now    func() time.Time
	logger *slog.Logger
}

// clearer is implemented by queues that can drop a game's pending events.
type clearer interface {
	Clear(ctx context.Context, gameID string) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithQueue sets the story event queue given to new sessions. If the queue
// can Clear, Sweep drops the pending events of evicted sessions.
func WithQueue(q game.EventQueue) Option {
	return func(m *Manager) { m.queue = q }
}

// WithTTL sets how long a session may sit idle before Sweep removes it.
// Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithSeed makes dice rolls reproducible. Each session gets seed plus its
// creation index. Zero means a time based seed.
func WithSeed(seed int64) Option {
	return func(m *Manager) { m.seed = seed }
}

// WithClock replaces the clock used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates an empty registry for the given campus.
func NewManager(c *campus.Campus, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[uuid.UUID]*game.Session),
		campus:   c,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session and registers it.
func (m *Manager) Create() *game.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := game.NewSession(m.campus, m.logger).WithClock(m.now)
	if m.queue != nil {
		s.WithQueue(m.queue)
	}
	if m.seed != 0 {
		s.WithRoller(puzzle.NewRoller(m.seed + m.created))
	}
	m.created++
	m.sessions[s.ID()] = s

	logger.WithGameID(m.logger, s.ID().String()).Info("Session created", "active", len(m.sessions))
	return s
}

// Get returns a registered session.
func (m *Manager) Get(id uuid.UUID) (*game.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete removes a session. It reports whether the session existed.
func (m *Manager) Delete(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	logger.WithGameID(m.logger, id.String()).Info("Session deleted")
	return true
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the TTL, clears their pending
// story events and returns how many were removed.
func (m *Manager) Sweep(now time.Time) int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	var evicted []uuid.UUID
	for id, s := range m.sessions {
		if now.Sub(s.LastActive()) > m.ttl {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	active := len(m.sessions)
	m.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}
	if q, ok := m.queue.(clearer); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, id := range evicted {
			if err := q.Clear(ctx, id.String()); err != nil {
				logger.WithError(logger.WithGameID(m.logger, id.String()), err).
					Warn("Failed to clear story events of swept session")
			}
		}
	}
	m.logger.Info("Swept idle sessions", "removed", len(evicted), "active", active)
	return len(evicted)
}

// Run sweeps on every tick until ctx is cancelled.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || m.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}
