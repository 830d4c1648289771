// Package progression holds the state of one game session: the inventory,
// the unlocked locations, per-location story stages and the summon flag.
//
// All mutations go through Store so the invariants hold no matter which
// presentation layer calls in: inventory and unlocks are insert-only sets,
// and the summon flag only flips once every required token is held.
package progression

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// Stage is a narrative checkpoint for one location.
type Stage string

// Coordinate is the player's displayed position. It carries no gameplay meaning.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Store is the single source of truth for a game session.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	inventory       mapset.Set[Item]
	unlocked        mapset.Set[string]
	stages          map[string]Stage
	visited         map[string]mapset.Set[Stage]
	summonCompleted bool
	position        Coordinate

	rules  []Rule
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRules registers automatic stage and item transitions.
func WithRules(rules ...Rule) Option {
	return func(s *Store) {
		s.rules = append(s.rules, rules...)
	}
}

// WithUnlocked marks locations as accessible from the start.
func WithUnlocked(keys ...string) Option {
	return func(s *Store) {
		for _, k := range keys {
			s.unlocked.Put(k)
		}
	}
}

// WithLogger sets the logger used for rule and summon diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		inventory: mapset.New[Item](),
		unlocked:  mapset.New[string](),
		stages:    make(map[string]Stage),
		visited:   make(map[string]mapset.Set[Stage]),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasItem reports whether the item is in the inventory.
func (s *Store) HasItem(item Item) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory.Has(item)
}

// AddItem inserts the item. It returns true only when the item was not held
// before; adding a held item changes nothing. Item rules fire on first insert.
func (s *Store) AddItem(item Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addItemLocked(item)
}

// IsUnlocked reports whether the location key is accessible.
func (s *Store) IsUnlocked(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlocked.Has(key)
}

// Unlock makes a location accessible. Unlocks are never reverted.
func (s *Store) Unlock(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlockLocked(key)
}

// HasAllTokens reports whether every required token is held.
func (s *Store) HasAllTokens() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasAllTokensLocked()
}

// AttemptSummon sets the summon flag if all tokens are held and returns the
// flag's value afterwards. An ineligible attempt is a no-op.
func (s *Store) AttemptSummon() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summonCompleted {
		return true
	}
	if !s.hasAllTokensLocked() {
		s.logger.Warn("Summon rejected: missing tokens", "missing", s.missingTokensLocked())
		return false
	}
	s.summonCompleted = true
	s.logger.Info("Summon completed")
	return true
}

// SummonCompleted reports whether the summon has happened.
func (s *Store) SummonCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summonCompleted
}

// MissingTokens lists required tokens not yet held, in story order.
func (s *Store) MissingTokens() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.missingTokensLocked()
}

// SetStage records the current stage for a location, marks it visited and
// fires matching stage rules. It returns the stage after any rule transition.
func (s *Store) SetStage(location string, stage Stage) Stage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStageLocked(location, stage)
	for _, r := range s.rules {
		if r.When.matchesStage(location, stage) {
			s.logger.Debug("Stage rule fired", "rule", r.ID, "location", location, "stage", stage)
			s.applyLocked(r.Then, location)
		}
	}
	return s.stages[location]
}

// Stage returns the current stage for a location.
func (s *Store) Stage(location string) (Stage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stage, ok := s.stages[location]
	return stage, ok
}

// RecordStageVisited adds a stage to the location's explored set.
func (s *Store) RecordStageVisited(location string, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitLocked(location, stage)
}

// HasVisited reports whether the stage was ever recorded for the location.
func (s *Store) HasVisited(location string, stage Stage) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visited[location]
	return ok && v.Has(stage)
}

// Position returns the displayed player position.
func (s *Store) Position() Coordinate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

// MoveTo updates the displayed player position.
func (s *Store) MoveTo(c Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = c
}

// Inventory returns the held items in story order.
func (s *Store) Inventory() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventoryLocked()
}

// Unlocked returns the unlocked location keys, sorted.
func (s *Store) Unlocked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unlockedLocked()
}

func (s *Store) addItemLocked(item Item) bool {
	if !item.Valid() {
		s.logger.Warn("Ignoring unknown item", "item", string(item))
		return false
	}
	if s.inventory.Has(item) {
		return false
	}
	s.inventory.Put(item)
	s.logger.Debug("Item added", "item", string(item))

	for _, r := range s.rules {
		if r.When.matchesItem(item) {
			s.logger.Debug("Item rule fired", "rule", r.ID, "item", string(item))
			s.applyLocked(r.Then, "")
		}
	}
	return true
}

func (s *Store) unlockLocked(key string) bool {
	if key == "" || s.unlocked.Has(key) {
		return false
	}
	s.unlocked.Put(key)
	s.logger.Debug("Location unlocked", "location", key)
	return true
}

// applyLocked runs a rule's effects. The stage transition does not re-fire
// stage rules; granted items may fire item rules, each at most once.
func (s *Store) applyLocked(then RuleThen, location string) {
	if then.Stage != "" {
		loc := then.Location
		if loc == "" {
			loc = location
		}
		if loc != "" {
			s.setStageLocked(loc, then.Stage)
		}
	}
	for _, key := range then.Unlock {
		s.unlockLocked(key)
	}
	for _, item := range then.Grant {
		s.addItemLocked(item)
	}
}

func (s *Store) setStageLocked(location string, stage Stage) {
	s.stages[location] = stage
	s.visitLocked(location, stage)
}

func (s *Store) visitLocked(location string, stage Stage) {
	v, ok := s.visited[location]
	if !ok {
		v = mapset.New[Stage]()
		s.visited[location] = v
	}
	v.Put(stage)
}

func (s *Store) hasAllTokensLocked() bool {
	for _, t := range requiredTokens {
		if !s.inventory.Has(t) {
			return false
		}
	}
	return true
}

func (s *Store) missingTokensLocked() []Item {
	var missing []Item
	for _, t := range requiredTokens {
		if !s.inventory.Has(t) {
			missing = append(missing, t)
		}
	}
	return missing
}

func (s *Store) inventoryLocked() []Item {
	items := make([]Item, 0, s.inventory.Size())
	s.inventory.Each(func(i Item) {
		items = append(items, i)
	})
	slices.SortFunc(items, func(a, b Item) int {
		return a.order() - b.order()
	})
	return items
}

func (s *Store) unlockedLocked() []string {
	keys := make([]string, 0, s.unlocked.Size())
	s.unlocked.Each(func(k string) {
		keys = append(keys, k)
	})
	slices.Sort(keys)
	return keys
}
