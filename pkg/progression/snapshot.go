package progression

import "slices"

// Snapshot is a read-only copy of the store for presentation and the API.
type Snapshot struct {
	Inventory       []Item             `json:"inventory"`
	Unlocked        []string           `json:"unlocked"`
	Stages          map[string]Stage   `json:"stages,omitempty"`
	Visited         map[string][]Stage `json:"visited,omitempty"`
	SummonCompleted bool               `json:"summon_completed"`
	HasAllTokens    bool               `json:"has_all_tokens"`
	Position        Coordinate         `json:"position"`
}

// Snapshot copies the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Inventory:       s.inventoryLocked(),
		Unlocked:        s.unlockedLocked(),
		Stages:          make(map[string]Stage, len(s.stages)),
		Visited:         make(map[string][]Stage, len(s.visited)),
		SummonCompleted: s.summonCompleted,
		HasAllTokens:    s.hasAllTokensLocked(),
		Position:        s.position,
	}
	for loc, stage := range s.stages {
		snap.Stages[loc] = stage
	}
	for loc, set := range s.visited {
		stages := make([]Stage, 0, set.Size())
		set.Each(func(st Stage) {
			stages = append(stages, st)
		})
		slices.Sort(stages)
		snap.Visited[loc] = stages
	}
	return snap
}

// Has reports whether the snapshot's inventory holds the item.
func (snap Snapshot) Has(item Item) bool {
	return slices.Contains(snap.Inventory, item)
}

// IsUnlocked reports whether the snapshot lists the location as unlocked.
func (snap Snapshot) IsUnlocked(key string) bool {
	return slices.Contains(snap.Unlocked, key)
}
