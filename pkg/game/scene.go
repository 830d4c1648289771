package game

import (
	"maps"

	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/progression"
)

// Scene describes a location as the player currently sees it.
type Scene struct {
	Location    string                 `json:"location"`
	Name        string                 `json:"name"`
	Subtitle    string                 `json:"subtitle,omitempty"`
	Description string                 `json:"description"`
	Coordinate  progression.Coordinate `json:"coordinate"`
	Stage       progression.Stage      `json:"stage,omitempty"`
	Status      string                 `json:"status,omitempty"`
	Prompt      string                 `json:"prompt,omitempty"`
	Choices     map[string]string      `json:"choices,omitempty"`
	Actions     []Action               `json:"actions"`
}

// scene builds the view for loc. The caller holds s.mu.
func (s *Session) scene(loc campus.Location) *Scene {
	sc := &Scene{
		Location:    loc.Key,
		Name:        loc.Name,
		Subtitle:    loc.Subtitle,
		Description: loc.Description,
		Coordinate:  loc.Coordinate,
		Status:      loc.Idle,
		Actions:     []Action{},
	}
	if stage, ok := s.store.Stage(loc.Key); ok {
		sc.Stage = stage
	}

	has := s.store.HasItem
	switch loc.Key {
	case campus.Library:
		sc.Prompt = campus.FloorPrompt
		sc.Actions = append(sc.Actions, ActionFloor)

	case campus.Tian:
		if has(progression.LibraryNote) && !has(progression.SquashRacket) {
			sc.Status = campus.GatePrompt
			sc.Prompt = campus.GateQuestion
			sc.Actions = append(sc.Actions, ActionCode)
		}

	case campus.SportsCenter:
		if has(progression.SquashRacket) && !has(progression.McdCoupon) {
			sc.Prompt = campus.SquashPrompt
			sc.Actions = append(sc.Actions, ActionSquash)
		}

	case campus.ActivityCenter:
		if has(progression.McdCoupon) && !has(progression.DecryptionKey) {
			sc.Prompt = campus.EscortPrompt
			sc.Actions = append(sc.Actions, ActionEscort)
		}

	case campus.AstronomyMath:
		if has(progression.DecryptionKey) && !has(progression.FuBellClue) {
			sc.Prompt = campus.DecryptPrompt
			sc.Actions = append(sc.Actions, ActionDecrypt)
		}

	case campus.FuBell:
		switch {
		case has(progression.FuBellToken):
			sc.Status = campus.BellDone
		case has(progression.FuBellClue):
			sc.Status = campus.BellPrompt
			sc.Prompt = campus.BellQuestion
			sc.Choices = maps.Clone(campus.BellChoices)
			sc.Actions = append(sc.Actions, ActionBell)
		}

	case campus.LakePavilion:
		switch {
		case s.store.SummonCompleted():
			sc.Status = campus.SummonDone
		case s.store.HasAllTokens():
			sc.Prompt = campus.SummonPrompt
			sc.Actions = append(sc.Actions, ActionSummon)
		}

	case campus.FreshmanCenter:
		if s.store.SummonCompleted() {
			sc.Status = campus.Certificate
		}
	}
	return sc
}
