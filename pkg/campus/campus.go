// Package campus defines the fixed campus map: locations, stages, the rule
// table that drives automatic unlocks, and the narrative text for each beat.
package campus

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/jwebster45206/campus-quest/pkg/progression"
)

// Location keys.
const (
	Library        = "library"
	Tian           = "tian"
	SportsCenter   = "sports_center"
	ActivityCenter = "activity_center"
	AstronomyMath  = "astronomy_math"
	FuBell         = "fu_bell"
	LakePavilion   = "lake_pavilion"
	FreshmanCenter = "freshman_center"
)

// LocationKeys lists every location in story order.
var LocationKeys = []string{
	Library,
	Tian,
	SportsCenter,
	ActivityCenter,
	AstronomyMath,
	FuBell,
	LakePavilion,
	FreshmanCenter,
}

// Library stages.
const (
	Basement    progression.Stage = "basement"
	FirstFloor  progression.Stage = "firstFloor"
	SecondFloor progression.Stage = "secondFloor"
	ThirdFloor  progression.Stage = "thirdFloor"
	HintFound   progression.Stage = "hintFound"
)

// Arrived is recorded for every location the player has entered.
const Arrived progression.Stage = "arrived"

// BasementFloor is the button number the library uses for its basement.
const BasementFloor = 4

//go:embed campus.json
var defaultData []byte

// Location is a fixed place on the campus map.
type Location struct {
	Key         string                 `json:"key"`
	Name        string                 `json:"name"`
	Subtitle    string                 `json:"subtitle,omitempty"`
	Description string                 `json:"description"`
	Coordinate  progression.Coordinate `json:"coordinate"`
	Idle        string                 `json:"idle,omitempty"`
	Floors      map[string]string      `json:"floors,omitempty"`
}

// FloorDescription returns the flavor text for a library floor.
func (l Location) FloorDescription(floor int) string {
	return l.Floors[strconv.Itoa(floor)]
}

// Campus is the full map.
type Campus struct {
	Name            string     `json:"name"`
	OpeningLocation string     `json:"opening_location"`
	Locations       []Location `json:"locations"`
}

// Load decodes campus data. Unknown fields are rejected.
func Load(r io.Reader) (*Campus, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var c Campus
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to decode campus data: %w", err)
	}
	return &c, nil
}

// Default returns the embedded campus. It panics if the embedded data is broken,
// which the package tests rule out.
func Default() *Campus {
	c, err := Load(bytes.NewReader(defaultData))
	if err != nil {
		panic(err)
	}
	return c
}

// Location looks up a location by key.
func (c *Campus) Location(key string) (Location, bool) {
	for _, l := range c.Locations {
		if l.Key == key {
			return l, true
		}
	}
	return Location{}, false
}

// Validate checks that every location is present and well formed.
func (c *Campus) Validate() error {
	var errs []error

	if c.Name == "" {
		errs = append(errs, errors.New("campus name is required"))
	}

	seen := make(map[string]bool, len(c.Locations))
	for i, l := range c.Locations {
		if l.Key == "" {
			errs = append(errs, fmt.Errorf("locations[%d]: key is required", i))
			continue
		}
		if seen[l.Key] {
			errs = append(errs, fmt.Errorf("locations[%d]: duplicate key %q", i, l.Key))
		}
		seen[l.Key] = true

		if l.Name == "" {
			errs = append(errs, fmt.Errorf("location %q: name is required", l.Key))
		}
		if l.Coordinate.Lat < -90 || l.Coordinate.Lat > 90 || l.Coordinate.Lon < -180 || l.Coordinate.Lon > 180 {
			errs = append(errs, fmt.Errorf("location %q: coordinate out of range", l.Key))
		}
	}

	for _, key := range LocationKeys {
		if !seen[key] {
			errs = append(errs, fmt.Errorf("missing location %q", key))
		}
	}

	if c.OpeningLocation == "" {
		errs = append(errs, errors.New("opening_location is required"))
	} else if !seen[c.OpeningLocation] {
		errs = append(errs, fmt.Errorf("opening_location %q is not a location", c.OpeningLocation))
	}

	if lib, ok := c.Location(Library); ok {
		for floor := 1; floor <= BasementFloor; floor++ {
			if lib.FloorDescription(floor) == "" {
				errs = append(errs, fmt.Errorf("library floor %d has no description", floor))
			}
		}
	}

	return errors.Join(errs...)
}

// FloorStage maps a library floor button to its stage.
func FloorStage(floor int) (progression.Stage, bool) {
	switch floor {
	case 1:
		return FirstFloor, true
	case 2:
		return SecondFloor, true
	case 3:
		return ThirdFloor, true
	case BasementFloor:
		return Basement, true
	default:
		return "", false
	}
}

// Rules returns the automatic transitions for the campus story.
func Rules() []progression.Rule {
	return []progression.Rule{
		{
			ID:   "library_third_floor",
			When: progression.RuleWhen{Location: Library, Stage: ThirdFloor},
			Then: progression.RuleThen{
				Stage:  HintFound,
				Unlock: []string{Tian},
				Grant:  []progression.Item{progression.LibraryNote},
			},
		},
		unlockOn("racket_opens_sports_center", progression.SquashRacket, SportsCenter),
		unlockOn("coupon_opens_activity_center", progression.McdCoupon, ActivityCenter),
		unlockOn("key_opens_astronomy_math", progression.DecryptionKey, AstronomyMath),
		unlockOn("clue_opens_fu_bell", progression.FuBellClue, FuBell),
		unlockOn("relic_opens_lake_pavilion", progression.FuBellToken, LakePavilion),
	}
}

func unlockOn(id string, item progression.Item, location string) progression.Rule {
	return progression.Rule{
		ID:   id,
		When: progression.RuleWhen{Item: item},
		Then: progression.RuleThen{Unlock: []string{location}},
	}
}

// NewStore returns a store for a fresh session: campus rules installed and
// the opening location unlocked.
func (c *Campus) NewStore(logger *slog.Logger) *progression.Store {
	return progression.NewStore(
		progression.WithLogger(logger),
		progression.WithRules(Rules()...),
		progression.WithUnlocked(c.OpeningLocation),
	)
}
