package puzzle

import (
	"sync"

	"github.com/jwebster45206/d20"
)

// DieSides is the number of faces on a contest die.
const DieSides = 6

// Verdict is the player's result in a dice contest.
type Verdict string

const (
	Win  Verdict = "win"
	Loss Verdict = "loss"
	Draw Verdict = "tie"
)

// ContestResult is the authoritative result of one dice contest.
type ContestResult struct {
	Player   int     `json:"player"`
	Opponent int     `json:"opponent"`
	Verdict  Verdict `json:"verdict"`
}

// Outcome maps the verdict onto the common result categories.
func (r ContestResult) Outcome() Outcome {
	switch r.Verdict {
	case Win:
		return Correct
	case Draw:
		return Tie
	default:
		return Incorrect
	}
}

// Won reports whether the player beat the opponent.
func (r ContestResult) Won() bool {
	return r.Verdict == Win
}

// Contest resolves a contest. The player wins only on a strictly higher roll.
func Contest(player, opponent int) ContestResult {
	player, opponent = clampDie(player), clampDie(opponent)
	res := ContestResult{Player: player, Opponent: opponent}
	switch {
	case player > opponent:
		res.Verdict = Win
	case player == opponent:
		res.Verdict = Draw
	default:
		res.Verdict = Loss
	}
	return res
}

func clampDie(v int) int {
	return min(max(v, 1), DieSides)
}

// Roller draws a uniform die value in 1..DieSides.
type Roller interface {
	Roll() int
}

// RandRoller is a Roller backed by a d20 roller. It is safe for concurrent use;
// the d20 roller alone is not.
type RandRoller struct {
	mu     sync.Mutex
	roller *d20.Roller
}

// NewRoller returns a roller seeded with seed.
func NewRoller(seed int64) *RandRoller {
	return &RandRoller{roller: d20.NewRoller(seed)}
}

// NewRandomRoller returns a roller seeded from the clock.
func NewRandomRoller() *RandRoller {
	return &RandRoller{roller: d20.NewRandomRoller()}
}

// Roll returns a value in 1..DieSides.
func (r *RandRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.roller.Dice(1, DieSides).Roll()
	if err != nil {
		// Only a zero count or zero faces fails, and both are constants here.
		return 1
	}
	return out.Value
}

// FixedRoller returns its values in order and then repeats the last one.
type FixedRoller struct {
	mu     sync.Mutex
	values []int
	next   int
}

// NewFixedRoller returns a roller that replays values.
func NewFixedRoller(values ...int) *FixedRoller {
	return &FixedRoller{values: values}
}

// Roll returns the next fixed value, or 1 when there are none.
func (f *FixedRoller) Roll() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 1
	}
	v := f.values[min(f.next, len(f.values)-1)]
	f.next++
	return v
}

// RollContest makes one authoritative draw for each side and resolves it.
func RollContest(r Roller) ContestResult {
	player := r.Roll()
	opponent := r.Roll()
	return Contest(player, opponent)
}
