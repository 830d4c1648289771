// Package game runs one play-through of the campus story on top of a
// progression store. Every location interaction is checked against the store
// before it is allowed to mutate anything.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/pkg/campus"
	"github.com/jwebster45206/campus-quest/pkg/progression"
	"github.com/jwebster45206/campus-quest/pkg/puzzle"
)

var (
	ErrUnknownLocation = errors.New("unknown location")
	ErrLocked          = errors.New("location is locked")
	ErrUnavailable     = errors.New("action is not available")
	ErrUnknownChoice   = errors.New("unknown choice")
)

// Action names a player interaction.
type Action string

const (
	ActionFloor   Action = "floor"
	ActionCode    Action = "code"
	ActionSquash  Action = "squash"
	ActionEscort  Action = "escort"
	ActionDecrypt Action = "decrypt"
	ActionBell    Action = "bell"
	ActionSummon  Action = "summon"
)

// EventQueue receives story events as they happen.
type EventQueue interface {
	Enqueue(ctx context.Context, gameID, eventPrompt string) error
}

// Result is what a single action produced.
type Result struct {
	Action   Action                `json:"action"`
	Outcome  puzzle.Outcome        `json:"outcome"`
	Message  string                `json:"message"`
	Hint     string                `json:"hint,omitempty"`
	Attempts int                   `json:"attempts,omitempty"`
	Dice     *puzzle.ContestResult `json:"dice,omitempty"`
	Granted  []progression.Item    `json:"granted,omitempty"`
	Unlocked []string              `json:"unlocked,omitempty"`
	State    progression.Snapshot  `json:"state"`
}

// Session is one game. It is safe for concurrent use; actions are serialized.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	campus   *campus.Campus
	store    *progression.Store
	roller   puzzle.Roller
	queue    EventQueue
	logger   *slog.Logger
	attempts map[Action]int

	now        func() time.Time
	lastActive time.Time
}

// NewSession starts a game on the given campus with a fresh store.
func NewSession(c *campus.Campus, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New()
	logger = logger.With("game_id", id.String())

	s := &Session{
		id:       id,
		campus:   c,
		store:    c.NewStore(logger),
		roller:   puzzle.NewRandomRoller(),
		logger:   logger,
		attempts: make(map[Action]int),
		now:      time.Now,
	}
	s.lastActive = s.now()
	if start, ok := c.Location(c.OpeningLocation); ok {
		s.store.MoveTo(start.Coordinate)
	}
	return s
}

// WithRoller replaces the dice source.
func (s *Session) WithRoller(r puzzle.Roller) *Session {
	s.roller = r
	return s
}

// WithQueue sets where story events are published.
func (s *Session) WithQueue(q EventQueue) *Session {
	s.queue = q
	return s
}

// WithClock replaces the clock used for idle tracking.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastActive = now()
	return s
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Store exposes the underlying progression store.
func (s *Session) Store() *progression.Store {
	return s.store
}

// Snapshot returns a copy of the current progression state.
func (s *Session) Snapshot() progression.Snapshot {
	return s.store.Snapshot()
}

// Attempts returns the number of failed answers for a puzzle.
func (s *Session) Attempts(a Action) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[a]
}

// LastActive returns when the session last handled a call.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Hint returns the gate hint. It is always available.
func (s *Session) Hint() string {
	return campus.GateHint
}

// Visit moves the player to a location and describes it.
func (s *Session) Visit(ctx context.Context, key string) (*Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	loc, err := s.enter(key)
	if err != nil {
		return nil, err
	}
	s.store.MoveTo(loc.Coordinate)
	s.store.RecordStageVisited(key, campus.Arrived)
	return s.scene(loc), nil
}

// SelectFloor takes the library elevator to a floor. Floor 4 is the basement.
func (s *Session) SelectFloor(ctx context.Context, floor int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	loc, err := s.enter(campus.Library)
	if err != nil {
		return nil, err
	}
	stage, ok := campus.FloorStage(floor)
	if !ok {
		return nil, fmt.Errorf("floor %d: %w", floor, ErrUnknownChoice)
	}

	return s.apply(ctx, ActionFloor, func() (puzzle.Outcome, string) {
		hadNote := s.store.HasItem(progression.LibraryNote)
		s.store.SetStage(campus.Library, stage)

		msg := loc.FloorDescription(floor)
		if !hadNote && s.store.HasItem(progression.LibraryNote) {
			msg += "\n\n" + campus.NoteFound
		}
		return puzzle.Correct, msg
	}), nil
}

// SubmitCode enters a code at the Der-Tian Hall gate.
func (s *Session) SubmitCode(ctx context.Context, code string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.Tian, ActionCode, progression.LibraryNote, progression.SquashRacket); err != nil {
		return nil, err
	}

	res := s.apply(ctx, ActionCode, func() (puzzle.Outcome, string) {
		if puzzle.CheckCode(code, campus.GateCode) == puzzle.Incorrect {
			return puzzle.Incorrect, campus.GateFailure
		}
		s.store.AddItem(progression.SquashRacket)
		return puzzle.Correct, campus.GateSuccess
	})
	if res.Outcome == puzzle.Incorrect {
		s.fail(res)
		if puzzle.HintUnlocked(res.Attempts) {
			res.Hint = campus.GateHint
		}
	}
	return res, nil
}

// PlaySquash rolls both dice once and resolves the match.
func (s *Session) PlaySquash(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.SportsCenter, ActionSquash, progression.SquashRacket, progression.McdCoupon); err != nil {
		return nil, err
	}
	return s.squash(ctx, puzzle.RollContest(s.roller)), nil
}

// ResolveSquash resolves the match with rolls made by the caller.
func (s *Session) ResolveSquash(ctx context.Context, player, opponent int) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.SportsCenter, ActionSquash, progression.SquashRacket, progression.McdCoupon); err != nil {
		return nil, err
	}
	return s.squash(ctx, puzzle.Contest(player, opponent)), nil
}

func (s *Session) squash(ctx context.Context, contest puzzle.ContestResult) *Result {
	res := s.apply(ctx, ActionSquash, func() (puzzle.Outcome, string) {
		switch contest.Verdict {
		case puzzle.Win:
			s.store.AddItem(progression.McdCoupon)
			return puzzle.Correct, fmt.Sprintf(campus.SquashWin, contest.Player, contest.Opponent)
		case puzzle.Draw:
			return puzzle.Tie, fmt.Sprintf(campus.SquashTie, contest.Player, contest.Opponent)
		default:
			return puzzle.Incorrect, fmt.Sprintf(campus.SquashLoss, contest.Player, contest.Opponent)
		}
	})
	res.Dice = &contest
	if res.Outcome != puzzle.Correct {
		s.fail(res)
	}
	return res
}

// EscortProfessor accepts or declines walking the professor across campus.
func (s *Session) EscortProfessor(ctx context.Context, accept bool) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.ActivityCenter, ActionEscort, progression.McdCoupon, progression.DecryptionKey); err != nil {
		return nil, err
	}
	return s.apply(ctx, ActionEscort, func() (puzzle.Outcome, string) {
		if !accept {
			return puzzle.Incorrect, campus.EscortDeclined
		}
		s.store.AddItem(progression.DecryptionKey)
		return puzzle.Correct, campus.EscortAccepted
	}), nil
}

// SubmitDecryption answers the professor's cipher.
func (s *Session) SubmitDecryption(ctx context.Context, answer string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.AstronomyMath, ActionDecrypt, progression.DecryptionKey, progression.FuBellClue); err != nil {
		return nil, err
	}
	res := s.apply(ctx, ActionDecrypt, func() (puzzle.Outcome, string) {
		want := puzzle.CaesarDecode(campus.Cipher, campus.CipherKey)
		if puzzle.CheckKeyword(answer, want) == puzzle.Incorrect {
			return puzzle.Incorrect, campus.DecryptFailure
		}
		s.store.AddItem(progression.FuBellClue)
		return puzzle.Correct, campus.DecryptSuccess
	})
	if res.Outcome == puzzle.Incorrect {
		s.fail(res)
	}
	return res, nil
}

// AnswerBell picks an option in the Fu Bell quiz.
func (s *Session) AnswerBell(ctx context.Context, choice string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err := s.require(campus.FuBell, ActionBell, progression.FuBellClue, progression.FuBellToken); err != nil {
		return nil, err
	}
	choice = strings.ToUpper(strings.TrimSpace(choice))
	if _, ok := campus.BellChoices[choice]; !ok {
		return nil, fmt.Errorf("bell choice %q: %w", choice, ErrUnknownChoice)
	}

	res := s.apply(ctx, ActionBell, func() (puzzle.Outcome, string) {
		if puzzle.CheckChoice(choice, campus.BellAnswer) == puzzle.Incorrect {
			return puzzle.Incorrect, campus.BellWrong
		}
		s.store.AddItem(progression.FuBellToken)
		return puzzle.Correct, campus.BellCorrect
	})
	if res.Outcome == puzzle.Incorrect {
		s.fail(res)
	}
	return res, nil
}

// Summon activates the magic circle at the lake pavilion.
func (s *Session) Summon(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if _, err := s.enter(campus.LakePavilion); err != nil {
		return nil, err
	}

	alreadyDone := s.store.SummonCompleted()
	res := s.apply(ctx, ActionSummon, func() (puzzle.Outcome, string) {
		if !s.store.AttemptSummon() {
			return puzzle.Incorrect, campus.SummonRejected
		}
		if alreadyDone {
			return puzzle.Correct, campus.SummonDone
		}
		s.store.Unlock(campus.FreshmanCenter)
		return puzzle.Correct, campus.SummonSuccess
	})
	if res.Outcome == puzzle.Correct && !alreadyDone {
		s.publish(ctx, "The magic circle is active")
	}
	return res, nil
}

// enter checks that a location exists and is unlocked.
func (s *Session) enter(key string) (campus.Location, error) {
	loc, ok := s.campus.Location(key)
	if !ok {
		return campus.Location{}, fmt.Errorf("location %q: %w", key, ErrUnknownLocation)
	}
	if !s.store.IsUnlocked(key) {
		return campus.Location{}, fmt.Errorf("location %q: %w", key, ErrLocked)
	}
	return loc, nil
}

// require gates a puzzle: the location must be open, the prerequisite item
// held and the reward not yet earned.
func (s *Session) require(key string, a Action, needs, reward progression.Item) error {
	if _, err := s.enter(key); err != nil {
		return err
	}
	if !s.store.HasItem(needs) || s.store.HasItem(reward) {
		return fmt.Errorf("%s at %q: %w", a, key, ErrUnavailable)
	}
	return nil
}

// apply runs a mutation and reports what it granted and unlocked.
func (s *Session) apply(ctx context.Context, a Action, fn func() (puzzle.Outcome, string)) *Result {
	before := s.store.Snapshot()
	outcome, msg := fn()
	after := s.store.Snapshot()

	res := &Result{
		Action:   a,
		Outcome:  outcome,
		Message:  msg,
		Granted:  added(before.Inventory, after.Inventory),
		Unlocked: added(before.Unlocked, after.Unlocked),
		State:    after,
	}

	for _, item := range res.Granted {
		s.logger.Info("Item granted", "item", item, "action", a)
		s.publish(ctx, "Obtained "+item.Label())
	}
	for _, key := range res.Unlocked {
		name := key
		if loc, ok := s.campus.Location(key); ok {
			name = loc.Name
		}
		s.logger.Info("Location unlocked", "location", key, "action", a)
		s.publish(ctx, "Unlocked "+name)
	}
	return res
}

func (s *Session) fail(res *Result) {
	s.attempts[res.Action]++
	res.Attempts = s.attempts[res.Action]
}

// publish sends a story event. Queue errors never change the outcome.
func (s *Session) publish(ctx context.Context, text string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(ctx, s.id.String(), text); err != nil {
		s.logger.Error("Failed to enqueue story event", "error", err, "event", text)
	}
}

func (s *Session) touch() {
	s.lastActive = s.now()
}

func added[T comparable](before, after []T) []T {
	var out []T
	for _, v := range after {
		if !slices.Contains(before, v) {
			out = append(out, v)
		}
	}
	return out
}
