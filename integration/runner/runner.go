package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/campus-quest/internal/handlers"
	"github.com/jwebster45206/campus-quest/pkg/game"
	"github.com/jwebster45206/campus-quest/pkg/progression"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running campus-quest API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 30 * time.Second},
		Timeout:           10 * time.Second,
		Logger:            func(string, ...any) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// A sequence may reference another sequence
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays every step of the suite against a fresh game.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	gameID, err := r.createGame(ctx)
	if err != nil {
		result.Error = fmt.Errorf("failed to create game: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.Game = gameID
	defer func() { r.deleteGame(context.WithoutCancel(ctx), result.Game) }()

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), stepLabel(step))

		stepCtx, cancel := context.WithTimeout(ctx, r.Timeout)
		stepResult := r.runStep(stepCtx, &result.Game, step)
		cancel()
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), stepResult.StepName, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, stepResult.StepName, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), stepResult.StepName, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a single step. A reset replaces *gameID.
func (r *Runner) runStep(ctx context.Context, gameID *uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: stepLabel(step)}
	exp := step.Expectations

	var err error
	switch step.Kind {
	case StepReset:
		result.IsReset = true
		r.deleteGame(ctx, *gameID)
		var id uuid.UUID
		if id, err = r.createGame(ctx); err == nil {
			*gameID = id
			result.ResponseText = "[NEW GAME]"
			err = r.checkState(ctx, id, exp)
		}

	case StepVisit:
		var scene game.Scene
		var status int
		status, result.ResponseText, err = r.do(ctx, http.MethodGet, "/v1/games/"+gameID.String()+"/scenes/"+step.Location, nil, &scene)
		if err == nil {
			err = checkStatus(exp.Status, http.StatusOK, status, result.ResponseText)
		}
		if err == nil && status == http.StatusOK {
			err = checkVisit(exp, scene)
		}
		if err == nil {
			err = r.checkState(ctx, *gameID, exp)
		}

	case StepAction:
		var res game.Result
		var status int
		status, result.ResponseText, err = r.do(ctx, http.MethodPost, "/v1/games/"+gameID.String()+"/actions/"+step.Action, step.Body, &res)
		if err == nil {
			err = checkStatus(exp.Status, http.StatusOK, status, result.ResponseText)
		}
		if err == nil && status == http.StatusOK {
			err = checkResult(exp, res)
		}
		if err == nil {
			err = r.checkState(ctx, *gameID, exp)
		}

	case StepEvents:
		var events handlers.EventsResponse
		_, result.ResponseText, err = r.do(ctx, http.MethodGet, "/v1/games/"+gameID.String()+"/events", nil, &events)
		if err == nil {
			err = containsAll("events", events.Events, exp.EventsContain)
		}

	case StepHint:
		var hint handlers.HintResponse
		_, result.ResponseText, err = r.do(ctx, http.MethodGet, "/v1/games/"+gameID.String()+"/hint", nil, &hint)
		if err == nil {
			err = messageContains(hint.Hint, exp.MessageContains)
		}

	default:
		err = fmt.Errorf("unknown step kind %q", step.Kind)
	}

	if err != nil {
		result.Error = err
	} else {
		result.Success = true
	}
	result.Duration = time.Since(start)
	return result
}

// checkState compares the game's stored state with the expectations.
func (r *Runner) checkState(ctx context.Context, gameID uuid.UUID, exp Expectations) error {
	if exp.Inventory == nil && exp.OpenLocations == nil && exp.SummonCompleted == nil {
		return nil
	}
	state, err := r.getGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get game state: %w", err)
	}

	if exp.Inventory != nil {
		if err := sameSet("inventory", itemNames(state.Inventory), exp.Inventory); err != nil {
			return err
		}
	}
	if exp.OpenLocations != nil {
		if err := sameSet("open locations", state.Unlocked, exp.OpenLocations); err != nil {
			return err
		}
	}
	if exp.SummonCompleted != nil && state.SummonCompleted != *exp.SummonCompleted {
		return fmt.Errorf("expected summon_completed %t, got %t", *exp.SummonCompleted, state.SummonCompleted)
	}
	return nil
}

func checkVisit(exp Expectations, scene game.Scene) error {
	actions := make([]string, len(scene.Actions))
	for i, a := range scene.Actions {
		actions[i] = string(a)
	}
	if err := containsAll("actions", actions, exp.ActionsInclude); err != nil {
		return err
	}
	return messageContains(scene.Description+"\n"+scene.Status+"\n"+scene.Prompt, exp.MessageContains)
}

func checkResult(exp Expectations, res game.Result) error {
	if exp.Outcome != "" && string(res.Outcome) != exp.Outcome {
		return fmt.Errorf("expected outcome %s, got %s (%q)", exp.Outcome, res.Outcome, res.Message)
	}
	if exp.Granted != nil {
		if err := sameSet("granted", itemNames(res.Granted), exp.Granted); err != nil {
			return err
		}
	}
	if exp.Unlocked != nil {
		if err := sameSet("unlocked", res.Unlocked, exp.Unlocked); err != nil {
			return err
		}
	}
	return messageContains(res.Message, exp.MessageContains)
}

func checkStatus(want, fallback, got int, body string) error {
	if want == 0 {
		want = fallback
	}
	if got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, body)
	}
	return nil
}

func messageContains(text string, want []string) error {
	lower := strings.ToLower(text)
	for _, s := range want {
		if !strings.Contains(lower, strings.ToLower(s)) {
			return fmt.Errorf("expected response to contain %q, got %q", s, text)
		}
	}
	return nil
}

func containsAll(what string, got, want []string) error {
	for _, w := range want {
		if !slices.Contains(got, w) {
			return fmt.Errorf("expected %s to contain %q, got %v", what, w, got)
		}
	}
	return nil
}

// sameSet compares two lists ignoring order.
func sameSet(what string, got, want []string) error {
	for _, w := range want {
		if !slices.Contains(got, w) {
			return fmt.Errorf("expected %s to contain '%s', but it's missing. Actual %s: %v", what, w, what, got)
		}
	}
	for _, g := range got {
		if !slices.Contains(want, g) {
			return fmt.Errorf("%s contains unexpected '%s'. Expected: %v, Actual: %v", what, g, want, got)
		}
	}
	return nil
}

func itemNames(items []progression.Item) []string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}
	return names
}

func stepLabel(step TestStep) string {
	if step.Name != "" {
		return step.Name
	}
	switch step.Kind {
	case StepVisit:
		return "visit " + step.Location
	case StepAction:
		return "action " + step.Action
	}
	return step.Kind
}
