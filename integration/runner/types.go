package runner

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Step kinds.
const (
	StepVisit  = "visit"
	StepAction = "action"
	StepEvents = "events"
	StepHint   = "hint"
	// StepReset ends the current game and starts a new one.
	StepReset = "reset"
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one request against a game and its expected outcome.
//
//	{"kind": "visit", "location": "library"}
//	{"kind": "action", "action": "floor", "body": {"floor": 3}}
type TestStep struct {
	Name         string          `json:"name,omitempty"`
	Kind         string          `json:"kind"`
	Location     string          `json:"location,omitempty"`
	Action       string          `json:"action,omitempty"`
	Body         json.RawMessage `json:"body,omitempty"`
	Expectations Expectations    `json:"expect"`
}

// Expectations defines what to check after a test step executes.
// Nil and empty fields are not checked.
type Expectations struct {
	Status int `json:"status,omitempty"` // defaults to 200 (201 for reset)

	Outcome         string   `json:"outcome,omitempty"`
	Granted         []string `json:"granted,omitempty"`
	Unlocked        []string `json:"unlocked,omitempty"`
	MessageContains []string `json:"message_contains,omitempty"`
	ActionsInclude  []string `json:"actions_include,omitempty"` // visit steps

	// Game state after the step (order independent)
	Inventory       []string `json:"inventory,omitempty"`
	OpenLocations   []string `json:"open_locations,omitempty"`
	SummonCompleted *bool    `json:"summon_completed,omitempty"`

	EventsContain []string `json:"events_contain,omitempty"` // events steps
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
	IsReset      bool // reset steps do not count toward pass/fail metrics
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	Game     uuid.UUID // ID of the last game used by the suite
}
