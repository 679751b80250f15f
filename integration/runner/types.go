package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

// TestSuite is one scripted playthrough of a fresh world. A suite that
// lists Cases instead of Steps runs those case files in order.
type TestSuite struct {
	Name      string     `json:"name"`
	WorldName string     `json:"world_name,omitempty"`
	Steps     []TestStep `json:"steps,omitempty"`
	Cases     []string   `json:"cases,omitempty"`
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one turn and what the world should look like after it.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	UserPrompt   string       `json:"user_prompt"`
	Expectations Expectations `json:"expect"`
}

// Expectations are checked against the turn response and the world read
// back after it. Unset fields are not checked.
type Expectations struct {
	// World
	Position          *world.Coord `json:"position,omitempty"`      // [x, y]
	LocationName      *string      `json:"location_name,omitempty"` // case insensitive
	Inventory         []string     `json:"inventory,omitempty"`     // item names, order independent
	InventoryContains []string     `json:"inventory_contains,omitempty"` // name substrings
	Money             *int         `json:"money,omitempty"`
	CombatActive      *bool        `json:"combat_active,omitempty"`
	LocationCount     *int         `json:"location_count,omitempty"`

	// Turn
	Failed         *bool `json:"failed,omitempty"`
	MinSuggestions *int  `json:"min_suggestions,omitempty"`

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
	ResponseMinLength   *int     `json:"response_min_length,omitempty"`
	ResponseMaxLength   *int     `json:"response_max_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
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
	WorldID  uuid.UUID // world created for this run
}
