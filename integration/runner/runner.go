package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted suites against a running infinite-adventure API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Logger            func(format string, args ...any)
	ErrorHandlingMode ErrorHandlingMode
	// KeepWorlds leaves the worlds created by each run in storage.
	KeepWorlds bool
}

// NewRunner creates a new test runner. The client timeout is generous
// because a turn may retry against a slow model before it answers.
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 5 * time.Minute},
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
		subJobs, err := LoadTestSuiteWithExpansion(filepath.Join(casesDir, caseFile), casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite creates a world, plays every step in it, and deletes it.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job:     TestJob{Name: suite.Name, Suite: suite},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	name := suite.WorldName
	if name == "" {
		name = "Integration: " + suite.Name
	}
	st, err := CreateWorld(ctx, r.Client, r.BaseURL, name)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.WorldID = st.ID

	if !r.KeepWorlds {
		defer func() {
			if err := DeleteWorld(context.WithoutCancel(ctx), r.Client, r.BaseURL, st.ID); err != nil {
				r.Logger("    Warning: failed to clean up world %s: %v", st.ID, err)
			}
		}()
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, st, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep executes a single step, retrying once when the HTTP request
// itself timed out.
func (r *Runner) runStep(ctx context.Context, st *game.State, step TestStep) TestResult {
	result := r.executeStep(ctx, st, step)
	if result.Error != nil && isTimeout(result.Error) {
		r.Logger("    Timeout detected, retrying step: %s", step.Name)
		result = r.executeStep(ctx, st, step)
	}
	return result
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (r *Runner) executeStep(ctx context.Context, st *game.State, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}

	resp, err := PlayTurn(ctx, r.Client, r.BaseURL, st.ID, step.UserPrompt)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}
	result.ResponseText = resp.Narrative

	after, err := GetWorld(ctx, r.Client, r.BaseURL, st.ID)
	if err != nil {
		result.Error = fmt.Errorf("failed to read world after turn: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	if err := CheckExpectations(step.Expectations, after, resp); err != nil {
		result.Error = fmt.Errorf("expectation failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// CheckExpectations validates a step's expectations against the world
// after the turn and the turn's response.
func CheckExpectations(exp Expectations, st *game.State, resp *chat.ChatResponse) error {
	w := st.World
	if w == nil {
		return errors.New("response carried no world")
	}

	if exp.Position != nil && w.CurrentPos != *exp.Position {
		return fmt.Errorf("expected position %s, got %s", *exp.Position, w.CurrentPos)
	}

	if exp.LocationName != nil {
		loc, ok := w.CurrentLocation()
		if !ok {
			return fmt.Errorf("expected location %q, but the player is off the map at %s", *exp.LocationName, w.CurrentPos)
		}
		if !strings.EqualFold(loc.Name, *exp.LocationName) {
			return fmt.Errorf("expected location %q, got %q", *exp.LocationName, loc.Name)
		}
	}

	inventory := w.ItemNames(w.Player.Inventory)
	if len(exp.Inventory) > 0 {
		for _, name := range exp.Inventory {
			if !containsFold(inventory, name) {
				return fmt.Errorf("expected inventory to contain '%s', but it's missing. Actual inventory: %v", name, inventory)
			}
		}
		for _, name := range inventory {
			if !containsFold(exp.Inventory, name) {
				return fmt.Errorf("inventory contains unexpected item '%s'. Expected inventory: %v, Actual: %v", name, exp.Inventory, inventory)
			}
		}
	}
	for _, part := range exp.InventoryContains {
		part = strings.ToLower(part)
		if !slices.ContainsFunc(inventory, func(n string) bool { return strings.Contains(strings.ToLower(n), part) }) {
			return fmt.Errorf("expected an inventory item named like '%s'. Actual inventory: %v", part, inventory)
		}
	}

	if exp.Money != nil && w.Player.Money != *exp.Money {
		return fmt.Errorf("expected money %d, got %d", *exp.Money, w.Player.Money)
	}
	if exp.CombatActive != nil && w.Combat.Active != *exp.CombatActive {
		return fmt.Errorf("expected combat active to be %t, got %t", *exp.CombatActive, w.Combat.Active)
	}
	if exp.LocationCount != nil && len(w.Locations) != *exp.LocationCount {
		return fmt.Errorf("expected %d locations, got %d", *exp.LocationCount, len(w.Locations))
	}

	if exp.Failed != nil && resp.Failed != *exp.Failed {
		return fmt.Errorf("expected failed to be %t, got %t (narrative: %q)", *exp.Failed, resp.Failed, resp.Narrative)
	}
	if exp.MinSuggestions != nil && len(resp.SuggestedActions) < *exp.MinSuggestions {
		return fmt.Errorf("expected at least %d suggested actions, got %d", *exp.MinSuggestions, len(resp.SuggestedActions))
	}

	return checkResponse(exp, resp.Narrative)
}

func checkResponse(exp Expectations, responseText string) error {
	lowerResponse := strings.ToLower(responseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, responseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	if exp.ResponseMinLength != nil && len(responseText) < *exp.ResponseMinLength {
		return fmt.Errorf("expected response length >= %d, got %d", *exp.ResponseMinLength, len(responseText))
	}
	if exp.ResponseMaxLength != nil && len(responseText) > *exp.ResponseMaxLength {
		return fmt.Errorf("expected response length <= %d, got %d", *exp.ResponseMaxLength, len(responseText))
	}
	return nil
}

func containsFold(names []string, name string) bool {
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.EqualFold(n, name)
	})
}
