package runner

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/internal/game"
	"github.com/jwebster45206/infinite-adventure/internal/handlers"
	"github.com/jwebster45206/infinite-adventure/internal/services"
	memstore "github.com/jwebster45206/infinite-adventure/internal/storage"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/tools"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func newTestServer(t *testing.T, responses ...*chat.Completion) (*httptest.Server, *game.Game) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := agent.NewRunner(agent.New(services.NewMockLLMAPI(responses...), logger), 1, 0, logger)
	g := game.New(memstore.NewMemoryStorage(), runner, logger)
	t.Cleanup(g.Wait)

	mux := http.NewServeMux()
	worlds := handlers.NewWorldsHandler(g, logger)
	mux.Handle("/v1/worlds", worlds)
	mux.Handle("/v1/worlds/", worlds)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, g
}

func ptr[T any](v T) *T { return &v }

func TestRunSuite(t *testing.T) {
	srv, g := newTestServer(t,
		&chat.Completion{
			Content: "You find a torch.\n- light the torch\n- go north",
			ToolCalls: []chat.ToolCall{
				{ID: "c1", Type: chat.ToolCallType, Function: chat.ToolFunction{Name: tools.OpCreateItem, Arguments: `{"id":"torch","name":"Torch","item_type":"Tool"}`}},
				{ID: "c2", Type: chat.ToolCallType, Function: chat.ToolFunction{Name: tools.OpAddItemToInventory, Arguments: `{"item_id":"torch"}`}},
			},
		},
		&chat.Completion{Content: "Nothing happens."},
	)

	suite := TestSuite{
		Name: "torch",
		Steps: []TestStep{
			{
				Name:       "find torch",
				UserPrompt: "search the ground",
				Expectations: Expectations{
					Position:         &world.Coord{X: 0, Y: 0},
					LocationName:     ptr("the beginning"),
					Inventory:        []string{"torch"},
					Money:            ptr(0),
					CombatActive:     ptr(false),
					Failed:           ptr(false),
					MinSuggestions:   ptr(2),
					ResponseContains: []string{"TORCH"},
				},
			},
			{
				Name:       "wait",
				UserPrompt: "wait",
				Expectations: Expectations{
					ResponseRegex:     `^Nothing`,
					ResponseMaxLength: ptr(40),
				},
			},
		},
	}

	var logged []string
	r := NewRunner(srv.URL + "/")
	r.Logger = func(format string, args ...any) { logged = append(logged, format) }

	result, err := r.RunSuite(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	for _, step := range result.Results {
		assert.True(t, step.Success, step.StepName)
	}
	assert.Equal(t, "Nothing happens.", result.Results[1].ResponseText)
	assert.NotEmpty(t, logged)

	// The world is cleaned up afterwards
	_, err = g.Load(context.Background(), result.WorldID)
	assert.ErrorIs(t, err, game.ErrWorldNotFound)
}

func TestRunSuite_ExitMode(t *testing.T) {
	srv, _ := newTestServer(t, &chat.Completion{Content: "Rain."}, &chat.Completion{Content: "More rain."})

	suite := TestSuite{
		Name: "rain",
		Steps: []TestStep{
			{Name: "first", UserPrompt: "look up", Expectations: Expectations{ResponseContains: []string{"sunshine"}}},
			{Name: "second", UserPrompt: "look up", Expectations: Expectations{}},
		},
	}

	r := NewRunner(srv.URL)
	r.ErrorHandlingMode = ErrorHandlingExit
	result, err := r.RunSuite(context.Background(), suite)
	testutil.AssertErrorContains(t, err, "expected response to contain 'sunshine'")
	assert.Len(t, result.Results, 1)

	r.ErrorHandlingMode = ErrorHandlingContinue
	result, err = r.RunSuite(context.Background(), suite)
	require.Error(t, err)
	assert.Len(t, result.Results, 2)
}

func TestCheckExpectations(t *testing.T) {
	w := world.NewWithStart()
	w.Items["rope"] = &world.Item{ID: "rope", Name: "Rope"}
	w.Player.Inventory = []string{"rope"}
	w.Player.Money = 12
	st := &game.State{World: w}
	resp := &chat.ChatResponse{Narrative: "You coil the rope.", SuggestedActions: []string{"climb"}}

	tests := []struct {
		name string
		exp  Expectations
		err  string
	}{
		{name: "empty", exp: Expectations{}},
		{name: "position", exp: Expectations{Position: &world.Coord{X: 1, Y: 0}}, err: "expected position (1, 0), got (0, 0)"},
		{name: "location", exp: Expectations{LocationName: ptr("Cave")}, err: `expected location "Cave", got "The Beginning"`},
		{name: "inventory missing", exp: Expectations{Inventory: []string{"Rope", "Lamp"}}, err: "expected inventory to contain 'Lamp'"},
		{name: "inventory exact", exp: Expectations{Inventory: []string{"ROPE"}}},
		{name: "inventory contains", exp: Expectations{InventoryContains: []string{"OP"}}},
		{name: "inventory lacks", exp: Expectations{InventoryContains: []string{"Lamp"}}, err: "expected an inventory item named like 'lamp'"},
		{name: "money", exp: Expectations{Money: ptr(3)}, err: "expected money 3, got 12"},
		{name: "combat", exp: Expectations{CombatActive: ptr(true)}, err: "expected combat active to be true"},
		{name: "locations", exp: Expectations{LocationCount: ptr(1)}},
		{name: "failed", exp: Expectations{Failed: ptr(true)}, err: "expected failed to be true"},
		{name: "suggestions", exp: Expectations{MinSuggestions: ptr(2)}, err: "expected at least 2 suggested actions, got 1"},
		{name: "not contains", exp: Expectations{ResponseNotContains: []string{"ROPE"}}, err: "expected response to NOT contain 'ROPE'"},
		{name: "bad regex", exp: Expectations{ResponseRegex: "("}, err: "invalid regex pattern"},
		{name: "min length", exp: Expectations{ResponseMinLength: ptr(100)}, err: "expected response length >= 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckExpectations(tt.exp, st, resp)
			if tt.err == "" {
				assert.NoError(t, err)
				return
			}
			testutil.AssertErrorContains(t, err, tt.err)
		})
	}
}

func TestLoadTestSuiteWithExpansion(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("a.json", `{"name":"a","steps":[{"user_prompt":"look","expect":{"position":[0,0]}}]}`)
	write("b.json", `{"name":"b","world_name":"Bee","steps":[{"user_prompt":"/north"}]}`)
	write("all.json", `{"name":"all","cases":["a.json","b.json"]}`)
	write("broken.json", `{"name":"broken","cases":["missing.json"]}`)

	jobs, err := LoadTestSuiteWithExpansion(filepath.Join(dir, "all.json"), dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "a", jobs[0].Name)
	assert.Equal(t, &world.Coord{X: 0, Y: 0}, jobs[0].Suite.Steps[0].Expectations.Position)
	assert.Equal(t, "Bee", jobs[1].Suite.WorldName)

	_, err = LoadTestSuiteWithExpansion(filepath.Join(dir, "broken.json"), dir)
	testutil.AssertErrorContains(t, err, "referenced by sequence 'broken'")
}
