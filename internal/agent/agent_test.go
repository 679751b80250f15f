package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/internal/services"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/prompts"
	"github.com/jwebster45206/infinite-adventure/pkg/tools"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func call(id, name, args string) chat.ToolCall {
	return chat.ToolCall{
		ID:       id,
		Type:     chat.ToolCallType,
		Function: chat.ToolFunction{Name: name, Arguments: args},
	}
}

func TestProcessAction_RequestShape(t *testing.T) {
	llm := services.NewMockLLMAPI(&chat.Completion{Content: "You look around.\n- go north\n- open chest"})
	w := world.NewWithStart()

	resp, err := New(llm, nil).ProcessAction(context.Background(), w, "look around")
	require.NoError(t, err)

	calls := llm.GetCompleteCalls()
	require.Len(t, calls, 1)
	req := calls[0]
	assert.Len(t, req.Tools, len(tools.Definitions()))
	assert.Equal(t, TurnMaxTokens, req.MaxTokens)
	assert.Equal(t, DefaultTemperature, req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, chat.ChatRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "Player Action: look around", req.Messages[1].Content)

	assert.Equal(t, "You look around.\n- go north\n- open chest", resp.Narrative)
	assert.Equal(t, []string{"go north", "open chest"}, resp.SuggestedActions)
}

func TestProcessAction_TurnNarrativeWins(t *testing.T) {
	llm := services.NewMockLLMAPI(&chat.Completion{
		Content: "content that should be ignored",
		ToolCalls: []chat.ToolCall{
			call("1", tools.OpGenerateTurnNarrative, `{"text":"The wind howls."}`),
		},
	})

	resp, err := New(llm, nil).ProcessAction(context.Background(), world.NewWithStart(), "listen")
	require.NoError(t, err)
	assert.Equal(t, "The wind howls.", resp.Narrative)
	assert.Equal(t, DefaultSuggestions, resp.SuggestedActions)
	assert.Len(t, llm.GetCompleteCalls(), 1)
}

func TestProcessAction_FollowUpNarration(t *testing.T) {
	llm := services.NewMockLLMAPI(
		&chat.Completion{ToolCalls: []chat.ToolCall{
			call("c1", tools.OpCreateItem, `{"id":"torch","item_type":"Tool"}`),
			call("c2", tools.OpAddItemToInventory, `{"item_id":"torch"}`),
		}},
		&chat.Completion{Content: "You pick up a torch."},
	)
	w := world.NewWithStart()

	resp, err := New(llm, nil).ProcessAction(context.Background(), w, "take torch")
	require.NoError(t, err)
	assert.Equal(t, "You pick up a torch.", resp.Narrative)
	assert.Equal(t, []string{"torch"}, w.Player.Inventory)

	calls := llm.GetCompleteCalls()
	require.Len(t, calls, 2)
	follow := calls[1]
	assert.Empty(t, follow.Tools)
	assert.Equal(t, NarrationMaxTokens, follow.MaxTokens)

	msgs := follow.Messages
	require.Len(t, msgs, 6)
	assert.Equal(t, chat.ChatRoleAgent, msgs[2].Role)
	assert.Len(t, msgs[2].ToolCalls, 2)
	assert.Equal(t, chat.ChatRoleTool, msgs[3].Role)
	assert.Equal(t, "c1", msgs[3].ToolCallID)
	assert.Equal(t, "Created item: torch", msgs[3].Content)
	assert.Equal(t, prompts.NarrationRequest, msgs[5].Content)
}

func TestProcessAction_ContentSkipsFollowUp(t *testing.T) {
	llm := services.NewMockLLMAPI(&chat.Completion{
		Content:   "You set down the lamp.",
		ToolCalls: []chat.ToolCall{call("1", tools.OpCreateItem, `{"id":"lamp","item_type":"Tool"}`)},
	})

	resp, err := New(llm, nil).ProcessAction(context.Background(), world.NewWithStart(), "drop lamp")
	require.NoError(t, err)
	assert.Equal(t, "You set down the lamp.", resp.Narrative)
	assert.Len(t, llm.GetCompleteCalls(), 1)
}

func TestProcessAction_FailedCallDoesNotStopLaterCalls(t *testing.T) {
	llm := services.NewMockLLMAPI(&chat.Completion{
		Content: "Something happens.",
		ToolCalls: []chat.ToolCall{
			call("1", "summon_dragon", `{}`),
			call("2", tools.OpCreateItem, `not json`),
			call("3", tools.OpCreateItem, `{"id":"rope","item_type":"Material"}`),
		},
	})
	a := New(llm, nil)
	w := world.NewWithStart()

	_, err := a.ProcessAction(context.Background(), w, "search")
	require.NoError(t, err)
	assert.Contains(t, w.Items, "rope")

	joined := strings.Join(a.DebugLog().Lines(), "\n")
	assert.Contains(t, joined, "[Agent] Got 3 tool call(s)")
	assert.Contains(t, joined, "unknown operation")
}

func TestProcessAction_MoveGeneratesThroughSameLLM(t *testing.T) {
	llm := services.NewMockLLMAPI(
		&chat.Completion{ToolCalls: []chat.ToolCall{call("m", tools.OpMoveTo, `{"direction":"north"}`)}},
		&chat.Completion{Content: `{"name":"Foggy Moor","description":"Mist everywhere."}`},
		&chat.Completion{Content: "You walk north into the fog."},
	)
	w := world.NewWithStart()

	resp, err := New(llm, nil).ProcessAction(context.Background(), w, "go north")
	require.NoError(t, err)
	assert.Equal(t, "You walk north into the fog.", resp.Narrative)
	assert.Equal(t, world.Coord{Y: 1}, w.CurrentPos)

	loc, ok := w.CurrentLocation()
	require.True(t, ok)
	assert.Equal(t, "Foggy Moor", loc.Name)
	assert.True(t, loc.Visited)
}

func TestProcessAction_Timeout(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	resp, err := New(llm, nil).WithTimeout(20*time.Millisecond).
		ProcessAction(context.Background(), world.NewWithStart(), "wait")
	require.NoError(t, err)
	assert.Equal(t, TimeoutNarrative, resp.Narrative)
	assert.Equal(t, []string{"look around"}, resp.SuggestedActions)
}

func TestProcessAction_TimeoutKeepsAppliedCalls(t *testing.T) {
	var n atomic.Int32
	llm := services.NewMockLLMAPI()
	llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		if n.Add(1) == 1 {
			return &chat.Completion{ToolCalls: []chat.ToolCall{
				call("1", tools.OpCreateItem, `{"id":"gem","item_type":"QuestItem"}`),
			}}, nil
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	w := world.NewWithStart()

	resp, err := New(llm, nil).WithTimeout(30*time.Millisecond).
		ProcessAction(context.Background(), w, "dig")
	require.NoError(t, err)
	assert.Equal(t, TimeoutNarrative, resp.Narrative)
	assert.Contains(t, w.Items, "gem")
}

func TestProcessAction_ErrorLeavesWorld(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetCompleteError(errors.New("connection refused"))
	w := world.NewWithStart()

	_, err := New(llm, nil).ProcessAction(context.Background(), w, "look")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, world.Coord{}, w.CurrentPos)
	assert.Len(t, w.Locations, 1)
}

func TestProcessAction_CallerCancelIsNotTimeout(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		return nil, context.Canceled
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(llm, nil).ProcessAction(ctx, world.NewWithStart(), "look")
	assert.Error(t, err)
}

func TestProcessAction_FollowUpFailureFallsBackToContent(t *testing.T) {
	var n atomic.Int32
	llm := services.NewMockLLMAPI()
	llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		if n.Add(1) == 1 {
			return &chat.Completion{ToolCalls: []chat.ToolCall{
				call("1", tools.OpCreateItem, `{"id":"gem","item_type":"QuestItem"}`),
			}}, nil
		}
		return nil, errors.New("overloaded")
	}

	resp, err := New(llm, nil).ProcessAction(context.Background(), world.NewWithStart(), "dig")
	require.NoError(t, err)
	assert.Equal(t, "", resp.Narrative)
	assert.Equal(t, DefaultSuggestions, resp.SuggestedActions)
}
