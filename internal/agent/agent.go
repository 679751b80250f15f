package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/generator"
	"github.com/jwebster45206/infinite-adventure/pkg/prompts"
	"github.com/jwebster45206/infinite-adventure/pkg/tools"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	DefaultTurnTimeout = 60 * time.Second
	DefaultTemperature = 0.7
	TurnMaxTokens      = 4096
	NarrationMaxTokens = 1000

	TimeoutNarrative = "[Timeout: The game took too long to respond]"
)

// Response is the outcome of one player action.
type Response struct {
	Narrative        string   `json:"narrative"`
	SuggestedActions []string `json:"suggested_actions"`
	// Failed is set by Runner when every attempt errored. The world was
	// not modified by a failed turn.
	Failed bool `json:"failed,omitempty"`
}

func timeoutResponse() *Response {
	return &Response{
		Narrative:        TimeoutNarrative,
		SuggestedActions: []string{"look around"},
	}
}

// Agent runs one turn: it shows the model the world, applies the tool
// calls it proposes, and settles on a narrative.
type Agent struct {
	llm         generator.Source
	generator   *generator.Generator
	roller      tools.Roller
	log         *DebugLog
	logger      *slog.Logger
	timeout     time.Duration
	temperature float64
}

// New creates an agent. Unexplored moves are generated through the same
// llm unless WithGenerator supplies another generator.
func New(llm generator.Source, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		llm:         llm,
		generator:   generator.New(llm, logger),
		log:         NewDebugLog(DefaultLogCapacity),
		logger:      logger,
		timeout:     DefaultTurnTimeout,
		temperature: DefaultTemperature,
	}
}

func (a *Agent) WithGenerator(g *generator.Generator) *Agent {
	if g != nil {
		a.generator = g
	}
	return a
}

// WithRoller sets the random source for combat rolls.
func (a *Agent) WithRoller(r tools.Roller) *Agent {
	a.roller = r
	return a
}

// WithDebugLog shares a log with the front end.
func (a *Agent) WithDebugLog(l *DebugLog) *Agent {
	if l != nil {
		a.log = l
	}
	return a
}

// WithTimeout sets the wall-clock budget of a turn.
func (a *Agent) WithTimeout(d time.Duration) *Agent {
	if d > 0 {
		a.timeout = d
	}
	return a
}

func (a *Agent) WithTemperature(t float64) *Agent {
	a.temperature = t
	return a
}

func (a *Agent) DebugLog() *DebugLog { return a.log }

func (a *Agent) Generator() *generator.Generator { return a.generator }

func (a *Agent) debug(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.log.Add("[Agent] " + msg)
	a.logger.Debug(msg)
}

// ProcessAction plays input against w. Tool calls mutate w in place. An
// error means the model could not be reached and w is unchanged; running
// out of time is not an error and keeps whatever tool calls were applied.
func (a *Agent) ProcessAction(ctx context.Context, w *world.World, input string) (*Response, error) {
	a.debug("Processing user action: %s", input)

	turnCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	messages, err := prompts.New().
		WithWorld(w).
		WithUserMessage(input).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}

	resp, err := a.llm.Complete(turnCtx, chat.CompletionRequest{
		Messages:    messages,
		Tools:       tools.Definitions(),
		Temperature: a.temperature,
		MaxTokens:   TurnMaxTokens,
	})
	if err != nil {
		if a.timedOut(ctx, turnCtx) {
			return timeoutResponse(), nil
		}
		return nil, fmt.Errorf("LLM request failed: %w", err)
	}

	d := tools.NewDispatcher(w, a.logger).
		WithExpander(a.generator).
		WithRoller(a.roller)

	results := make([]chat.ToolResult, 0, len(resp.ToolCalls))
	if len(resp.ToolCalls) > 0 {
		a.debug("Got %d tool call(s)", len(resp.ToolCalls))
	}
	for _, call := range resp.ToolCalls {
		a.debug("  - %s", call.Function.Name)
		result := d.Call(turnCtx, call)
		if result.Failed {
			a.debug("    %s", result.Content)
		}
		results = append(results, result)
	}

	if narrative, ok := d.TurnNarrative(); ok {
		return a.respond(narrative), nil
	}

	if len(resp.ToolCalls) > 0 && strings.TrimSpace(resp.Content) == "" {
		if a.timedOut(ctx, turnCtx) {
			return timeoutResponse(), nil
		}
		narrative, err := a.narrate(turnCtx, messages, resp.ToolCalls, results)
		if err == nil && narrative != "" {
			return a.respond(narrative), nil
		}
		if err != nil {
			if a.timedOut(ctx, turnCtx) {
				return timeoutResponse(), nil
			}
			a.debug("Narrative request failed: %v", err)
		}
	}

	return a.respond(resp.Content), nil
}

// narrate asks once, without tools, for a description of the calls just
// applied.
func (a *Agent) narrate(ctx context.Context, messages []chat.ChatMessage, calls []chat.ToolCall, results []chat.ToolResult) (string, error) {
	followUp := make([]chat.ChatMessage, 0, len(messages)+len(results)+2)
	followUp = append(followUp, messages...)
	followUp = append(followUp, chat.ChatMessage{
		Role:      chat.ChatRoleAgent,
		ToolCalls: calls,
	})
	for _, r := range results {
		followUp = append(followUp, chat.ChatMessage{
			Role:       chat.ChatRoleTool,
			Content:    r.Content,
			ToolCallID: r.ToolCallID,
		})
	}
	followUp = append(followUp, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: prompts.NarrationRequest,
	})

	resp, err := a.llm.Complete(ctx, chat.CompletionRequest{
		Messages:    followUp,
		Temperature: a.temperature,
		MaxTokens:   NarrationMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (a *Agent) respond(narrative string) *Response {
	a.debug("Narrative length: %d chars", len(narrative))
	return &Response{
		Narrative:        narrative,
		SuggestedActions: ExtractSuggestedActions(narrative),
	}
}

// timedOut reports whether the turn budget expired while the caller's own
// context is still live.
func (a *Agent) timedOut(parent, turn context.Context) bool {
	if parent.Err() != nil || !errors.Is(turn.Err(), context.DeadlineExceeded) {
		return false
	}
	a.debug("Timeout reached (%s)", a.timeout)
	return true
}
