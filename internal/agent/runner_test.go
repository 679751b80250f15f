package agent

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/jwebster45206/infinite-adventure/internal/services"
	"github.com/jwebster45206/infinite-adventure/pkg/chat"
	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

func TestRunner_RetriesUntilSuccess(t *testing.T) {
	var n atomic.Int32
	llm := services.NewMockLLMAPI()
	llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		if n.Add(1) < 3 {
			return nil, errors.New("model loading")
		}
		return &chat.Completion{Content: "Finally."}, nil
	}

	var attempts []int
	r := NewRunner(New(llm, nil), 5, 0, nil)
	r.OnAttempt = func(attempt, max int) { attempts = append(attempts, attempt) }

	resp := r.Run(context.Background(), world.NewWithStart(), "look")
	testutil.AssertEqual(t, "narrative", resp.Narrative, "Finally.")
	testutil.AssertEqual(t, "failed", resp.Failed, false)
	testutil.AssertEqual(t, "attempts", len(attempts), 3)

	lines := strings.Join(r.Agent().DebugLog().Lines(), "\n")
	for _, want := range []string{
		"Attempt 1/5 - Consulting the spirits...",
		"Agent Error (Attempt 2): LLM request failed: model loading",
		"Agent returned narrative (8 chars), 2 suggestions",
	} {
		if !strings.Contains(lines, want) {
			t.Errorf("Expected log to contain %q, got:\n%s", want, lines)
		}
	}
}

func TestRunner_GivesUp(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetCompleteError(errors.New("no route to host"))

	resp := NewRunner(New(llm, nil), 3, 0, nil).Run(context.Background(), world.NewWithStart(), "look")

	testutil.AssertEqual(t, "failed", resp.Failed, true)
	testutil.AssertEqual(t, "narrative", resp.Narrative,
		"The spirits are confused. (Failed after 3 attempts)\nError: LLM request failed: no route to host")
	testutil.AssertEqual(t, "calls", len(llm.GetCompleteCalls()), 3)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	llm := services.NewMockLLMAPI()
	llm.SetCompleteError(errors.New("down"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(New(llm, nil), 20, DefaultRetryBackoff, nil)
	resp := r.Run(ctx, world.NewWithStart(), "look")

	testutil.AssertEqual(t, "failed", resp.Failed, true)
	testutil.AssertEqual(t, "calls", len(llm.GetCompleteCalls()), 1)
}

func TestSummarize(t *testing.T) {
	tests := map[string]struct {
		err error
		exp string
	}{
		"nil":   {err: nil, exp: ""},
		"short": {err: errors.New("timeout"), exp: "timeout"},
		"exactly fifty": {
			err: errors.New(strings.Repeat("x", 50)),
			exp: strings.Repeat("x", 50),
		},
		"long": {
			err: errors.New(strings.Repeat("y", 80)),
			exp: strings.Repeat("y", 47) + "...",
		},
		"multibyte": {
			err: errors.New(strings.Repeat("é", 60)),
			exp: strings.Repeat("é", 47) + "...",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "summary", summarize(tt.err), tt.exp)
		})
	}
}
