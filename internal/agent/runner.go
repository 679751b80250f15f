package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/infinite-adventure/pkg/world"
)

const (
	DefaultMaxAttempts  = 20
	DefaultRetryBackoff = 30 * time.Second

	maxErrorSummary = 50
)

// Runner retries a turn until the model answers or attempts run out.
type Runner struct {
	agent       *Agent
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger

	// OnAttempt, when set, is called before each attempt.
	OnAttempt func(attempt, maxAttempts int)
}

func NewRunner(a *Agent, maxAttempts int, backoff time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if backoff < 0 {
		backoff = 0
	}
	return &Runner{
		agent:       a,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

func (r *Runner) Agent() *Agent { return r.agent }

// Run always returns a response. When every attempt fails the response is
// marked Failed and carries a short error summary as its narrative.
func (r *Runner) Run(ctx context.Context, w *world.World, input string) *Response {
	log := r.agent.DebugLog()
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		log.Addf("Attempt %d/%d - Consulting the spirits...", attempt, r.maxAttempts)
		if r.OnAttempt != nil {
			r.OnAttempt(attempt, r.maxAttempts)
		}

		resp, err := r.agent.ProcessAction(ctx, w, input)
		if err == nil {
			log.Addf("Agent returned narrative (%d chars), %d suggestions",
				len(resp.Narrative), len(resp.SuggestedActions))
			return resp
		}

		lastErr = err
		summary := summarize(err)
		log.Addf("Agent Error (Attempt %d): %s", attempt, summary)
		r.logger.Warn("Turn attempt failed",
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"error", err)

		if attempt == r.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return r.failed(attempt, ctx.Err())
		case <-time.After(r.backoff):
		}
	}

	return r.failed(r.maxAttempts, lastErr)
}

func (r *Runner) failed(attempts int, err error) *Response {
	r.logger.Error("Turn failed", "attempts", attempts, "error", err)
	return &Response{
		Narrative: fmt.Sprintf("The spirits are confused. (Failed after %d attempts)\nError: %s",
			attempts, summarize(err)),
		Failed: true,
	}
}

// summarize shortens an error message to at most 50 characters.
func summarize(err error) string {
	if err == nil {
		return ""
	}
	msg := []rune(err.Error())
	if len(msg) > maxErrorSummary {
		return string(msg[:maxErrorSummary-3]) + "..."
	}
	return string(msg)
}
