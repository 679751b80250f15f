// Package bootstrap builds the collaborators every front end shares from
// a loaded config.
package bootstrap

import (
	"log/slog"

	"github.com/jwebster45206/infinite-adventure/internal/agent"
	"github.com/jwebster45206/infinite-adventure/internal/config"
	"github.com/jwebster45206/infinite-adventure/internal/services"
	"github.com/jwebster45206/infinite-adventure/pkg/generator"
)

// LLM returns the client for cfg.LLMProvider.
func LLM(cfg *config.Config, logger *slog.Logger) (services.LLMService, error) {
	return services.NewLLMService(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelName, logger)
}

// Runner wires an agent and its retry loop to llm.
func Runner(cfg *config.Config, llm services.LLMService, logger *slog.Logger) *agent.Runner {
	gen := generator.New(llm, logger).WithTimeout(cfg.TurnTimeout)
	a := agent.New(llm, logger).
		WithGenerator(gen).
		WithTimeout(cfg.TurnTimeout).
		WithTemperature(cfg.LLMTemperature)
	return agent.NewRunner(a, cfg.MaxAttempts, cfg.RetryBackoff, logger)
}
