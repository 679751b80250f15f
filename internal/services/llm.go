package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// IsModelReady checks if the specified model is ready for use
	IsModelReady(ctx context.Context, modelName string) (bool, error)

	// ListModels returns the model names the backend serves
	ListModels(ctx context.Context) ([]string, error)

	// Complete sends one request. The answer may hold text, tool calls or both.
	Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error)
}

// NewLLMService returns the client for provider. Both providers speak the
// OpenAI chat completions protocol; ollama adds model pulling on startup.
func NewLLMService(provider, baseURL, apiKey, modelName string, logger *slog.Logger) (LLMService, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIService(baseURL, apiKey, modelName, logger), nil
	case ProviderOllama:
		return NewOllamaService(baseURL, modelName, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
