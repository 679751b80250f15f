package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

// OpenAIService implements LLMService for any server exposing the OpenAI
// chat completions API (LM Studio, llama.cpp, vLLM, OpenAI itself).
type OpenAIService struct {
	baseURL    string
	apiKey     string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

type completionRequest struct {
	Model       string             `json:"model"`
	Messages    []chat.ChatMessage `json:"messages"`
	Tools       []chat.Tool        `json:"tools,omitempty"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Stream      bool               `json:"stream"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type completionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role      string          `json:"role"`
			Content   *string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

// wireToolCall is a tool call as servers send it. Some models emit the
// arguments as an object instead of a JSON-encoded string.
type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// toolCall keeps a string argument document as-is and passes any other
// shape through as raw text, leaving validation to the dispatcher.
func (c wireToolCall) toolCall() chat.ToolCall {
	raw := bytes.TrimSpace(c.Function.Arguments)
	args := string(raw)
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		args = s
	} else if bytes.Equal(raw, []byte("null")) {
		args = ""
	}
	return chat.ToolCall{
		ID:   c.ID,
		Type: c.Type,
		Function: chat.ToolFunction{
			Name:      c.Function.Name,
			Arguments: args,
		},
	}
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// NewOpenAIService creates a client for baseURL. An empty apiKey sends no
// Authorization header.
func NewOpenAIService(baseURL, apiKey, modelName string, logger *slog.Logger) *OpenAIService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenAIService{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// InitModel is a no-op; OpenAI-compatible servers load models themselves.
func (s *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// IsModelReady reports whether the server lists modelName.
func (s *OpenAIService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	models, err := s.ListModels(ctx)
	if err != nil {
		return false, err
	}
	for _, m := range models {
		if m == modelName {
			return true, nil
		}
	}
	return false, nil
}

// ListModels retrieves available models from the server
func (s *OpenAIService) ListModels(ctx context.Context) ([]string, error) {
	body, err := s.do(ctx, "GET", "/v1/models", nil)
	if err != nil {
		return nil, err
	}

	var modelsResp modelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if modelsResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", modelsResp.Error.Message)
	}

	modelNames := make([]string, 0, len(modelsResp.Data))
	for _, model := range modelsResp.Data {
		modelNames = append(modelNames, model.ID)
	}
	return modelNames, nil
}

// Complete sends req to /v1/chat/completions and returns the first choice.
func (s *OpenAIService) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	reqBody, err := json.Marshal(completionRequest{
		Model:       s.modelName,
		Messages:    req.Messages,
		Tools:       req.Tools,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	s.logger.Debug("Sending completion request",
		"model", s.modelName,
		"message_count", len(req.Messages),
		"tool_count", len(req.Tools))

	body, err := s.do(ctx, "POST", "/v1/chat/completions", reqBody)
	if err != nil {
		return nil, err
	}

	var resp completionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		s.logger.Error("Failed to decode completion response", "error", err, "response_body", string(body))
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from API")
	}

	msg := resp.Choices[0].Message
	out := &chat.Completion{ToolCalls: make([]chat.ToolCall, 0, len(msg.ToolCalls))}
	for _, call := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, call.toolCall())
	}
	if msg.Content != nil {
		out.Content = *msg.Content
	}

	s.logger.Debug("Received completion",
		"finish_reason", resp.Choices[0].FinishReason,
		"tool_calls", len(out.ToolCalls),
		"total_tokens", resp.Usage.TotalTokens)
	return out, nil
}

func (s *OpenAIService) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewBuffer(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
