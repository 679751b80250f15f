package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

func TestChatHandler_ServeHTTP(t *testing.T) {
	g, llm := newTestGame(t)
	s, err := g.Create(context.Background(), "Chatty")
	require.NoError(t, err)

	tests := []struct {
		name           string
		method         string
		body           any
		mockSetup      func()
		expectedStatus int
		expectedError  string
		expectedMsg    string
		expectedFailed bool
	}{
		{
			name:   "successful turn",
			method: http.MethodPost,
			body:   chat.ChatRequest{WorldID: s.ID(), Message: "Hello, world!"},
			mockSetup: func() {
				llm.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
					return &chat.Completion{Content: "The echo answers."}, nil
				}
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "The echo answers.",
		},
		{
			name:           "method not allowed",
			method:         http.MethodGet,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedError:  "Method not allowed. Only POST is supported at /v1/chat.",
		},
		{
			name:           "invalid JSON body",
			method:         http.MethodPost,
			body:           "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body. Expected JSON with 'message' field.",
		},
		{
			name:           "missing world",
			method:         http.MethodPost,
			body:           chat.ChatRequest{Message: "Hello"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request: world_id is required",
		},
		{
			name:           "unknown world",
			method:         http.MethodPost,
			body:           chat.ChatRequest{WorldID: uuid.New(), Message: "Hello"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "World not found",
		},
		{
			name:           "empty message",
			method:         http.MethodPost,
			body:           chat.ChatRequest{WorldID: s.ID(), Message: ""},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request: message cannot be empty",
		},
		{
			name:   "LLM service error",
			method: http.MethodPost,
			body:   chat.ChatRequest{WorldID: s.ID(), Message: "Hello"},
			mockSetup: func() {
				llm.SetCompleteError(errors.New("LLM service unavailable"))
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "The spirits are confused. (Failed after 1 attempts)\nError: LLM request failed: LLM service unavailable",
			expectedFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mockSetup != nil {
				tt.mockSetup()
			}
			h := NewChatHandler(g, testLogger())
			rr := do(t, h, tt.method, "/v1/chat", tt.body)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}

			var resp chat.ChatResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			assert.Equal(t, tt.expectedError, resp.Error)
			assert.Equal(t, tt.expectedMsg, resp.Narrative)
			assert.Equal(t, tt.expectedFailed, resp.Failed)
		})
	}
}
