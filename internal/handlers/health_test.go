package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/infinite-adventure/internal/services"
	memstore "github.com/jwebster45206/infinite-adventure/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		setupStorage    func() *memstore.MemoryStorage
		setupLLM        func() *services.MockLLMAPI
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedLLM     string
	}{
		{
			name:            "all healthy",
			setupStorage:    memstore.NewMemoryStorage,
			setupLLM:        func() *services.MockLLMAPI { return services.NewMockLLMAPI() },
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedLLM:     "healthy",
		},
		{
			name: "unhealthy storage",
			setupStorage: func() *memstore.MemoryStorage {
				s := memstore.NewMemoryStorage()
				s.SetPingError(errors.New("connection failed"))
				return s
			},
			setupLLM:        func() *services.MockLLMAPI { return services.NewMockLLMAPI() },
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedLLM:     "healthy",
		},
		{
			name:         "unhealthy llm",
			setupStorage: memstore.NewMemoryStorage,
			setupLLM: func() *services.MockLLMAPI {
				m := services.NewMockLLMAPI()
				m.SetListModelsError(errors.New("ollama connection failed"))
				return m
			},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "healthy",
			expectedLLM:     "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStorage(), tt.setupLLM(), testLogger())

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if rr.Header().Get("Content-Type") != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedHealth, response.Status)
			}
			if response.Service != "infinite-adventure" {
				t.Errorf("Expected service 'infinite-adventure', got '%s'", response.Service)
			}
			if got := response.Components["storage"]; got != tt.expectedStorage {
				t.Errorf("Expected storage status '%s', got '%s'", tt.expectedStorage, got)
			}
			if got := response.Components["llm"]; got != tt.expectedLLM {
				t.Errorf("Expected llm status '%s', got '%s'", tt.expectedLLM, got)
			}
			if diff := time.Since(response.Timestamp); diff > time.Second {
				t.Errorf("Health check timestamp seems old: %v", diff)
			}
		})
	}
}
