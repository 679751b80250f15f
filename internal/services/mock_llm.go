package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/infinite-adventure/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	CompleteFunc     func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)
	ListModelsFunc   func(ctx context.Context) ([]string, error)

	// Responses are returned in order by Complete when CompleteFunc is nil.
	// Once exhausted, Complete answers "Mock response".
	Responses []*chat.Completion

	// Track calls for testing
	InitModelCalls    []string
	CompleteCalls     []chat.CompletionRequest
	IsModelReadyCalls []string
	ListModelsCalls   int

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI(responses ...*chat.Completion) *MockLLMAPI {
	return &MockLLMAPI{
		Responses:         responses,
		InitModelCalls:    make([]string, 0),
		CompleteCalls:     make([]chat.CompletionRequest, 0),
		IsModelReadyCalls: make([]string, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Complete mocks a completion request
func (m *MockLLMAPI) Complete(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, req)
	fn := m.CompleteFunc
	var next *chat.Completion
	if fn == nil && len(m.Responses) > 0 {
		next = m.Responses[0]
		m.Responses = m.Responses[1:]
	}
	m.mu.Unlock()

	// Called without the lock so CompleteFunc may block on ctx.
	if fn != nil {
		return fn(ctx, req)
	}
	if next != nil {
		return next, nil
	}
	return &chat.Completion{Content: "Mock response"}, nil
}

// ListModels mocks model listing
func (m *MockLLMAPI) ListModels(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListModelsCalls++

	if m.ListModelsFunc != nil {
		return m.ListModelsFunc(ctx)
	}
	return []string{"foo"}, nil
}

// IsModelReady mocks model readiness check
func (m *MockLLMAPI) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IsModelReadyCalls = append(m.IsModelReadyCalls, modelName)

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.CompleteCalls = make([]chat.CompletionRequest, 0)
	m.IsModelReadyCalls = make([]string, 0)
	m.ListModelsCalls = 0
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetCompleteError sets up the mock to return an error on every Complete
func (m *MockLLMAPI) SetCompleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, req chat.CompletionRequest) (*chat.Completion, error) {
		return nil, err
	}
}

// SetListModelsError sets up the mock to return an error on ListModels
func (m *MockLLMAPI) SetListModelsError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListModelsFunc = func(ctx context.Context) ([]string, error) {
		return nil, err
	}
}

// SetModelNotReady sets up the mock to return false for IsModelReady
func (m *MockLLMAPI) SetModelNotReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IsModelReadyFunc = func(ctx context.Context, modelName string) (bool, error) {
		return false, nil
	}
}

// GetCompleteCalls returns a copy of the recorded requests.
func (m *MockLLMAPI) GetCompleteCalls() []chat.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]chat.CompletionRequest, len(m.CompleteCalls))
	copy(calls, m.CompleteCalls)
	return calls
}
