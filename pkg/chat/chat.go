package chat

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ChatRequest is a player action sent to the adventure API.
type ChatRequest struct {
	WorldID uuid.UUID `json:"world_id"`
	Message string    `json:"message"`
}

// ChatResponse is the result of one turn.
type ChatResponse struct {
	WorldID          uuid.UUID `json:"world_id,omitempty"`
	Narrative        string    `json:"narrative,omitempty"`
	SuggestedActions []string  `json:"suggested_actions,omitempty"`
	// Failed is set when every attempt to reach the model failed. The
	// narrative then explains the failure and the world is unchanged.
	Failed bool   `json:"failed,omitempty"`
	Error  string `json:"error,omitempty"`
}

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
	ChatRoleTool   = "tool"
)

// ChatMessage is a single message in the OpenAI-compatible chat format.
// Assistant messages may carry tool calls; tool messages answer one call.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCallType is the only type marker the protocol defines.
const ToolCallType = "function"

// ToolCall is one operation proposed by the model. Arguments is a JSON
// document encoded as a string.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolResult answers a ToolCall.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	Failed     bool   `json:"-"`
}

// Tool advertises one operation to the model.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func (cr *ChatRequest) Validate() error {
	if strings.TrimSpace(cr.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// CompletionRequest is one call to the generation service. Tools may be
// empty, in which case the model can only answer with text.
type CompletionRequest struct {
	Messages    []ChatMessage
	Tools       []Tool
	Temperature float64
	MaxTokens   int
}

// Completion is the model's answer: text, tool calls, or both.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}
