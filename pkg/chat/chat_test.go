package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
	}{
		{"plain action", "look around", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &ChatRequest{Message: tt.message}
			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToolCallWireFormat(t *testing.T) {
	data := []byte(`{"id":"call_1","type":"function","function":{"name":"move_to","arguments":"{\"direction\":\"north\"}"}}`)

	var call ToolCall
	require.NoError(t, json.Unmarshal(data, &call))
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, ToolCallType, call.Type)
	assert.Equal(t, "move_to", call.Function.Name)
	assert.JSONEq(t, `{"direction":"north"}`, call.Function.Arguments)
}

func TestAssistantMessageOmitsEmptyToolFields(t *testing.T) {
	data, err := json.Marshal(ChatMessage{Role: ChatRoleUser, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"user","content":"hi"}`, string(data))
}
