package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScriptedClient_ReplaysInOrder returns responses in script order and
// records every request.
func TestScriptedClient_ReplaysInOrder(t *testing.T) {
	client := NewScriptedClient(
		Response{Content: "first"},
		Response{Content: "second"},
	)

	resp, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)
	assert.Equal(t, 1, client.Remaining())

	resp, err = client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "again"}}})
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)
	assert.Equal(t, 0, client.Remaining())

	require.Len(t, client.Requests, 2)
	assert.Equal(t, "hi", client.Requests[0].Messages[0].Content)
	assert.Equal(t, "again", client.Requests[1].Messages[0].Content)
}

// TestScriptedClient_Exhausted errors once the script runs out.
func TestScriptedClient_Exhausted(t *testing.T) {
	client := NewScriptedClient(Response{Content: "only"})

	_, err := client.Complete(context.Background(), Request{})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exhausted after 1 responses")
	// The failed request is still recorded.
	assert.Len(t, client.Requests, 2)
}

// TestResponse_Message converts a response into an assistant turn.
func TestResponse_Message(t *testing.T) {
	resp := Response{
		Content:   "calling a tool",
		ToolCalls: []ToolCall{{ID: "call_1", Name: "calculator", Arguments: []byte(`{"a":1}`)}},
	}

	msg := resp.Message()
	assert.Equal(t, RoleAssistant, msg.Role)
	assert.Equal(t, "calling a tool", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
}

// TestTokenUsage_Add accumulates usage across calls.
func TestTokenUsage_Add(t *testing.T) {
	var total TokenUsage
	total.Add(TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})
	total.Add(TokenUsage{InputTokens: 20, OutputTokens: 10, TotalTokens: 30})

	assert.Equal(t, 30, total.InputTokens)
	assert.Equal(t, 15, total.OutputTokens)
	assert.Equal(t, 45, total.TotalTokens)
}
