// Package llm defines the chat-completion boundary used by workflow steps.
// The concrete provider sits behind the Client interface; steps only see
// provider-neutral request and response types.
package llm

import (
	"context"
	"encoding/json"
	"time"
)

// Client sends one completion request to a chat model.
//
// Implementations do not retry: a transport failure is fatal for the run
// and surfaces to the caller. Layer timeouts onto ctx.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// Request configures a single chat completion call.
type Request struct {
	// SystemPrompt, when set, is sent as the leading system turn.
	SystemPrompt string    `json:"system_prompt,omitempty"`
	Messages     []Message `json:"messages"`

	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`

	// Tools advertises the registered tool schemas for this call.
	Tools []Tool `json:"tools,omitempty"`

	// ForceJSON asks the provider for a JSON-object response.
	ForceJSON bool `json:"force_json,omitempty"`
}

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Name carries the tool name on tool-result turns.
	Name string `json:"name,omitempty"`

	// ToolCallID pairs a tool-result turn with the assistant call that
	// requested it, so parallel calls in one turn stay attributable.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolCalls holds the invocations an assistant turn requested.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// Role identifies the message sender.
type Role string

// Standard message roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Tool declares a callable tool: its name, purpose, and JSON Schema for
// arguments.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is the outcome of a completion call.
type Response struct {
	Content      string        `json:"content"`
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`
	Usage        TokenUsage    `json:"usage"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Duration     time.Duration `json:"duration"`
}

// Message converts the response into an assistant conversation turn,
// carrying any requested tool calls.
func (r Response) Message() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   r.Content,
		ToolCalls: r.ToolCalls,
	}
}

// TokenUsage tracks token consumption across calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates usage from another call.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
