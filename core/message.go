package core

import "github.com/google/uuid"

// Role tags a message with its conversational author.
type Role string

const (
	// RoleSystem marks instructions injected by the application.
	RoleSystem Role = "system"
	// RoleUser marks caller-supplied input.
	RoleUser Role = "user"
	// RoleAssistant marks model output, including requested tool calls.
	RoleAssistant Role = "assistant"
	// RoleTool marks the result of an executed tool call.
	RoleTool Role = "tool"
)

// ToolCall is a model-requested invocation of a named tool. Arguments is the
// raw JSON string exactly as produced by the provider.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one entry of the conversation history. A message is immutable
// after it enters agent state; middleware extends history by appending, never
// by rewriting.
type Message struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// ToolCalls carries the tool invocations requested by an assistant turn.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID links a RoleTool message back to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// NewID generates a unique identifier for messages and invocations.
func NewID() string { return uuid.NewString() }

// NewSystemMessage creates a system instruction message.
func NewSystemMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleSystem, Content: content}
}

// NewUserMessage creates a caller input message.
func NewUserMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a plain assistant text message.
func NewAssistantMessage(content string) Message {
	return Message{ID: NewID(), Role: RoleAssistant, Content: content}
}

// NewToolMessage records the result of the tool call identified by callID.
func NewToolMessage(callID, content string) Message {
	return Message{ID: NewID(), Role: RoleTool, Content: content, ToolCallID: callID}
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// CopyMessages returns a defensive copy of a message slice.
func CopyMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
