// Package model defines the collaborator boundary between the agent runtime
// and language model providers: the normalized Request/Response pair, the
// Model interface and the streaming fragment contract. Provider adapters live
// in subpackages (openai, anthropic); MockModel serves tests and examples.
package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/agentware/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object (minimal subset expected).
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request is the immutable model input derived from agent state each loop
// iteration. Wrap hooks never mutate a Request in place; they produce a
// changed copy through Override.
type Request struct {
	Messages []core.Message   `json:"messages"`
	System   string           `json:"system,omitempty"`
	Model    string           `json:"model,omitempty"` // active model reference
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// Override returns a copy of the request with fn applied to the copy. Slices
// are duplicated first, so the original request is never observed changed by
// outer wrap hooks.
func (r Request) Override(fn func(*Request)) Request {
	c := r
	c.Messages = core.CopyMessages(r.Messages)
	if r.Tools != nil {
		c.Tools = make([]ToolDefinition, len(r.Tools))
		copy(c.Tools, r.Tools)
	}
	if fn != nil {
		fn(&c)
	}
	return c
}

// TokenUsage captures token statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the result of one model invocation: the produced assistant
// message (which may request tool calls) plus provider metadata.
type Response struct {
	Message      core.Message `json:"message"`
	FinishReason string       `json:"finish_reason,omitempty"` // "stop", "length", "tool_calls", ...
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// ToolCalls returns the tool invocations requested by the response.
func (r *Response) ToolCalls() []core.ToolCall { return r.Message.ToolCalls }

// HasToolCalls reports whether the response requests any tool execution.
func (r *Response) HasToolCalls() bool { return r.Message.HasToolCalls() }

// Fragment is one element of the lazy streaming sequence a model may emit
// during generation. The sequence is ordered, finite and single-pass.
type Fragment struct {
	// Text is a partial chunk of the assistant message content.
	Text string `json:"text"`
	// Done marks the final fragment of the invocation.
	Done bool `json:"done,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", ...
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the agent loop requires of a provider.
// Invoke blocks until the full response is available or ctx is cancelled.
type Model interface {
	Invoke(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// StreamingModel is implemented by providers that can surface partial output
// while generating. Implementations send fragments to emit in order and must
// not close the channel; the agent loop owns its lifetime. The returned
// Response is the assembled final result.
type StreamingModel interface {
	Model
	InvokeStream(ctx context.Context, req Request, emit chan<- Fragment) (*Response, error)
}

// NewTextResponse builds a plain assistant text response.
func NewTextResponse(text string) *Response {
	return &Response{Message: core.NewAssistantMessage(text), FinishReason: "stop"}
}

// NewToolCallResponse builds an assistant response requesting the given tool calls.
func NewToolCallResponse(calls ...core.ToolCall) *Response {
	msg := core.Message{ID: core.NewID(), Role: core.RoleAssistant, ToolCalls: calls}
	return &Response{Message: msg, FinishReason: "tool_calls"}
}

// MockModel is a scripted in-memory Model for tests and examples. Queued
// outcomes are consumed in order; once the queue is drained every further
// call echoes the last user message. Safe for concurrent invocations.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	queue    []mockOutcome
	requests []Request
}

type mockOutcome struct {
	resp *Response
	err  error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// EnqueueResponse appends a canned response to the script.
func (m *MockModel) EnqueueResponse(resp *Response) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockOutcome{resp: resp})
	return m
}

// EnqueueError appends a failing invocation to the script.
func (m *MockModel) EnqueueError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockOutcome{err: err})
	return m
}

// Invoke implements Model.
func (m *MockModel) Invoke(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	var outcome *mockOutcome
	if len(m.queue) > 0 {
		o := m.queue[0]
		m.queue = m.queue[1:]
		outcome = &o
	}
	m.mu.Unlock()

	if outcome != nil {
		return outcome.resp, outcome.err
	}
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			return NewTextResponse(fmt.Sprintf("Mock response to: %s", req.Messages[i].Content)), nil
		}
	}
	return NewTextResponse("Mock response"), nil
}

// InvokeStream implements StreamingModel by chunking the scripted response
// content into per-rune fragments.
func (m *MockModel) InvokeStream(ctx context.Context, req Request, emit chan<- Fragment) (*Response, error) {
	resp, err := m.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	for _, r := range resp.Message.Content {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case emit <- Fragment{Text: string(r)}:
		}
	}
	return resp, nil
}

// CallCount returns how often the model was invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of all requests seen by the model.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
