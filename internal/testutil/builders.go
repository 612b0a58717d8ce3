package testutil

import (
	"sync"

	"github.com/hupe1980/agentware/core"
)

// InputBuilder provides a fluent helper for constructing invocation input in
// tests. Example:
//
//	input := NewInputBuilder().UserText("hi").Field("mood", "curious").Build()
//
// Chain only the parts you need; the messages field is always present.
type InputBuilder struct {
	messages []core.Message
	fields   map[string]any
}

// NewInputBuilder creates a builder with an empty conversation.
func NewInputBuilder() *InputBuilder {
	return &InputBuilder{fields: map[string]any{}}
}

// SystemText appends a system message (chainable).
func (b *InputBuilder) SystemText(t string) *InputBuilder {
	b.messages = append(b.messages, core.NewSystemMessage(t))
	return b
}

// UserText appends a user message (chainable).
func (b *InputBuilder) UserText(t string) *InputBuilder {
	b.messages = append(b.messages, core.NewUserMessage(t))
	return b
}

// AssistantText appends an assistant message (chainable).
func (b *InputBuilder) AssistantText(t string) *InputBuilder {
	b.messages = append(b.messages, core.NewAssistantMessage(t))
	return b
}

// Field sets an additional state input field (chainable).
func (b *InputBuilder) Field(key string, value any) *InputBuilder {
	b.fields[key] = value
	return b
}

// Build produces the state input map.
func (b *InputBuilder) Build() map[string]any {
	out := map[string]any{core.StateKeyMessages: core.CopyMessages(b.messages)}
	for k, v := range b.fields {
		out[k] = v
	}
	return out
}

// Recorder collects ordered labels from hooks so tests can assert execution
// order across goroutines without racing.
type Recorder struct {
	mu     sync.Mutex
	labels []string
}

// Record appends a label.
func (r *Recorder) Record(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
}

// Labels returns a copy of all recorded labels in order.
func (r *Recorder) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}
