// Package tool implements the function calling subsystem: the typed
// request/result pair crossing the tool executor boundary, the Tool interface
// agents register capabilities under, and FunctionTool for exposing plain Go
// functions with schema-validated arguments.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentware/internal/util"
)

// CallRequest is a single tool invocation derived from a model-requested
// tool call. Like a model request it is treated as immutable by wrap hooks,
// which produce changed copies through Override.
type CallRequest struct {
	// ID correlates the invocation with the model's tool call.
	ID string `json:"id"`
	// Name selects the registered tool.
	Name string `json:"name"`
	// Arguments are the decoded call arguments.
	Arguments map[string]any `json:"arguments"`
}

// Override returns a copy of the request with fn applied to the copy. The
// arguments map is duplicated first.
func (r CallRequest) Override(fn func(*CallRequest)) CallRequest {
	c := r
	c.Arguments = make(map[string]any, len(r.Arguments))
	for k, v := range r.Arguments {
		c.Arguments[k] = v
	}
	if fn != nil {
		fn(&c)
	}
	return c
}

// CallResult is the outcome of one tool invocation.
type CallResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content any    `json:"content"`
}

// Text renders the result content for inclusion in conversation history.
func (r *CallResult) Text() string {
	if s, ok := r.Content.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", r.Content)
}

// Tool defines the interface for extending agent capabilities with external
// functions. Implementations must be safe for concurrent use: one tool
// instance serves many invocations and must not hold per-invocation state.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case recommended).
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with already-decoded arguments. Implementations
	// should honor ctx cancellation for long-running work.
	Call(ctx context.Context, req *CallRequest) (any, error)
}

// ValidationError represents parameter validation failures with detail.
type ValidationError = util.ValidationError

// ToolError categorizes failures raised while executing a tool.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
