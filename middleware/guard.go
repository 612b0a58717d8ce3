package middleware

import (
	"fmt"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/tool"
)

// GuardOptions configures ToolGuard.
type GuardOptions struct {
	// Message is the fabricated result content returned for blocked tools.
	Message string
}

// ToolGuard returns a wrap_tool_call middleware that blocks the named tools.
// For a blocked tool the inner handler is never invoked; the hook fabricates
// a result carrying the configured message instead, so the conversation can
// continue without the underlying executor ever seeing the call.
func ToolGuard(name string, blocked []string, optFns ...func(o *GuardOptions)) *Middleware {
	opts := GuardOptions{
		Message: "tool call was blocked by policy",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	blockSet := make(map[string]bool, len(blocked))
	for _, n := range blocked {
		blockSet[n] = true
	}

	return WrapToolCall(name, func(ic *core.InvocationContext, req *tool.CallRequest, next ToolHandler) (*tool.CallResult, error) {
		if !blockSet[req.Name] {
			return next(ic.Context, req)
		}
		ic.LogWarn("tool.blocked", "middleware", name, "tool", req.Name)
		return &tool.CallResult{
			ID:      req.ID,
			Name:    req.Name,
			Content: fmt.Sprintf("%s: %s", req.Name, opts.Message),
		}, nil
	})
}
