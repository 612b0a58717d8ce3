package middleware

import (
	"context"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/model"
	"github.com/hupe1980/agentware/tool"
)

// NodeHookFunc is the signature of a node-style hook: it observes the current
// state snapshot and returns a partial update plus an optional jump directive.
// Returning (nil, nil) means "no change, continue normally".
type NodeHookFunc func(ic *core.InvocationContext, state core.StateView) (*core.HookResult, error)

// NodeHook binds a hook function to its jump allow-list. A hook may only
// return jump targets it declared here; anything else is a ConfigError.
type NodeHook struct {
	Fn NodeHookFunc
	// CanJumpTo declares the jump targets this hook is permitted to issue.
	CanJumpTo []core.JumpTarget
}

// ModelHandler continues the wrap chain toward the actual model invocation.
type ModelHandler func(ctx context.Context, req model.Request) (*model.Response, error)

// WrapModelFunc intercepts a model call. It may call next exactly once
// (normal flow, with an optionally overridden request), zero times
// (short-circuit with a fabricated response) or multiple times (retry).
type WrapModelFunc func(ic *core.InvocationContext, req model.Request, next ModelHandler) (*model.Response, error)

// ToolHandler continues the wrap chain toward the actual tool invocation.
type ToolHandler func(ctx context.Context, req *tool.CallRequest) (*tool.CallResult, error)

// WrapToolFunc intercepts a tool call with the same call-count freedoms as
// WrapModelFunc.
type WrapToolFunc func(ic *core.InvocationContext, req *tool.CallRequest, next ToolHandler) (*tool.CallResult, error)

// Options configures a Middleware. Hook slots left empty simply do not
// participate in their phase.
type Options struct {
	// Schema declares custom state fields owned by this middleware.
	Schema core.StateSchema

	BeforeAgent NodeHook
	BeforeModel NodeHook
	AfterModel  NodeHook
	AfterAgent  NodeHook

	WrapModelCall WrapModelFunc
	WrapToolCall  WrapToolFunc
}

// Middleware is one named unit of the interceptor pipeline. Instances are
// immutable after construction and shared across concurrent invocations, so
// they must not hold per-invocation data; anything per-invocation belongs in
// agent state.
type Middleware struct {
	name      string
	schema    core.StateSchema
	nodes     map[core.Phase]NodeHook
	wrapModel WrapModelFunc
	wrapTool  WrapToolFunc
}

// New constructs a Middleware from functional options.
func New(name string, optFns ...func(o *Options)) *Middleware {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	nodes := map[core.Phase]NodeHook{}
	for phase, hook := range map[core.Phase]NodeHook{
		core.PhaseBeforeAgent: opts.BeforeAgent,
		core.PhaseBeforeModel: opts.BeforeModel,
		core.PhaseAfterModel:  opts.AfterModel,
		core.PhaseAfterAgent:  opts.AfterAgent,
	} {
		if hook.Fn != nil {
			nodes[phase] = hook
		}
	}

	return &Middleware{
		name:      name,
		schema:    opts.Schema,
		nodes:     nodes,
		wrapModel: opts.WrapModelCall,
		wrapTool:  opts.WrapToolCall,
	}
}

// Name returns the middleware identifier, unique within one agent.
func (m *Middleware) Name() string { return m.name }

// Schema returns the custom state fields declared by this middleware.
func (m *Middleware) Schema() core.StateSchema { return m.schema }

// node returns the hook bound to phase, if any.
func (m *Middleware) node(phase core.Phase) (NodeHook, bool) {
	h, ok := m.nodes[phase]
	return h, ok
}

// Single-hook constructors. Each represents the decorator-style registration
// form as an anonymous middleware with exactly one populated hook slot, so
// the chain has a single internal representation.

// BeforeAgent creates a middleware with only a before_agent hook.
func BeforeAgent(name string, fn NodeHookFunc, canJumpTo ...core.JumpTarget) *Middleware {
	return New(name, func(o *Options) {
		o.BeforeAgent = NodeHook{Fn: fn, CanJumpTo: canJumpTo}
	})
}

// BeforeModel creates a middleware with only a before_model hook.
func BeforeModel(name string, fn NodeHookFunc, canJumpTo ...core.JumpTarget) *Middleware {
	return New(name, func(o *Options) {
		o.BeforeModel = NodeHook{Fn: fn, CanJumpTo: canJumpTo}
	})
}

// AfterModel creates a middleware with only an after_model hook.
func AfterModel(name string, fn NodeHookFunc, canJumpTo ...core.JumpTarget) *Middleware {
	return New(name, func(o *Options) {
		o.AfterModel = NodeHook{Fn: fn, CanJumpTo: canJumpTo}
	})
}

// AfterAgent creates a middleware with only an after_agent hook.
func AfterAgent(name string, fn NodeHookFunc, canJumpTo ...core.JumpTarget) *Middleware {
	return New(name, func(o *Options) {
		o.AfterAgent = NodeHook{Fn: fn, CanJumpTo: canJumpTo}
	})
}

// WrapModelCall creates a middleware with only a wrap_model_call hook.
func WrapModelCall(name string, fn WrapModelFunc) *Middleware {
	return New(name, func(o *Options) { o.WrapModelCall = fn })
}

// WrapToolCall creates a middleware with only a wrap_tool_call hook.
func WrapToolCall(name string, fn WrapToolFunc) *Middleware {
	return New(name, func(o *Options) { o.WrapToolCall = fn })
}
