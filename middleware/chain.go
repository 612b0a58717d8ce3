package middleware

import (
	"context"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/model"
	"github.com/hupe1980/agentware/tool"
)

// Chain holds the validated, ordered middleware list of one agent. Order is
// semantically significant and preserved exactly as given: it decides both
// the node-hook execution order and the wrap-hook nesting. A Chain is
// immutable after construction and shared by all invocations of its agent.
type Chain struct {
	mws     []*Middleware
	schemas *core.SchemaSet
}

// boundHook pairs a node hook with its owning middleware and the compiled
// jump allow-list.
type boundHook struct {
	middleware string
	fn         NodeHookFunc
	allowed    map[core.JumpTarget]bool
}

// NewChain validates the middleware list eagerly: names must be non-empty
// and unique, every declared jump target must be a known target, and state
// schema fields must be globally unique. All violations are ConfigErrors
// surfaced here, at registration, not at runtime.
func NewChain(mws ...*Middleware) (*Chain, error) {
	seen := map[string]bool{}
	decls := make([]core.SchemaDecl, 0, len(mws))
	for _, mw := range mws {
		if mw.name == "" {
			return nil, core.Configf("middleware with empty name")
		}
		if seen[mw.name] {
			return nil, core.Configf("duplicate middleware name %q", mw.name)
		}
		seen[mw.name] = true

		for phase, hook := range mw.nodes {
			for _, target := range hook.CanJumpTo {
				if !target.Valid() {
					return nil, core.Configf("middleware %q declares unknown jump target %q for %s", mw.name, target, phase)
				}
			}
		}
		decls = append(decls, core.SchemaDecl{Owner: mw.name, Schema: mw.schema})
	}

	schemas, err := core.NewSchemaSet(decls...)
	if err != nil {
		return nil, err
	}
	return &Chain{mws: mws, schemas: schemas}, nil
}

// SchemaSet returns the validated union of all middleware schemas.
func (c *Chain) SchemaSet() *core.SchemaSet { return c.schemas }

// Len returns the number of registered middlewares.
func (c *Chain) Len() int { return len(c.mws) }

// pass returns the hooks participating in phase, ordered for execution:
// registration order for before_* phases, reverse registration order for
// after_* phases.
func (c *Chain) pass(phase core.Phase) []boundHook {
	reverse := phase == core.PhaseAfterModel || phase == core.PhaseAfterAgent

	hooks := make([]boundHook, 0, len(c.mws))
	for i := range c.mws {
		mw := c.mws[i]
		if reverse {
			mw = c.mws[len(c.mws)-1-i]
		}
		hook, ok := mw.node(phase)
		if !ok {
			continue
		}
		allowed := make(map[core.JumpTarget]bool, len(hook.CanJumpTo))
		for _, t := range hook.CanJumpTo {
			allowed[t] = true
		}
		hooks = append(hooks, boundHook{middleware: mw.name, fn: hook.Fn, allowed: allowed})
	}
	return hooks
}

// WrapModel composes the wrap_model_call hooks around inner. The chain nests
// so the first registered middleware is outermost: m1 receives a handler
// that runs m2, whose handler runs m3, and so on down to inner. Each nested
// call rebinds the invocation scope to the context it received, so a context
// derived by an outer hook reaches every hook and handler beneath it.
func (c *Chain) WrapModel(ic *core.InvocationContext, inner ModelHandler) ModelHandler {
	handler := inner
	for i := len(c.mws) - 1; i >= 0; i-- {
		wrap := c.mws[i].wrapModel
		if wrap == nil {
			continue
		}
		next := handler
		handler = func(ctx context.Context, req model.Request) (*model.Response, error) {
			return wrap(ic.WithContext(ctx), req, next)
		}
	}
	return handler
}

// WrapTool composes the wrap_tool_call hooks around inner with the same
// nesting as WrapModel.
func (c *Chain) WrapTool(ic *core.InvocationContext, inner ToolHandler) ToolHandler {
	handler := inner
	for i := len(c.mws) - 1; i >= 0; i-- {
		wrap := c.mws[i].wrapTool
		if wrap == nil {
			continue
		}
		next := handler
		handler = func(ctx context.Context, req *tool.CallRequest) (*tool.CallResult, error) {
			return wrap(ic.WithContext(ctx), req, next)
		}
	}
	return handler
}
