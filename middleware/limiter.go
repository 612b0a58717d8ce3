package middleware

import (
	"github.com/hupe1980/agentware/core"
)

// callCountField is the private state field CallLimit uses to track model
// calls per invocation. The counter lives in agent state, not in the
// middleware instance, so the middleware stays safe to share across
// concurrent invocations.
const callCountField = "model_call_count"

// CallLimit returns a middleware that caps the number of model calls per
// invocation. When the budget is exhausted its before_model hook jumps to
// end, so the after_agent pass still runs and the invocation terminates
// gracefully instead of looping. max <= 0 means unlimited.
func CallLimit(name string, max int) *Middleware {
	return New(name, func(o *Options) {
		o.Schema = core.StateSchema{
			callCountField: {Default: 0, Private: true},
		}
		o.BeforeModel = NodeHook{
			CanJumpTo: []core.JumpTarget{core.JumpEnd},
			Fn: func(ic *core.InvocationContext, state core.StateView) (*core.HookResult, error) {
				count, _ := state[callCountField].(int)
				if max > 0 && count >= max {
					ic.LogWarn("model.limit_reached", "middleware", name, "max_calls", max)
					return &core.HookResult{Jump: core.JumpEnd}, nil
				}
				return &core.HookResult{Update: map[string]any{callCountField: count + 1}}, nil
			},
		}
	})
}
