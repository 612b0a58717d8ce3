package middleware

import (
	"github.com/hupe1980/agentware/core"
)

// Logging returns a middleware that logs phase transitions and message
// counts through the invocation's logger. It never mutates state and never
// jumps; use it for debugging and audit trails.
func Logging(name string) *Middleware {
	observe := func(phase string) NodeHookFunc {
		return func(ic *core.InvocationContext, state core.StateView) (*core.HookResult, error) {
			ic.LogInfo("agent.phase", "middleware", name, "phase", phase, "messages", len(state.Messages()))
			return nil, nil
		}
	}

	return New(name, func(o *Options) {
		o.BeforeAgent = NodeHook{Fn: observe("before_agent")}
		o.BeforeModel = NodeHook{Fn: observe("before_model")}
		o.AfterModel = NodeHook{Fn: observe("after_model")}
		o.AfterAgent = NodeHook{Fn: observe("after_agent")}
	})
}
