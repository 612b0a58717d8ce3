package middleware

import (
	"github.com/hupe1980/agentware/core"
)

// Dispatcher drives node-hook passes over a Chain. Hooks run strictly
// sequentially; each hook's result merges into agent state before the next
// hook is invoked, so later hooks in the same pass observe earlier updates.
type Dispatcher struct {
	chain *Chain
}

// NewDispatcher creates a dispatcher for the given chain.
func NewDispatcher(chain *Chain) *Dispatcher {
	return &Dispatcher{chain: chain}
}

// RunPass executes the node hooks of phase against store. It returns the
// first jump directive encountered; hooks after the jumping one do not run.
//
// A hook issuing a jump outside its declared allow-list aborts the pass with
// a ConfigError and none of that hook's updates are merged. A hook error is
// wrapped as *core.HookError and terminates the invocation; node hooks have
// no enclosing handler to recover them.
func (d *Dispatcher) RunPass(ic *core.InvocationContext, phase core.Phase, store *core.StateStore) (core.JumpTarget, error) {
	for _, hook := range d.chain.pass(phase) {
		if err := ic.Err(); err != nil {
			return core.JumpNone, err
		}

		result, err := hook.fn(ic, store.Snapshot())
		if err != nil {
			return core.JumpNone, &core.HookError{Middleware: hook.middleware, Phase: phase, Err: err}
		}
		if result == nil {
			continue
		}

		if result.Jump != core.JumpNone && !hook.allowed[result.Jump] {
			// Reject before merging so the offending hook contributes zero
			// state mutation.
			return core.JumpNone, core.Configf(
				"middleware %q issued jump %q during %s outside its declared targets", hook.middleware, result.Jump, phase)
		}
		if err := store.Merge(hook.middleware, result.Update); err != nil {
			return core.JumpNone, err
		}
		if result.Jump != core.JumpNone {
			ic.LogDebug("hook.jump", "middleware", hook.middleware, "phase", string(phase), "target", string(result.Jump))
			return result.Jump, nil
		}
	}
	return core.JumpNone, nil
}
