package core

// Phase identifies one stage of the agent loop state machine.
type Phase string

const (
	// PhaseBeforeAgent runs once at invocation start.
	PhaseBeforeAgent Phase = "before_agent"
	// PhaseBeforeModel runs before each model call.
	PhaseBeforeModel Phase = "before_model"
	// PhaseModelCall performs the wrapped model invocation.
	PhaseModelCall Phase = "model_call"
	// PhaseAfterModel runs after each model response.
	PhaseAfterModel Phase = "after_model"
	// PhaseToolCall executes the tool calls of the current response.
	PhaseToolCall Phase = "tool_call"
	// PhaseAfterAgent runs once before the invocation terminates.
	PhaseAfterAgent Phase = "after_agent"
	// PhaseDone is the terminal phase.
	PhaseDone Phase = "done"
)

// JumpTarget redirects the agent loop to a non-default next phase.
type JumpTarget string

const (
	// JumpModel re-enters the before-model phase, discarding any tool calls
	// still pending from the current response.
	JumpModel JumpTarget = "model"
	// JumpTools proceeds straight to tool execution using the tool calls on
	// the current model response.
	JumpTools JumpTarget = "tools"
	// JumpEnd short-circuits to the after-agent phase.
	JumpEnd JumpTarget = "end"
	// JumpNone means no redirection was requested.
	JumpNone JumpTarget = ""
)

// Valid reports whether t names a known jump target.
func (t JumpTarget) Valid() bool {
	switch t {
	case JumpModel, JumpTools, JumpEnd:
		return true
	}
	return false
}

// ResolveJump maps a jump directive issued during phase to the next loop
// phase. The mapping is fixed: model re-enters before-model, tools enters
// tool execution, end enters after-agent. An unknown target yields a
// ConfigError so ambiguous directives never execute unintended control flow.
func ResolveJump(phase Phase, target JumpTarget) (Phase, error) {
	switch target {
	case JumpModel:
		return PhaseBeforeModel, nil
	case JumpTools:
		return PhaseToolCall, nil
	case JumpEnd:
		return PhaseAfterAgent, nil
	}
	return phase, Configf("unknown jump target %q issued during %s", target, phase)
}

// HookResult is the partial outcome returned by a node-style hook: a set of
// state fields to merge plus an optional jump directive. A nil HookResult
// means "no change, continue normally".
type HookResult struct {
	// Update maps state field names to new values. The reserved messages
	// field is appended to history; all other fields replace their value.
	Update map[string]any
	// Jump optionally redirects the loop. The issuing hook must have
	// declared the target in its allow-list at registration.
	Jump JumpTarget
}
