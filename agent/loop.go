package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/middleware"
	"github.com/hupe1980/agentware/model"
	"github.com/hupe1980/agentware/tool"
)

// run drives one invocation through the phase state machine:
//
//	BeforeAgent → [BeforeModel → ModelCall → AfterModel → (ToolCall)*] → AfterAgent → Done
//
// The bracketed segment repeats while the model requests tool calls. Jump
// directives redirect the default transitions; everything else is strictly
// sequential within the invocation.
func (a *Agent) run(ic *core.InvocationContext, store *core.StateStore, frags chan<- model.Fragment) error {
	modelHandler := a.chain.WrapModel(ic, a.invokeModel(frags))
	toolHandler := a.chain.WrapTool(ic, a.invokeTool)

	phase := core.PhaseBeforeAgent
	var pending []core.ToolCall
	var resp *model.Response

	for phase != core.PhaseDone {
		if err := ic.Err(); err != nil {
			return err
		}

		switch phase {
		case core.PhaseBeforeAgent:
			next, err := a.nodePass(ic, phase, store, core.PhaseBeforeModel)
			if err != nil {
				return err
			}
			phase = next

		case core.PhaseBeforeModel:
			// All before_model hooks complete and merge into state before
			// the model request is derived for the wrap chain.
			next, err := a.nodePass(ic, phase, store, core.PhaseModelCall)
			if err != nil {
				return err
			}
			phase = next

		case core.PhaseModelCall:
			req := a.buildRequest(store)
			var err error
			resp, err = modelHandler(ic.Context, req)
			if err != nil {
				// Unhandled collaborator error: fatal, no partial state.
				return err
			}
			store.AppendMessages(resp.Message)
			pending = resp.ToolCalls()
			phase = core.PhaseAfterModel

		case core.PhaseAfterModel:
			jump, err := a.dispatcher.RunPass(ic, phase, store)
			if err != nil {
				return err
			}
			switch jump {
			case core.JumpModel:
				// Re-enter before-model, dropping any tool calls still
				// pending from the current response.
				pending = nil
				phase = core.PhaseBeforeModel
			case core.JumpTools:
				if len(pending) == 0 {
					return core.Configf("jump to tools during %s but the current response has no tool calls", phase)
				}
				phase = core.PhaseToolCall
			case core.JumpEnd:
				phase = core.PhaseAfterAgent
			default:
				if len(pending) > 0 {
					phase = core.PhaseToolCall
				} else {
					phase = core.PhaseAfterAgent
				}
			}

		case core.PhaseToolCall:
			if err := a.executeToolCalls(ic, store, toolHandler, pending); err != nil {
				return err
			}
			pending = nil
			phase = core.PhaseBeforeModel

		case core.PhaseAfterAgent:
			jump, err := a.dispatcher.RunPass(ic, phase, store)
			if err != nil {
				return err
			}
			switch jump {
			case core.JumpModel:
				pending = nil
				phase = core.PhaseBeforeModel
			case core.JumpTools:
				if len(pending) == 0 {
					return core.Configf("jump to tools during %s but the current response has no tool calls", phase)
				}
				phase = core.PhaseToolCall
			default:
				// JumpEnd during after_agent is already at its target.
				phase = core.PhaseDone
			}
		}
	}
	return nil
}

// nodePass runs the node hooks of phase and resolves an eventual jump,
// falling back to fallthru when no hook redirected the loop.
func (a *Agent) nodePass(ic *core.InvocationContext, phase core.Phase, store *core.StateStore, fallthru core.Phase) (core.Phase, error) {
	jump, err := a.dispatcher.RunPass(ic, phase, store)
	if err != nil {
		return phase, err
	}
	if jump == core.JumpNone {
		return fallthru, nil
	}
	if jump == core.JumpTools {
		return phase, core.Configf("jump to tools during %s but no model response has been produced", phase)
	}
	return core.ResolveJump(phase, jump)
}

// buildRequest derives the immutable model request from current state.
func (a *Agent) buildRequest(store *core.StateStore) model.Request {
	req := model.Request{
		Messages: store.Messages(),
		System:   a.system,
		Model:    a.llm.Info().Name,
	}
	if len(a.tools) == 0 {
		return req
	}

	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	req.Tools = make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := a.tools[name]
		req.Tools = append(req.Tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return req
}

// invokeModel is the innermost model handler of the wrap chain. With a
// streaming consumer attached and a streaming-capable model it relays
// fragments while producing the final response.
func (a *Agent) invokeModel(frags chan<- model.Fragment) middleware.ModelHandler {
	return func(ctx context.Context, req model.Request) (*model.Response, error) {
		if frags != nil {
			if sm, ok := a.llm.(model.StreamingModel); ok {
				return sm.InvokeStream(ctx, req, frags)
			}
		}
		return a.llm.Invoke(ctx, req)
	}
}

// invokeTool is the innermost tool handler of the wrap chain.
func (a *Agent) invokeTool(ctx context.Context, req *tool.CallRequest) (*tool.CallResult, error) {
	t, ok := a.tools[req.Name]
	if !ok {
		return nil, tool.NewToolError(req.Name, "tool not registered", "UNKNOWN_TOOL")
	}

	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}

	start := time.Now()
	content, err := t.Call(ctx, req)
	a.logger.Info("agent.tool.executed", "agent", a.name, "tool", req.Name, "duration_ms", time.Since(start).Milliseconds(), "error", err != nil)
	if err != nil {
		return nil, err
	}
	return &tool.CallResult{ID: req.ID, Name: req.Name, Content: content}, nil
}

// executeToolCalls runs the pending tool calls of the current response in
// order, appending each result to conversation history.
func (a *Agent) executeToolCalls(ic *core.InvocationContext, store *core.StateStore, handler middleware.ToolHandler, calls []core.ToolCall) error {
	for _, call := range calls {
		if err := ic.Err(); err != nil {
			return err
		}

		args := map[string]any{}
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				return fmt.Errorf("decode arguments for tool %q: %w", call.Name, err)
			}
		}

		result, err := handler(ic.Context, &tool.CallRequest{ID: call.ID, Name: call.Name, Arguments: args})
		if err != nil {
			// Unhandled collaborator error: fatal, no partial state.
			return err
		}
		store.AppendMessages(core.NewToolMessage(result.ID, result.Text()))
	}
	return nil
}
