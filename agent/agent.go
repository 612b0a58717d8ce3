// Package agent exposes the middleware-driven execution engine. An Agent is
// constructed once from a model, a tool set and an ordered middleware list,
// then serves any number of independent, concurrently running invocations.
package agent

import (
	"context"
	"time"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/logging"
	"github.com/hupe1980/agentware/middleware"
	"github.com/hupe1980/agentware/model"
	"github.com/hupe1980/agentware/tool"
)

// Options configures an Agent instance.
type Options struct {
	// Middlewares is the ordered interceptor pipeline. Order is semantically
	// significant and preserved exactly as given.
	Middlewares []*middleware.Middleware
	// Tools are the capabilities the model may call.
	Tools []tool.Tool
	// SystemPrompt is prepended to every model request.
	SystemPrompt string
	// ToolTimeout bounds each individual tool call. Zero means no implicit
	// timeout; hooks and tools own their own deadlines.
	ToolTimeout time.Duration
	// Logger defaults to NoOpLogger when nil.
	Logger logging.Logger
}

// Agent drives the request/response loop of one configured assistant. The
// configuration is immutable after New; all per-invocation data lives in the
// invocation's own state store, so one Agent safely serves concurrent
// invocations.
type Agent struct {
	name        string
	llm         model.Model
	chain       *middleware.Chain
	dispatcher  *middleware.Dispatcher
	tools       map[string]tool.Tool
	system      string
	toolTimeout time.Duration
	logger      logging.Logger
}

// New creates an Agent. The middleware list is validated eagerly: duplicate
// middleware names, colliding schema fields and unknown jump targets are
// ConfigErrors returned here, not at invocation time.
func New(name string, llm model.Model, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	chain, err := middleware.NewChain(opts.Middlewares...)
	if err != nil {
		return nil, err
	}

	tools := make(map[string]tool.Tool, len(opts.Tools))
	for _, t := range opts.Tools {
		if _, exists := tools[t.Name()]; exists {
			return nil, core.Configf("duplicate tool name %q", t.Name())
		}
		tools[t.Name()] = t
	}

	return &Agent{
		name:        name,
		llm:         llm,
		chain:       chain,
		dispatcher:  middleware.NewDispatcher(chain),
		tools:       tools,
		system:      opts.SystemPrompt,
		toolTimeout: opts.ToolTimeout,
		logger:      opts.Logger,
	}, nil
}

// Name returns the agent's name.
func (a *Agent) Name() string { return a.name }

// InvokeOptions configures a single invocation.
type InvokeOptions struct {
	// Metadata is read-only caller context (user/tenant identifiers and the
	// like) visible to all hooks of this invocation. Never persisted, never
	// merged into agent state.
	Metadata map[string]any
	// Fragments optionally receives the ordered, finite, single-pass stream
	// of partial model output. The agent closes the channel when the
	// invocation finishes.
	Fragments chan<- model.Fragment
}

// Invoke runs one invocation to completion and returns the public subset of
// final agent state: the messages history plus every custom field not
// declared private. Input must contain messages and may seed any declared
// custom field; unknown fields are rejected. On error no partial state is
// returned.
func (a *Agent) Invoke(ctx context.Context, input map[string]any, optFns ...func(o *InvokeOptions)) (map[string]any, error) {
	opts := InvokeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Fragments != nil {
		defer close(opts.Fragments)
	}

	store, err := a.chain.SchemaSet().NewStore(input)
	if err != nil {
		return nil, err
	}

	ic := core.NewInvocationContext(ctx, opts.Metadata, a.logger)
	ic.LogInfo("invocation.start", "agent", a.name, "invocation_id", ic.InvocationID)

	start := time.Now()
	if err := a.run(ic, store, opts.Fragments); err != nil {
		ic.LogError("invocation.failed", "agent", a.name, "invocation_id", ic.InvocationID, "error", err.Error())
		return nil, err
	}
	ic.LogInfo("invocation.done", "agent", a.name, "invocation_id", ic.InvocationID, "duration_ms", time.Since(start).Milliseconds())

	return store.Public(), nil
}

// Stream runs one invocation while exposing partial model output as an
// ordered, finite, single-pass fragment sequence. The fragment channel is
// closed when the invocation finishes; a failure is delivered on the error
// channel. Use Invoke directly when the final state mapping is needed.
func (a *Agent) Stream(ctx context.Context, input map[string]any, optFns ...func(o *InvokeOptions)) (<-chan model.Fragment, <-chan error) {
	frags := make(chan model.Fragment, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		_, err := a.Invoke(ctx, input, append(optFns, func(o *InvokeOptions) {
			o.Fragments = frags
		})...)
		if err != nil {
			errCh <- err
		}
	}()

	return frags, errCh
}
