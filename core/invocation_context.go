package core

import (
	"context"
	"maps"

	"github.com/hupe1980/agentware/logging"
)

// InvocationContext is the per-invocation scope visible to every hook: the
// ambient cancellation context, a generated invocation ID and read-only
// caller metadata (user or tenant identifiers and the like). It is distinct
// from agent state: never persisted, never mutated by hooks.
type InvocationContext struct {
	Context      context.Context
	InvocationID string

	metadata map[string]any

	*loggerAdapter
}

// NewInvocationContext creates an invocation scope with a fresh ID. The
// metadata map is copied so later caller mutations cannot leak in.
func NewInvocationContext(ctx context.Context, metadata map[string]any, logger logging.Logger) *InvocationContext {
	md := map[string]any{}
	maps.Copy(md, metadata)
	return &InvocationContext{
		Context:       ctx,
		InvocationID:  NewID(),
		metadata:      md,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// WithContext returns a copy of the invocation scope bound to ctx. The wrap
// chain rebinds the scope around each nested handler call, so a context
// derived by an outer hook (a per-attempt timeout, say) stays visible to
// every hook and handler beneath it.
func (ic *InvocationContext) WithContext(ctx context.Context) *InvocationContext {
	c := *ic
	c.Context = ctx
	return &c
}

// Done returns a channel closed when the invocation is cancelled.
func (ic *InvocationContext) Done() <-chan struct{} { return ic.Context.Done() }

// Err returns the cancellation error, if any.
func (ic *InvocationContext) Err() error { return ic.Context.Err() }

// Metadata returns the caller-supplied metadata value for key.
func (ic *InvocationContext) Metadata(key string) (any, bool) {
	v, ok := ic.metadata[key]
	return v, ok
}
