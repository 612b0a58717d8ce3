package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentware/core"
	"github.com/hupe1980/agentware/model"
	"github.com/hupe1980/agentware/tool"
)

func TestModelRetry_RecoversTransientFailures(t *testing.T) {
	chain, err := NewChain(ModelRetry("retry", func(o *RetryOptions) {
		o.MaxAttempts = 3
	}))
	require.NoError(t, err)

	calls := 0
	handler := chain.WrapModel(testIC(), func(ctx context.Context, req model.Request) (*model.Response, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return model.NewTextResponse("recovered"), nil
	})

	resp, err := handler(context.Background(), model.Request{})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "recovered", resp.Message.Content)
}

func TestModelRetry_ExhaustedReRaisesFinalError(t *testing.T) {
	chain, err := NewChain(ModelRetry("retry", func(o *RetryOptions) {
		o.MaxAttempts = 2
	}))
	require.NoError(t, err)

	final := errors.New("still down")
	calls := 0
	handler := chain.WrapModel(testIC(), func(ctx context.Context, req model.Request) (*model.Response, error) {
		calls++
		return nil, final
	})

	_, err = handler(context.Background(), model.Request{})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.ErrorIs(t, err, final)
}

func TestCallLimit_JumpsEndWhenBudgetExhausted(t *testing.T) {
	chain, err := NewChain(CallLimit("limiter", 2))
	require.NoError(t, err)

	store := newStore(t, chain)
	d := NewDispatcher(chain)
	ic := testIC()

	for i := 0; i < 2; i++ {
		jump, err := d.RunPass(ic, core.PhaseBeforeModel, store)
		require.NoError(t, err)
		assert.Equal(t, core.JumpNone, jump)
	}

	jump, err := d.RunPass(ic, core.PhaseBeforeModel, store)
	require.NoError(t, err)
	assert.Equal(t, core.JumpEnd, jump)
}

func TestCallLimit_CounterIsPrivate(t *testing.T) {
	chain, err := NewChain(CallLimit("limiter", 5))
	require.NoError(t, err)

	store := newStore(t, chain)
	_, err = NewDispatcher(chain).RunPass(testIC(), core.PhaseBeforeModel, store)
	require.NoError(t, err)

	_, exposed := store.Public()[callCountField]
	assert.False(t, exposed, "budget counter must not leak into invocation output")
}

func TestModelCache_SecondIdenticalRequestHits(t *testing.T) {
	chain, err := NewChain(ModelCache("cache"))
	require.NoError(t, err)

	calls := 0
	handler := chain.WrapModel(testIC(), func(ctx context.Context, req model.Request) (*model.Response, error) {
		calls++
		return model.NewTextResponse("fresh"), nil
	})

	req := model.Request{
		System:   "sys",
		Messages: []core.Message{core.NewUserMessage("hello")},
	}
	first, err := handler(context.Background(), req)
	require.NoError(t, err)
	second, err := handler(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second identical request must not reach the inner handler")
	assert.Equal(t, first, second)

	_, err = handler(context.Background(), model.Request{
		System:   "sys",
		Messages: []core.Message{core.NewUserMessage("different")},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestModelCache_MutatedResponsesDoNotCorruptEntries(t *testing.T) {
	chain, err := NewChain(ModelCache("cache"))
	require.NoError(t, err)

	calls := 0
	handler := chain.WrapModel(testIC(), func(ctx context.Context, req model.Request) (*model.Response, error) {
		calls++
		return model.NewTextResponse("fresh"), nil
	})

	req := model.Request{Messages: []core.Message{core.NewUserMessage("hello")}}

	first, err := handler(context.Background(), req)
	require.NoError(t, err)
	first.Message.Content = "tampered"

	second, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fresh", second.Message.Content, "miss-path mutation must not reach the cache")
	second.Message.Content = "also tampered"

	third, err := handler(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "fresh", third.Message.Content, "hit-path mutation must not reach the cache")
	assert.Equal(t, 1, calls)
}

func TestToolGuard_BlockedToolNeverReachesExecutor(t *testing.T) {
	chain, err := NewChain(ToolGuard("guard", []string{"dangerous"}))
	require.NoError(t, err)

	executed := []string{}
	handler := chain.WrapTool(testIC(), func(ctx context.Context, req *tool.CallRequest) (*tool.CallResult, error) {
		executed = append(executed, req.Name)
		return &tool.CallResult{ID: req.ID, Name: req.Name, Content: "done"}, nil
	})

	blocked, err := handler(context.Background(), &tool.CallRequest{ID: "c1", Name: "dangerous"})
	require.NoError(t, err)
	assert.Contains(t, blocked.Text(), "blocked")

	allowed, err := handler(context.Background(), &tool.CallRequest{ID: "c2", Name: "harmless"})
	require.NoError(t, err)
	assert.Equal(t, "done", allowed.Content)

	assert.Equal(t, []string{"harmless"}, executed)
}
