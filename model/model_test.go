package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentware/core"
)

func TestMockModel_ScriptedResponses(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueResponse(NewTextResponse("first"))
	m.EnqueueError(errors.New("second fails"))

	resp, err := m.Invoke(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Message.Content)

	_, err = m.Invoke(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockModel_EchoesWhenQueueDrained(t *testing.T) {
	m := NewMockModel("test")
	resp, err := m.Invoke(context.Background(), Request{
		Messages: []core.Message{core.NewUserMessage("ping")},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Message.Content, "ping")
}

func TestMockModel_StreamEmitsOrderedFragments(t *testing.T) {
	m := NewMockModel("test")
	m.EnqueueResponse(NewTextResponse("hey"))

	emit := make(chan Fragment, 16)
	resp, err := m.InvokeStream(context.Background(), Request{}, emit)
	close(emit)
	require.NoError(t, err)
	assert.Equal(t, "hey", resp.Message.Content)

	var text string
	for f := range emit {
		text += f.Text
	}
	assert.Equal(t, "hey", text)
}

func TestRequest_OverrideCopiesSlices(t *testing.T) {
	orig := Request{
		Messages: []core.Message{core.NewUserMessage("hi")},
		Tools:    []ToolDefinition{{Type: "function"}},
	}

	changed := orig.Override(func(r *Request) {
		r.Messages = append(r.Messages, core.NewAssistantMessage("extra"))
		r.Tools = nil
		r.System = "sys"
	})

	assert.Len(t, changed.Messages, 2)
	assert.Len(t, orig.Messages, 1)
	assert.Len(t, orig.Tools, 1)
	assert.Empty(t, orig.System)
}

func TestNewToolCallResponse(t *testing.T) {
	resp := NewToolCallResponse(core.ToolCall{ID: "c1", Name: "echo"})
	assert.True(t, resp.HasToolCalls())
	assert.Equal(t, "tool_calls", resp.FinishReason)
	require.Len(t, resp.ToolCalls(), 1)
	assert.Equal(t, "echo", resp.ToolCalls()[0].Name)
}
