package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentware/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleArgs struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleArgs{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror a JSON-decoded schema shape
		"required": []any{"x"},
	}

	assert.NoError(t, util.ValidateParameters(map[string]any{"x": 3}, schema))
	assert.NoError(t, util.ValidateParameters(map[string]any{"x": float64(3)}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{}, schema))
	assert.Error(t, util.ValidateParameters(map[string]any{"x": "nope"}, schema))
}

// -------------------- FunctionTool Tests --------------------

func sumTool() *FunctionTool {
	return NewFunctionTool("calculate_sum", "Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(ctx context.Context, req *CallRequest) (any, error) {
			return req.Arguments["a"].(float64) + req.Arguments["b"].(float64), nil
		},
	)
}

func TestFunctionTool_Call(t *testing.T) {
	result, err := sumTool().Call(context.Background(), &CallRequest{
		ID:        "c1",
		Name:      "calculate_sum",
		Arguments: map[string]any{"a": float64(2), "b": float64(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(5), result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	_, err := sumTool().Call(context.Background(), &CallRequest{
		ID:        "c1",
		Name:      "calculate_sum",
		Arguments: map[string]any{"a": float64(2)},
	})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failing := NewFunctionTool("boom", "always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(ctx context.Context, req *CallRequest) (any, error) {
			return nil, errors.New("kaput")
		},
	)

	_, err := failing.Call(context.Background(), &CallRequest{ID: "c1", Name: "boom", Arguments: map[string]any{}})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
}

func TestFunctionTool_PreservesCustomToolError(t *testing.T) {
	custom := NewToolError("picky", "not today", "RATE_LIMITED")
	failing := NewFunctionTool("picky", "returns its own error",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(ctx context.Context, req *CallRequest) (any, error) {
			return nil, custom
		},
	)

	_, err := failing.Call(context.Background(), &CallRequest{ID: "c1", Name: "picky", Arguments: map[string]any{}})
	assert.Same(t, custom, err)
}

func TestCallRequest_Override(t *testing.T) {
	orig := CallRequest{ID: "c1", Name: "echo", Arguments: map[string]any{"text": "hi"}}
	changed := orig.Override(func(r *CallRequest) {
		r.Arguments["text"] = "rewritten"
	})

	assert.Equal(t, "rewritten", changed.Arguments["text"])
	assert.Equal(t, "hi", orig.Arguments["text"])
}

func TestCallResult_Text(t *testing.T) {
	assert.Equal(t, "hello", (&CallResult{Content: "hello"}).Text())
	assert.Equal(t, "42", (&CallResult{Content: 42}).Text())
}
