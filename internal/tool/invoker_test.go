// Copyright 2026 fanjia1024
// Tests for the tool invocation layer

package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "chat-platform/pkg/errors"
)

type fakeTool struct {
	name    string
	schema  Schema
	execute func(ctx context.Context, input map[string]any) Result
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake" }
func (f *fakeTool) Schema() Schema      { return f.schema }
func (f *fakeTool) Execute(ctx context.Context, input map[string]any) Result {
	return f.execute(ctx, input)
}

type mapResolver map[string]Tool

func (m mapResolver) Get(name string) (Tool, bool) {
	t, ok := m[name]
	return t, ok
}

func echoTool() *fakeTool {
	return &fakeTool{
		name: "echo",
		schema: Schema{
			Type: "object",
			Properties: map[string]SchemaProperty{
				"query": {Type: "string"},
				"limit": {Type: "integer"},
			},
			Required: []string{"query"},
		},
		execute: func(ctx context.Context, input map[string]any) Result {
			return Ok(map[string]any{"echo": input["query"]})
		},
	}
}

func TestInvoker_Invoke_Success(t *testing.T) {
	inv := NewInvoker(mapResolver{"echo": echoTool()}, nil)

	res := inv.Invoke(context.Background(), "echo", `{"query":"hi","limit":3}`)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "hi", res.Data["echo"])
}

func TestInvoker_Invoke_MalformedArguments(t *testing.T) {
	inv := NewInvoker(mapResolver{"echo": echoTool()}, nil)

	res := inv.Invoke(context.Background(), "echo", `{"query": `)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindParse, res.Kind)
}

func TestInvoker_Invoke_UnknownTool(t *testing.T) {
	inv := NewInvoker(mapResolver{}, nil)

	res := inv.Invoke(context.Background(), "nope", `{}`)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindValidation, res.Kind)
}

func TestInvoker_Invoke_SchemaValidation(t *testing.T) {
	inv := NewInvoker(mapResolver{"echo": echoTool()}, nil)

	res := inv.Invoke(context.Background(), "echo", `{}`)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindValidation, res.Kind)
	assert.Contains(t, res.Error, "query")

	res = inv.Invoke(context.Background(), "echo", `{"query":"hi","limit":"three"}`)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindValidation, res.Kind)
}

func TestInvoker_Invoke_PanicRecovered(t *testing.T) {
	bomb := &fakeTool{
		name:   "bomb",
		schema: Schema{Type: "object"},
		execute: func(ctx context.Context, input map[string]any) Result {
			panic("boom")
		},
	}
	inv := NewInvoker(mapResolver{"bomb": bomb}, nil)

	res := inv.Invoke(context.Background(), "bomb", `{}`)
	require.False(t, res.Success)
	assert.Equal(t, apperrors.KindUpstream, res.Kind)
}
