package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadgen/internal/assistant"
)

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(assistant.ToolDefinition{Name: "echo"}, func(ctx context.Context, args json.RawMessage) (any, error) {
		var a map[string]string
		require.NoError(t, json.Unmarshal(args, &a))
		return a["msg"], nil
	}))

	got, err := reg.Execute(context.Background(), "echo", json.RawMessage(`{"msg":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestRegistryUnknownTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "does_not_exist", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil }
	require.NoError(t, reg.Register(assistant.ToolDefinition{Name: "x"}, noop))
	assert.Error(t, reg.Register(assistant.ToolDefinition{Name: "x"}, noop))
}

func TestRegistryRejectsInvalidRegistration(t *testing.T) {
	reg := NewRegistry()
	noop := func(ctx context.Context, args json.RawMessage) (any, error) { return nil, nil }
	assert.Error(t, reg.Register(assistant.ToolDefinition{Name: ""}, noop))
	assert.Error(t, reg.Register(assistant.ToolDefinition{Name: "y"}, nil))
}
