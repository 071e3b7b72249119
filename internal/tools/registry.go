package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"leadgen/internal/assistant"
)

var ErrUnknownTool = errors.New("unknown tool")

// Handler executes one tool call with raw JSON arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Registry is the typed capability map from tool name to handler.
// Names are validated at registration time; an unknown name at call
// time comes back as ErrUnknownTool for the run to carry as an error
// output.
type Registry struct {
	handlers map[string]Handler
	defs     []assistant.ToolDefinition
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(def assistant.ToolDefinition, h Handler) error {
	if def.Name == "" {
		return errors.New("tool name required")
	}
	if h == nil {
		return fmt.Errorf("tool %q has no handler", def.Name)
	}
	if _, ok := r.handlers[def.Name]; ok {
		return fmt.Errorf("tool %q already registered", def.Name)
	}
	r.handlers[def.Name] = h
	r.defs = append(r.defs, def)
	return nil
}

func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (any, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return h(ctx, args)
}

// Definitions returns the advertised tool surface for assistant
// bootstrap.
func (r *Registry) Definitions() []assistant.ToolDefinition {
	return r.defs
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ assistant.ToolExecutor = (*Registry)(nil)
