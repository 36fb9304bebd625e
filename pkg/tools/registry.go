package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Razex4777/ai-image-tools/pkg/protocol"
)

// ErrUnknownTool is returned when a call names an unregistered tool.
var ErrUnknownTool = errors.New("unknown tool")

// Handler executes a tool against raw JSON parameters.
type Handler func(ctx context.Context, params json.RawMessage) (string, error)

// Tool binds a name and schema to its handler.
type Tool struct {
	Name        string
	Description string
	Schema      json.RawMessage
	Run         Handler
}

// Registry offers a threadsafe tool lookup table with stable ordering.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

// Register stores or updates a tool. First registration fixes its
// position in listing order.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Descriptors lists all tools in registration order.
func (r *Registry) Descriptors() []protocol.ToolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, protocol.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Schema,
		})
	}
	return out
}

// Call dispatches a tool invocation by name.
func (r *Registry) Call(ctx context.Context, name string, params json.RawMessage) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t.Run(ctx, params)
}
