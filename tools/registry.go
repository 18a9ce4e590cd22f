// Package tools provides the tool registry, a function-to-tool adapter,
// and the general-purpose demo tools (arithmetic, offline web search).
package tools

import (
	"fmt"
	"sort"

	"github.com/fitforge/fitkit/fitkit"
)

// Registry manages the tools available to an agent.
type Registry struct {
	tools map[string]fitkit.Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]fitkit.Tool)}
}

// Register adds a tool. Names must be unique within a registry.
func (r *Registry) Register(tool fitkit.Tool) error {
	if tool == nil {
		return fmt.Errorf("tool cannot be nil")
	}
	if tool.Name() == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("tool %q is already registered", tool.Name())
	}
	r.tools[tool.Name()] = tool
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (fitkit.Tool, bool) {
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns the declarations of all registered tools, in name order.
func (r *Registry) Specs() []fitkit.ToolSpec {
	specs := make([]fitkit.ToolSpec, 0, len(r.tools))
	for _, name := range r.List() {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Describe returns a prompt-ready listing of the registered tools.
func (r *Registry) Describe() string {
	if len(r.tools) == 0 {
		return "No tools available."
	}
	out := "Available tools:\n"
	for _, name := range r.List() {
		out += fmt.Sprintf("- %s: %s\n", name, r.tools[name].Description())
	}
	return out
}
