package tools

import (
	"context"
	"fmt"

	"github.com/fitforge/fitkit/fitkit"
)

// FuncTool adapts a plain Go function to the fitkit.Tool interface.
type FuncTool struct {
	name        string
	description string
	parameters  map[string]interface{}
	fn          func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error)
}

var _ fitkit.Tool = (*FuncTool)(nil)

// NewFuncTool wraps fn as a tool. The parameters map is the JSON-schema
// declaration handed to tool-calling models; nil means "no arguments".
func NewFuncTool(name, description string, parameters map[string]interface{}, fn func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error)) (*FuncTool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if fn == nil {
		return nil, fmt.Errorf("tool function is required")
	}
	return &FuncTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}, nil
}

// Name returns the tool identifier.
func (f *FuncTool) Name() string { return f.name }

// Description returns the tool summary.
func (f *FuncTool) Description() string { return f.description }

// Spec returns the declaration for tool binding.
func (f *FuncTool) Spec() fitkit.ToolSpec {
	return fitkit.ToolSpec{
		Name:        f.name,
		Description: f.description,
		Parameters:  f.parameters,
	}
}

// Execute invokes the wrapped function.
func (f *FuncTool) Execute(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fn(ctx, args)
}

// ObjectSchema builds a JSON-schema object declaration from property
// name/type/description triples. A small helper so tool definitions stay
// readable.
func ObjectSchema(required []string, props map[string]map[string]interface{}) map[string]interface{} {
	properties := make(map[string]interface{}, len(props))
	for name, def := range props {
		properties[name] = def
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Number extracts a float argument, accepting both float64 (JSON) and int.
func Number(args map[string]interface{}, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("argument %q must be a number, got %T", key, v)
	}
}

// String extracts a string argument, falling back to def when absent.
func String(args map[string]interface{}, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}
