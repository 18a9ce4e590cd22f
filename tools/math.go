package tools

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fitforge/fitkit/fitkit"
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewAddTool returns the arithmetic addition tool used by the math
// specialist in the demos.
func NewAddTool() fitkit.Tool {
	tool, _ := NewFuncTool(
		"add",
		"Add two numbers.",
		ObjectSchema([]string{"a", "b"}, map[string]map[string]interface{}{
			"a": {"type": "number", "description": "First addend"},
			"b": {"type": "number", "description": "Second addend"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			a, err := Number(args, "a")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			b, err := Number(args, "b")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			return fitkit.NewToolResult(fmt.Sprintf("%s + %s = %s", formatNumber(a), formatNumber(b), formatNumber(a+b))), nil
		},
	)
	return tool
}

// NewMultiplyTool returns the arithmetic multiplication tool.
func NewMultiplyTool() fitkit.Tool {
	tool, _ := NewFuncTool(
		"multiply",
		"Multiply two numbers.",
		ObjectSchema([]string{"a", "b"}, map[string]map[string]interface{}{
			"a": {"type": "number", "description": "First factor"},
			"b": {"type": "number", "description": "Second factor"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			a, err := Number(args, "a")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			b, err := Number(args, "b")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			return fitkit.NewToolResult(fmt.Sprintf("%s * %s = %s", formatNumber(a), formatNumber(b), formatNumber(a*b))), nil
		},
	)
	return tool
}
