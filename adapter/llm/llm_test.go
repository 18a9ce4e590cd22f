package llm

import (
	"testing"

	"github.com/fitforge/fitkit/fitkit"
)

func TestBuildCallOptions(t *testing.T) {
	options := BuildCallOptions(
		WithTemperature(0.3),
		WithMaxTokens(512),
		WithTopP(0.9),
		WithExtra("stop", []string{"END"}),
	)

	if options.Temperature == nil || *options.Temperature != 0.3 {
		t.Errorf("temperature not applied: %v", options.Temperature)
	}
	if options.MaxTokens == nil || *options.MaxTokens != 512 {
		t.Errorf("max tokens not applied: %v", options.MaxTokens)
	}
	if options.TopP == nil || *options.TopP != 0.9 {
		t.Errorf("top_p not applied: %v", options.TopP)
	}
	if stop, ok := options.Extra["stop"].([]string); !ok || len(stop) != 1 {
		t.Errorf("extra option not applied: %v", options.Extra)
	}
}

func TestBuildCallOptions_Defaults(t *testing.T) {
	options := BuildCallOptions()
	if options.Temperature != nil || options.MaxTokens != nil || options.TopP != nil {
		t.Error("expected nil common options by default")
	}
	if options.Extra == nil {
		t.Error("expected initialized Extra map")
	}
}

func TestOpenAIConvertMessages(t *testing.T) {
	adapter := NewOpenAILLM("test-key", "gpt-4o")

	history := []*fitkit.Message{
		fitkit.NewMessage("system", "You are a trainer."),
		fitkit.NewMessage("user", "Plan my week."),
		fitkit.NewToolCallMessage("Calculating.", fitkit.ToolCall{
			ID:   "call_1",
			Name: "calculate_training_metrics",
			Args: map[string]interface{}{"weight": 85.0},
		}),
		fitkit.NewToolResultMessage("call_1", "calculate_training_metrics", "BMI: 26.2"),
	}

	converted := adapter.convertMessages(history)
	if len(converted) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(converted))
	}
	if converted[0].Role != "system" || converted[1].Role != "user" {
		t.Errorf("roles not preserved: %s, %s", converted[0].Role, converted[1].Role)
	}
	if len(converted[2].ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(converted[2].ToolCalls))
	}
	if converted[2].ToolCalls[0].Function.Name != "calculate_training_metrics" {
		t.Errorf("tool call name lost: %s", converted[2].ToolCalls[0].Function.Name)
	}
	if converted[3].Role != "tool" || converted[3].ToolCallID != "call_1" {
		t.Errorf("tool result not mapped: %+v", converted[3])
	}
}

func TestOpenAIBindTools(t *testing.T) {
	base := NewOpenAILLM("test-key", "gpt-4o")
	bound := base.BindTools([]fitkit.ToolSpec{
		{Name: "add", Description: "add two numbers"},
	}).(*OpenAILLM)

	if len(base.tools) != 0 {
		t.Error("BindTools must not mutate the original adapter")
	}
	if len(bound.tools) != 1 || bound.tools[0].Function.Name != "add" {
		t.Errorf("bound tools not declared: %+v", bound.tools)
	}
	if bound.tools[0].Function.Parameters == nil {
		t.Error("expected default empty-object schema for schemaless tool")
	}
}
