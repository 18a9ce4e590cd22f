package patterns

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/tools"
)

func TestSupervisorAgent_ConstructorValidation(t *testing.T) {
	coordinator := mustScript(fitkit.NewMessage("assistant", "done"))

	if _, err := NewSupervisorAgent(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewSupervisorAgent(&SupervisorConfig{Agents: []fitkit.Agent{&mockAgent{name: "a"}}}); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := NewSupervisorAgent(&SupervisorConfig{Model: coordinator}); err == nil {
		t.Error("expected error for no specialists")
	}
	if _, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{&mockAgent{name: "a"}, &mockAgent{name: "a"}},
	}); err == nil {
		t.Error("expected error for duplicate specialist names")
	}
}

func TestSupervisorAgent_BindsHandoffTools(t *testing.T) {
	coordinator := mustScript(fitkit.NewMessage("assistant", "done"))
	_, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{&mockAgent{name: "math"}, &mockAgent{name: "research"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bound := coordinator.BoundTools()
	if len(bound) != 2 || bound[0] != "transfer_to_math" || bound[1] != "transfer_to_research" {
		t.Errorf("unexpected handoff tools: %v", bound)
	}
}

func TestSupervisorAgent_SingleHandoff(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("Routing to the math expert.", fitkit.ToolCall{
			ID: "call_math_001", Name: "transfer_to_math", Args: map[string]interface{}{},
		}),
		fitkit.NewMessage("assistant", "The math expert says: 42."),
	)
	math := &mockAgent{name: "math", response: "42"}

	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{math},
		Prompt: "You are a team supervisor.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := supervisor.Process(context.Background(), fitkit.NewMessage("user", "What is the answer?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Content != "The math expert says: 42." {
		t.Errorf("unexpected final answer: %q", response.Content)
	}
	if math.calls != 1 {
		t.Errorf("expected one specialist call, got %d", math.calls)
	}
	if response.Metadata["handoffs"] != 1 {
		t.Errorf("expected 1 handoff, got %v", response.Metadata["handoffs"])
	}
	order, _ := response.Metadata["execution_order"].([]string)
	if len(order) != 1 || order[0] != "math" {
		t.Errorf("unexpected execution order: %v", order)
	}
}

func TestSupervisorAgent_MultipleHandoffs(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("Research first.", fitkit.ToolCall{
			ID: "call_research_001", Name: "transfer_to_research",
		}),
		fitkit.NewToolCallMessage("Now the math.", fitkit.ToolCall{
			ID: "call_math_001", Name: "transfer_to_math",
		}),
		fitkit.NewMessage("assistant", "Combined: 1,977,586 employees."),
	)
	research := &mockAgent{name: "research", response: "headcounts found"}
	math := &mockAgent{name: "math", response: "1977586"}

	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{research, math},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := supervisor.Process(context.Background(), fitkit.NewMessage("user", "FAANG total?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(response.Content, "1,977,586") {
		t.Errorf("unexpected final answer: %q", response.Content)
	}
	order, _ := response.Metadata["execution_order"].([]string)
	if len(order) != 2 || order[0] != "research" || order[1] != "math" {
		t.Errorf("unexpected execution order: %v", order)
	}
}

func TestSupervisorAgent_UnknownSpecialist(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c1", Name: "transfer_to_ghost"}),
	)
	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{&mockAgent{name: "math"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = supervisor.Process(context.Background(), fitkit.NewMessage("user", "go"))
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown specialist error, got %v", err)
	}
	if !strings.Contains(err.Error(), "math") {
		t.Errorf("error should list available specialists, got %v", err)
	}
}

func TestSupervisorAgent_NonHandoffToolCall(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c1", Name: "web_search"}),
	)
	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{&mockAgent{name: "math"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = supervisor.Process(context.Background(), fitkit.NewMessage("user", "go"))
	if err == nil || !strings.Contains(err.Error(), "non-handoff") {
		t.Fatalf("expected non-handoff error, got %v", err)
	}
}

func TestSupervisorAgent_SpecialistFailure(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c1", Name: "transfer_to_math"}),
	)
	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:  coordinator,
		Agents: []fitkit.Agent{&mockAgent{name: "math", err: errors.New("division by zero")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = supervisor.Process(context.Background(), fitkit.NewMessage("user", "go"))
	if err == nil || !strings.Contains(err.Error(), "division by zero") {
		t.Fatalf("expected specialist error to propagate, got %v", err)
	}
}

func TestSupervisorAgent_MaxHandoffs(t *testing.T) {
	coordinator := mustScript(
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c1", Name: "transfer_to_math"}),
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c2", Name: "transfer_to_math"}),
		fitkit.NewToolCallMessage("", fitkit.ToolCall{ID: "c3", Name: "transfer_to_math"}),
	)
	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model:       coordinator,
		Agents:      []fitkit.Agent{&mockAgent{name: "math", response: "again"}},
		MaxHandoffs: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := supervisor.Process(context.Background(), fitkit.NewMessage("user", "loop"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Metadata["stop_reason"] != string(StopReasonMaxSteps) {
		t.Errorf("expected max_steps stop reason, got %v", response.Metadata["stop_reason"])
	}
	if response.Metadata["handoffs"] != 2 {
		t.Errorf("expected 2 handoffs, got %v", response.Metadata["handoffs"])
	}
}

// TestSupervisorAgent_EndToEndScripted runs the full research-and-math
// scenario: a scripted coordinator delegating to two scripted react
// specialists that execute real tools.
func TestSupervisorAgent_EndToEndScripted(t *testing.T) {
	research, err := NewReActAgent(&ReActConfig{
		Name: "research_expert",
		Model: mustScript(
			fitkit.NewToolCallMessage("I'll search for the FAANG company headcounts.", fitkit.ToolCall{
				ID: "call_search_001", Name: "web_search",
				Args: map[string]interface{}{"query": "FAANG headcount 2024"},
			}),
			fitkit.NewMessage("assistant", "Meta 67,317; Apple 164,000; Amazon 1,551,000; Netflix 14,000; Google 181,269."),
		),
		Tools: []fitkit.Tool{tools.NewSearchTool(nil)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	math, err := NewReActAgent(&ReActConfig{
		Name: "math_expert",
		Model: mustScript(
			fitkit.NewToolCallMessage("Adding step by step.", fitkit.ToolCall{
				ID: "call_add_001", Name: "add",
				Args: map[string]interface{}{"a": 67317.0, "b": 1551000.0},
			}),
			fitkit.NewToolCallMessage("Continuing.", fitkit.ToolCall{
				ID: "call_add_002", Name: "add",
				Args: map[string]interface{}{"a": 1618317.0, "b": 164000.0},
			}),
			fitkit.NewToolCallMessage("Last companies.", fitkit.ToolCall{
				ID: "call_add_003", Name: "add",
				Args: map[string]interface{}{"a": 1782317.0, "b": 195269.0},
			}),
			fitkit.NewMessage("assistant", "The total combined headcount is 1,977,586 employees."),
		),
		Tools: []fitkit.Tool{tools.NewAddTool()},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	supervisor, err := NewSupervisorAgent(&SupervisorConfig{
		Model: mustScript(
			fitkit.NewToolCallMessage("I'll delegate this to the research expert.", fitkit.ToolCall{
				ID: "call_research_001", Name: "transfer_to_research_expert",
			}),
			fitkit.NewToolCallMessage("Now I'll have the math expert calculate the total.", fitkit.ToolCall{
				ID: "call_math_001", Name: "transfer_to_math_expert",
			}),
			fitkit.NewMessage("assistant", "The combined headcount of the FAANG companies in 2024 is 1,977,586 employees."),
		),
		Agents: []fitkit.Agent{research, math},
		Prompt: "You are a team supervisor managing a research expert and a math expert.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response, err := supervisor.Process(context.Background(),
		fitkit.NewMessage("user", "What's the combined headcount of the FAANG companies in 2024?"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(response.Content, "1,977,586") {
		t.Errorf("unexpected final answer: %q", response.Content)
	}
	order, _ := response.Metadata["execution_order"].([]string)
	if len(order) != 2 || order[0] != "research_expert" || order[1] != "math_expert" {
		t.Errorf("unexpected execution order: %v", order)
	}
}
