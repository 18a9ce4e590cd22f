// Package demo assembles the scripted demo scenarios: a research and
// math team answering the FAANG headcount question, and a fitness
// consultation coordinated across a workout specialist and a
// nutritionist. All models are scripted, so the demos run offline and
// produce the same conversation every time.
package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/patterns"
	"github.com/fitforge/fitkit/tools"
	"github.com/google/uuid"
)

// ResearchQuestion is the user request driving the research scenario.
const ResearchQuestion = "What's the combined headcount of the FAANG companies in 2024?"

func callID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}

// BuildResearchTeam assembles the scripted research-and-math supervisor:
// a research expert backed by the mock search tool and a math expert
// adding the headcounts step by step.
func BuildResearchTeam() (fitkit.Agent, error) {
	researchModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("I'll search for the FAANG company headcounts.", fitkit.ToolCall{
			ID:   callID("call_search"),
			Name: "web_search",
			Args: map[string]interface{}{"query": "FAANG headcount 2024"},
		}),
		fitkit.NewMessage("assistant",
			"I found the headcount data for all FAANG companies. The numbers are: "+
				"Meta (67,317), Apple (164,000), Amazon (1,551,000), Netflix (14,000), "+
				"and Google (181,269) employees."),
	})
	if err != nil {
		return nil, err
	}

	mathModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("I'll calculate the total headcount step by step.", fitkit.ToolCall{
			ID: callID("call_add"), Name: "add",
			Args: map[string]interface{}{"a": 67317.0, "b": 1551000.0},
		}),
		fitkit.NewToolCallMessage("Let me continue adding the remaining companies.", fitkit.ToolCall{
			ID: callID("call_add"), Name: "add",
			Args: map[string]interface{}{"a": 1618317.0, "b": 164000.0},
		}),
		fitkit.NewToolCallMessage("Almost done, adding the last companies.", fitkit.ToolCall{
			ID: callID("call_add"), Name: "add",
			Args: map[string]interface{}{"a": 1782317.0, "b": 195269.0},
		}),
		fitkit.NewMessage("assistant", "The total combined headcount is 1,977,586 employees."),
	})
	if err != nil {
		return nil, err
	}

	supervisorModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("I'll delegate this to the research expert to find the information.", fitkit.ToolCall{
			ID: callID("call_research"), Name: "transfer_to_research_expert",
		}),
		fitkit.NewToolCallMessage("Now I'll have the math expert calculate the total.", fitkit.ToolCall{
			ID: callID("call_math"), Name: "transfer_to_math_expert",
		}),
		fitkit.NewMessage("assistant",
			"The combined headcount of the FAANG companies in 2024 is 1,977,586 employees."),
	})
	if err != nil {
		return nil, err
	}

	researchExpert, err := patterns.NewReActAgent(&patterns.ReActConfig{
		Name:  "research_expert",
		Model: researchModel,
		Tools: []fitkit.Tool{tools.NewSearchTool(nil)},
	})
	if err != nil {
		return nil, err
	}

	mathExpert, err := patterns.NewReActAgent(&patterns.ReActConfig{
		Name:  "math_expert",
		Model: mathModel,
		Tools: []fitkit.Tool{tools.NewAddTool(), tools.NewMultiplyTool()},
	})
	if err != nil {
		return nil, err
	}

	return patterns.NewSupervisorAgent(&patterns.SupervisorConfig{
		Model:  supervisorModel,
		Agents: []fitkit.Agent{researchExpert, mathExpert},
		Prompt: "You are a team supervisor managing a research expert and a math expert. " +
			"For research questions, delegate to research_expert. " +
			"For math problems, delegate to math_expert.",
	})
}

// RunResearch executes the research scenario and writes the conversation
// flow to w.
func RunResearch(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "=== Research Team Demo ===")
	fmt.Fprintf(w, "User: %s\n", ResearchQuestion)

	supervisor, err := BuildResearchTeam()
	if err != nil {
		return fmt.Errorf("building research team: %w", err)
	}

	response, err := supervisor.Process(ctx, fitkit.NewMessage("user", ResearchQuestion))
	if err != nil {
		return fmt.Errorf("research demo failed: %w", err)
	}

	printOutcome(w, response)
	return nil
}

// printOutcome writes the delegation order and final answer.
func printOutcome(w io.Writer, response *fitkit.Message) {
	if order, ok := response.Metadata["execution_order"].([]string); ok {
		for i, name := range order {
			fmt.Fprintf(w, "  %d. consulted %s\n", i+1, name)
		}
	}
	fmt.Fprintf(w, "Final answer: %s\n", response.Content)
}
