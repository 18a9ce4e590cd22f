package patterns

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
)

// HandoffPrefix is the tool-name prefix the coordinator model uses to
// delegate: a tool call named "transfer_to_nutritionist" routes the
// conversation to the specialist registered as "nutritionist".
const HandoffPrefix = "transfer_to_"

// SupervisorConfig configures a SupervisorAgent.
type SupervisorConfig struct {
	// Name is the supervisor's identifier (default "supervisor").
	Name string
	// Model is the coordinator model deciding which specialist to
	// involve. It sees one handoff tool per specialist.
	Model llm.ToolCallingLLM
	// Agents are the specialists, keyed by their Name().
	Agents []fitkit.Agent
	// Prompt is the coordinator's system prompt.
	Prompt string
	// MaxHandoffs bounds the delegation loop (default 10).
	MaxHandoffs int
	// CallOptions are passed through on every coordinator model call.
	CallOptions []llm.CallOption
}

// SupervisorAgent coordinates specialist agents through model-driven
// handoffs.
//
// The coordinator model is bound to one handoff tool per specialist.
// When it replies with a transfer_to_<name> call, the supervisor routes
// the user's request to that specialist, appends the specialist's answer
// to the coordinator's conversation as a tool result, and consults the
// coordinator again. A reply without handoffs is the final answer.
//
// Grounding for the delegation contract: handoffs are tool calls, so a
// deterministic scripted coordinator and a live one follow the exact same
// path through this code.
type SupervisorAgent struct {
	name        string
	model       llm.ToolCallingLLM
	specialists map[string]fitkit.Agent
	prompt      string
	maxHandoffs int
	callOpts    []llm.CallOption
}

var _ fitkit.Agent = (*SupervisorAgent)(nil)

// NewSupervisorAgent creates a supervisor and binds the handoff tools to
// the coordinator model.
func NewSupervisorAgent(config *SupervisorConfig) (*SupervisorAgent, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Model == nil {
		return nil, fmt.Errorf("coordinator model is required")
	}
	if len(config.Agents) == 0 {
		return nil, fmt.Errorf("at least one specialist is required")
	}

	name := config.Name
	if name == "" {
		name = "supervisor"
	}
	maxHandoffs := config.MaxHandoffs
	if maxHandoffs <= 0 {
		maxHandoffs = 10
	}

	specialists := make(map[string]fitkit.Agent, len(config.Agents))
	specs := make([]fitkit.ToolSpec, 0, len(config.Agents))
	for _, agent := range config.Agents {
		if agent.Name() == "" {
			return nil, fmt.Errorf("specialist with empty name")
		}
		if _, dup := specialists[agent.Name()]; dup {
			return nil, fmt.Errorf("duplicate specialist %q", agent.Name())
		}
		specialists[agent.Name()] = agent
		specs = append(specs, fitkit.ToolSpec{
			Name:        HandoffPrefix + agent.Name(),
			Description: fmt.Sprintf("Hand the conversation off to the %s specialist.", agent.Name()),
			Parameters:  map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	return &SupervisorAgent{
		name:        name,
		model:       config.Model.BindTools(specs),
		specialists: specialists,
		prompt:      config.Prompt,
		maxHandoffs: maxHandoffs,
		callOpts:    config.CallOptions,
	}, nil
}

// Name returns the supervisor's identifier.
func (s *SupervisorAgent) Name() string {
	return s.name
}

// Capabilities returns the supervisor's capabilities combined with those
// of its specialists.
func (s *SupervisorAgent) Capabilities() []string {
	seen := map[string]bool{"supervisor": true, "coordination": true}
	for _, specialist := range s.specialists {
		for _, c := range specialist.Capabilities() {
			seen[c] = true
		}
	}
	caps := make([]string, 0, len(seen))
	for c := range seen {
		caps = append(caps, c)
	}
	sort.Strings(caps)
	return caps
}

// Process runs the delegate-and-synthesize loop.
//
// The final message carries metadata describing the delegation:
// "handoffs" (count) and "execution_order" (specialist names in the order
// they were consulted).
func (s *SupervisorAgent) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	history := make([]*fitkit.Message, 0, s.maxHandoffs*2+2)
	if s.prompt != "" {
		history = append(history, fitkit.NewMessage("system", s.prompt))
	}
	history = append(history, message)

	handoffs := 0
	executionOrder := make([]string, 0, s.maxHandoffs)

	for round := 0; round <= s.maxHandoffs; round++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s cancelled after %d handoffs: %w", s.name, handoffs, ctx.Err())
		default:
		}

		response, err := s.model.Complete(ctx, history, s.callOpts...)
		if err != nil {
			return nil, fmt.Errorf("%s coordinator call failed: %w", s.name, err)
		}
		history = append(history, response)

		if !response.HasToolCalls() {
			response.Name = s.name
			response.WithMetadata("agent", s.name)
			response.WithMetadata("handoffs", handoffs)
			response.WithMetadata("execution_order", executionOrder)
			response.WithMetadata("stop_reason", string(StopReasonFinalAnswer))
			return response, nil
		}

		for _, call := range response.ToolCalls {
			target, err := s.resolveHandoff(call)
			if err != nil {
				return nil, err
			}
			if handoffs >= s.maxHandoffs {
				final := fitkit.NewMessage("assistant",
					fmt.Sprintf("Stopped after %d handoffs without a final answer.", handoffs))
				final.Name = s.name
				final.WithMetadata("agent", s.name)
				final.WithMetadata("handoffs", handoffs)
				final.WithMetadata("execution_order", executionOrder)
				final.WithMetadata("stop_reason", string(StopReasonMaxSteps))
				return final, nil
			}

			result, err := target.Process(ctx, message)
			if err != nil {
				return nil, fmt.Errorf("specialist %q failed: %w", target.Name(), err)
			}
			handoffs++
			executionOrder = append(executionOrder, target.Name())
			history = append(history, fitkit.NewToolResultMessage(call.ID, target.Name(), result.Content))
		}
	}

	return nil, fmt.Errorf("%s exceeded %d coordination rounds", s.name, s.maxHandoffs)
}

// resolveHandoff maps a coordinator tool call to the specialist it names.
func (s *SupervisorAgent) resolveHandoff(call fitkit.ToolCall) (fitkit.Agent, error) {
	if !strings.HasPrefix(call.Name, HandoffPrefix) {
		return nil, fmt.Errorf("coordinator requested non-handoff tool %q", call.Name)
	}
	target := strings.TrimPrefix(call.Name, HandoffPrefix)
	specialist, ok := s.specialists[target]
	if !ok {
		available := make([]string, 0, len(s.specialists))
		for name := range s.specialists {
			available = append(available, name)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("handoff to unknown specialist %q (available: %s)",
			target, strings.Join(available, ", "))
	}
	return specialist, nil
}

// Introspect returns the specialist roster and coordinator model.
func (s *SupervisorAgent) Introspect() *fitkit.IntrospectionResult {
	roster := make([]string, 0, len(s.specialists))
	for name := range s.specialists {
		roster = append(roster, name)
	}
	sort.Strings(roster)
	result, _ := fitkit.NewIntrospectionResult(s.name, s.Capabilities(), map[string]interface{}{
		"model":        s.model.Model(),
		"specialists":  roster,
		"max_handoffs": s.maxHandoffs,
	}, nil)
	return result
}
