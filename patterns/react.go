// Package patterns provides the agent composition patterns used by the
// consultation demos: a tool-calling react loop and a handoff-based
// supervisor.
//
// Both patterns drive a ToolCallingLLM and are model-agnostic: the demos
// run them against the deterministic scripted model, production wiring
// runs them against a live backend, and the tests rely on that symmetry.
package patterns

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/tools"
)

// StopReason indicates why an agent loop terminated.
type StopReason string

const (
	// StopReasonFinalAnswer indicates the model replied without
	// requesting any tool call or handoff.
	StopReasonFinalAnswer StopReason = "final_answer"
	// StopReasonMaxSteps indicates the step bound was reached.
	StopReasonMaxSteps StopReason = "max_steps"
)

// ReActConfig configures a ReActAgent.
type ReActConfig struct {
	// Name is the agent identifier, used by supervisors as the handoff
	// target name.
	Name string
	// Model produces the agent's replies and tool call requests.
	Model llm.ToolCallingLLM
	// Tools the agent can execute on the model's behalf. They are
	// registered into a fresh registry; duplicate names fail construction.
	Tools []fitkit.Tool
	// Registry supplies the tools directly and takes precedence over
	// Tools when set.
	Registry *tools.Registry
	// Prompt is the system prompt prepended to every conversation.
	Prompt string
	// MaxSteps bounds the think-act loop (default 10).
	MaxSteps int
	// CallOptions are passed through on every model call.
	CallOptions []llm.CallOption
}

// ReActAgent alternates between model inference and tool execution.
//
// Each step sends the accumulated conversation to the model. A reply that
// carries tool calls is acted on: every named tool is executed and its
// result appended to the conversation as a role "tool" message, then the
// model is consulted again. A reply without tool calls is the final
// answer. Unknown tool names are fed back to the model as error
// observations rather than aborting, matching how live backends recover
// from hallucinated tools.
type ReActAgent struct {
	name      string
	model     llm.ToolCallingLLM
	registry  *tools.Registry
	prompt    string
	maxSteps  int
	callOpts  []llm.CallOption
	lastSteps int
}

var _ fitkit.Agent = (*ReActAgent)(nil)

// NewReActAgent creates a react agent and binds its tools to the model.
func NewReActAgent(config *ReActConfig) (*ReActAgent, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.Model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if config.Name == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	registry := config.Registry
	if registry == nil {
		registry = tools.NewRegistry()
		for _, tool := range config.Tools {
			if err := registry.Register(tool); err != nil {
				return nil, fmt.Errorf("agent %q: %w", config.Name, err)
			}
		}
	}

	maxSteps := config.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 10
	}

	return &ReActAgent{
		name:     config.Name,
		model:    config.Model.BindTools(registry.Specs()),
		registry: registry,
		prompt:   config.Prompt,
		maxSteps: maxSteps,
		callOpts: config.CallOptions,
	}, nil
}

// Name returns the agent identifier.
func (r *ReActAgent) Name() string {
	return r.name
}

// Capabilities returns the agent's capability identifiers.
func (r *ReActAgent) Capabilities() []string {
	caps := []string{"react", "tool-use"}
	for _, name := range r.registry.List() {
		caps = append(caps, "tool:"+name)
	}
	return caps
}

// Process runs the think-act loop until the model answers without tool
// calls or the step bound is reached.
func (r *ReActAgent) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	if message == nil {
		return nil, fmt.Errorf("message cannot be nil")
	}

	history := make([]*fitkit.Message, 0, r.maxSteps*2+2)
	if r.prompt != "" {
		history = append(history, fitkit.NewMessage("system", r.prompt))
	}
	history = append(history, message)

	var last *fitkit.Message
	for step := 0; step < r.maxSteps; step++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s cancelled at step %d: %w", r.name, step, ctx.Err())
		default:
		}

		response, err := r.model.Complete(ctx, history, r.callOpts...)
		if err != nil {
			return nil, fmt.Errorf("%s model call failed at step %d: %w", r.name, step, err)
		}
		history = append(history, response)
		last = response

		if !response.HasToolCalls() {
			r.lastSteps = step + 1
			return r.finalize(response, step+1, StopReasonFinalAnswer), nil
		}

		for _, call := range response.ToolCalls {
			observation, err := r.executeCall(ctx, call)
			if err != nil {
				return nil, fmt.Errorf("%s tool %q failed: %w", r.name, call.Name, err)
			}
			history = append(history, fitkit.NewToolResultMessage(call.ID, call.Name, observation))
		}
	}

	r.lastSteps = r.maxSteps
	final := fitkit.NewMessage("assistant",
		fmt.Sprintf("Unable to complete the task within %d steps.", r.maxSteps))
	if last != nil && last.Content != "" {
		final.Content += "\nLast reply: " + last.Content
	}
	return r.finalize(final, r.maxSteps, StopReasonMaxSteps), nil
}

// executeCall runs one requested tool invocation and returns the
// observation text to feed back to the model.
func (r *ReActAgent) executeCall(ctx context.Context, call fitkit.ToolCall) (string, error) {
	tool, ok := r.registry.Get(call.Name)
	if !ok {
		return fmt.Sprintf("Error: tool %q not found. Available tools: %s",
			call.Name, strings.Join(r.registry.List(), ", ")), nil
	}

	result, err := tool.Execute(ctx, call.Args)
	if err != nil {
		return "", err
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "tool execution failed"
		}
		return "Error: " + msg, nil
	}
	return fmt.Sprintf("%v", result.Data), nil
}

func (r *ReActAgent) finalize(response *fitkit.Message, steps int, reason StopReason) *fitkit.Message {
	response.Name = r.name
	response.WithMetadata("agent", r.name)
	response.WithMetadata("steps", steps)
	response.WithMetadata("stop_reason", string(reason))
	return response
}

// Introspect returns the agent's roster of tools and model identity.
func (r *ReActAgent) Introspect() *fitkit.IntrospectionResult {
	result, _ := fitkit.NewIntrospectionResult(r.name, r.Capabilities(), map[string]interface{}{
		"model":      r.model.Model(),
		"tools":      r.registry.List(),
		"max_steps":  r.maxSteps,
		"last_steps": r.lastSteps,
	}, nil)
	return result
}
