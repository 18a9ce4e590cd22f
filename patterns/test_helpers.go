package patterns

import (
	"context"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
)

// mockAgent provides flexible specialist mocking for supervisor tests.
type mockAgent struct {
	name         string
	response     string
	err          error
	capabilities []string
	processFunc  func(ctx context.Context, msg *fitkit.Message) (*fitkit.Message, error)
	calls        int
}

func (m *mockAgent) Name() string {
	return m.name
}

func (m *mockAgent) Capabilities() []string {
	if m.capabilities != nil {
		return m.capabilities
	}
	return []string{"mock"}
}

func (m *mockAgent) Introspect() *fitkit.IntrospectionResult {
	return fitkit.DefaultIntrospectionResult(m)
}

func (m *mockAgent) Process(ctx context.Context, msg *fitkit.Message) (*fitkit.Message, error) {
	m.calls++
	if m.processFunc != nil {
		return m.processFunc(ctx, msg)
	}
	if m.err != nil {
		return nil, m.err
	}
	return fitkit.NewMessage("assistant", m.response), nil
}

// mustScript builds a ScriptedLLM or fails the calling test via panic;
// construction only fails on malformed fixtures.
func mustScript(responses ...*fitkit.Message) *llm.ScriptedLLM {
	model, err := llm.NewScriptedLLM(responses)
	if err != nil {
		panic(err)
	}
	return model
}

// optionRecorder wraps a scripted model and records how many call options
// each Complete call received.
type optionRecorder struct {
	*llm.ScriptedLLM
	optCounts []int
}

func (o *optionRecorder) Complete(ctx context.Context, messages []*fitkit.Message, opts ...llm.CallOption) (*fitkit.Message, error) {
	o.optCounts = append(o.optCounts, len(opts))
	return o.ScriptedLLM.Complete(ctx, messages, opts...)
}

func (o *optionRecorder) BindTools(specs []fitkit.ToolSpec) llm.ToolCallingLLM {
	o.ScriptedLLM.BindTools(specs)
	return o
}
