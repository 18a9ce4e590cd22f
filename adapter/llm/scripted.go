package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fitforge/fitkit/fitkit"
)

// ErrEmptyScript is returned when a ScriptedLLM is constructed with no
// responses. An empty script can never produce a completion, so the
// mistake surfaces at construction time rather than at first use.
var ErrEmptyScript = errors.New("llm: scripted model requires at least one response")

// ErrScriptExhausted is returned by Complete once every scripted response
// has been consumed. Wrap checks should use errors.Is.
var ErrScriptExhausted = errors.New("llm: scripted responses exhausted")

// ScriptedLLM is a deterministic stand-in for a model backend. It replays
// a fixed, ordered list of responses: the k-th call to Complete returns
// the k-th scripted message, regardless of what conversation history is
// passed in. Same call count, same output: that is what makes
// multi-agent runs reproducible without network access or credentials.
//
// A cursor tracks how many responses have been consumed. It starts at 0,
// never decreases, and each successful Complete advances it by exactly
// one. Advance-and-read is a single critical section, so even a (not
// recommended) shared instance consumes one response per call, in order.
// Instances are otherwise independent: each owns its script and cursor.
//
// Exhaustion policy is an explicit construction-time choice. By default a
// call past the end of the script fails with ErrScriptExhausted; callers
// that prefer graceful degradation opt in with WithExhaustedFallback,
// which substitutes a fixed sentinel message instead. There is no third,
// accidental behavior.
//
// Example:
//
//	model, err := NewScriptedLLM([]*fitkit.Message{
//	    fitkit.NewToolCallMessage("Checking.", fitkit.ToolCall{
//	        ID: "call_1", Name: "web_search",
//	        Args: map[string]interface{}{"query": "FAANG headcount"},
//	    }),
//	    fitkit.NewMessage("assistant", "Here is what I found."),
//	})
type ScriptedLLM struct {
	mu        sync.Mutex
	responses []*fitkit.Message
	cursor    int
	fallback  *fitkit.Message
	bound     []string
	model     string
}

var _ ToolCallingLLM = (*ScriptedLLM)(nil)

// ScriptedOption configures a ScriptedLLM at construction.
type ScriptedOption func(*ScriptedLLM)

// WithExhaustedFallback switches the exhaustion policy from fail-fast to
// graceful degradation: once the script is consumed, every further call
// returns an assistant message with the given content instead of
// ErrScriptExhausted. The cursor stays at the script length.
func WithExhaustedFallback(content string) ScriptedOption {
	return func(s *ScriptedLLM) {
		s.fallback = fitkit.NewMessage("assistant", content)
	}
}

// WithModelName overrides the identifier returned by Model.
func WithModelName(name string) ScriptedOption {
	return func(s *ScriptedLLM) {
		s.model = name
	}
}

// NewScriptedLLM creates a scripted model that replays the given responses
// in order. Returns ErrEmptyScript if responses is empty and an error if
// any response is malformed.
func NewScriptedLLM(responses []*fitkit.Message, opts ...ScriptedOption) (*ScriptedLLM, error) {
	if len(responses) == 0 {
		return nil, ErrEmptyScript
	}
	for i, r := range responses {
		if r == nil {
			return nil, fmt.Errorf("llm: scripted response %d is nil", i)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("llm: scripted response %d invalid: %w", i, err)
		}
	}

	s := &ScriptedLLM{
		responses: responses,
		model:     "scripted",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Complete returns the scripted response at the current cursor position
// and advances the cursor by one. The messages argument is accepted to
// satisfy the LLM contract but deliberately ignored: output depends only
// on call order, never on conversation content.
//
// After the script is consumed, Complete returns ErrScriptExhausted, or
// the configured fallback message when WithExhaustedFallback was used.
func (s *ScriptedLLM) Complete(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (*fitkit.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.responses) {
		if s.fallback != nil {
			out := s.fallback.Clone()
			out.Metadata = map[string]interface{}{"model": s.model, "exhausted": true}
			return out, nil
		}
		return nil, fmt.Errorf("call %d with %d scripted responses: %w",
			s.cursor+1, len(s.responses), ErrScriptExhausted)
	}

	// Deep copy so neither the replay metadata written below nor caller
	// mutations of the returned message reach the stored script.
	out := s.responses[s.cursor].Clone()
	s.cursor++
	out.Metadata["model"] = s.model
	out.Metadata["script_index"] = s.cursor - 1
	return out, nil
}

// Stream replays the next scripted response as a single chunk. It
// consumes exactly one response, same as Complete.
func (s *ScriptedLLM) Stream(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (<-chan *fitkit.Message, error) {
	response, err := s.Complete(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}

	ch := make(chan *fitkit.Message, 1)
	response.WithMetadata("streaming", true)
	ch <- response
	close(ch)
	return ch, nil
}

// BindTools records the declared tool names and returns the same
// deterministic generator. Declaration has no effect on output: the
// scripted responses already encode whichever tool calls they request.
// The recorded names are observable through BoundTools only, so tests can
// assert that binding never perturbs the replay sequence.
func (s *ScriptedLLM) BindTools(specs []fitkit.ToolSpec) ToolCallingLLM {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.Name)
	}
	s.bound = names
	return s
}

// BoundTools returns the names recorded by the most recent BindTools call.
func (s *ScriptedLLM) BoundTools() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bound...)
}

// Cursor returns how many scripted responses have been consumed.
func (s *ScriptedLLM) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Remaining returns how many scripted responses are left.
func (s *ScriptedLLM) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses) - s.cursor
}

// Model returns the model identifier ("scripted" unless overridden).
func (s *ScriptedLLM) Model() string {
	return s.model
}

// Unwrap returns the scripted model itself; there is no underlying client.
func (s *ScriptedLLM) Unwrap() interface{} {
	return s
}
