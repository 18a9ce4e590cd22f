// Package llm defines the minimal model contract agents depend on, plus
// adapters for real providers and a deterministic scripted stand-in.
//
// The contract is intentionally small: a model is anything that can turn a
// conversation history into a single response message (Complete), stream
// the same (Stream), and, for tool-calling models, accept a declaration
// of the tools the surrounding agent makes available (BindTools). Agents
// program against these interfaces and never against a concrete provider,
// so a scripted stub and a live backend are interchangeable.
package llm

import (
	"context"

	"github.com/fitforge/fitkit/fitkit"
)

// LLM is the minimal interface for agent-model interaction.
//
// Complete sends the accumulated conversation history and returns one
// response message with Role "assistant". Stream returns the same response
// incrementally; adapters that cannot stream return an error immediately.
// Model returns the model identifier, and Unwrap exposes the underlying
// provider client as an escape hatch for provider-specific features (using
// it breaks portability).
type LLM interface {
	Complete(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (*fitkit.Message, error)
	Stream(ctx context.Context, messages []*fitkit.Message, opts ...CallOption) (<-chan *fitkit.Message, error)
	Model() string
	Unwrap() interface{}
}

// ToolCallingLLM extends LLM with tool declaration.
//
// BindTools informs the model which tools the surrounding agent can
// execute and returns a handle satisfying the same generate contract.
// Responses from a bound model may carry fitkit.ToolCall requests that
// name one of the declared tools.
type ToolCallingLLM interface {
	LLM

	BindTools(specs []fitkit.ToolSpec) ToolCallingLLM
}

// CallOptions holds per-call options. Common knobs are typed; anything
// provider-specific travels in Extra.
type CallOptions struct {
	Temperature *float64
	MaxTokens   *int
	TopP        *float64

	Extra map[string]interface{}
}

// CallOption is a functional option for configuring model calls.
type CallOption func(*CallOptions)

// WithTemperature sets the sampling temperature (typically 0.0-2.0).
func WithTemperature(temperature float64) CallOption {
	return func(opts *CallOptions) {
		opts.Temperature = &temperature
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(opts *CallOptions) {
		opts.MaxTokens = &maxTokens
	}
}

// WithTopP sets the nucleus sampling parameter.
func WithTopP(topP float64) CallOption {
	return func(opts *CallOptions) {
		opts.TopP = &topP
	}
}

// WithExtra adds a provider-specific option.
func WithExtra(key string, value interface{}) CallOption {
	return func(opts *CallOptions) {
		if opts.Extra == nil {
			opts.Extra = make(map[string]interface{})
		}
		opts.Extra[key] = value
	}
}

// BuildCallOptions applies functional options to a fresh CallOptions.
func BuildCallOptions(opts ...CallOption) *CallOptions {
	options := &CallOptions{
		Extra: make(map[string]interface{}),
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}
