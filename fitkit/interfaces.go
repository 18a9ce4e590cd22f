// Package fitkit provides the core interfaces and message types shared by
// agents, tools, and model adapters.
package fitkit

import (
	"context"
	"fmt"
	"time"
)

// ToolCall is a request, emitted by a model, to invoke a named tool.
//
// The ID ties the eventual tool result back to the request: the tool's
// answer is appended to the conversation as a role "tool" message whose
// ToolCallID equals this ID.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Message represents one turn in a conversation between a user, an agent,
// a model, or a tool.
//
// Assistant messages may carry ToolCalls, in which case the content is the
// model's commentary and the calls are requests the surrounding agent is
// expected to execute. Tool messages carry the ToolCallID they answer.
type Message struct {
	Role       string                 `json:"role"`
	Content    string                 `json:"content"`
	Name       string                 `json:"name,omitempty"`
	ToolCalls  []ToolCall             `json:"tool_calls,omitempty"`
	ToolCallID string                 `json:"tool_call_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) *Message {
	return &Message{
		Role:      role,
		Content:   content,
		Metadata:  make(map[string]interface{}),
		Timestamp: time.Now().UTC(),
	}
}

// NewToolCallMessage creates an assistant message that requests tool
// invocations. Content may be empty when the model has nothing to say
// beyond the calls themselves.
func NewToolCallMessage(content string, calls ...ToolCall) *Message {
	m := NewMessage("assistant", content)
	m.ToolCalls = calls
	return m
}

// NewToolResultMessage creates a role "tool" message answering the tool
// call with the given ID.
func NewToolResultMessage(callID, toolName, content string) *Message {
	m := NewMessage("tool", content)
	m.ToolCallID = callID
	m.Name = toolName
	return m
}

// WithMetadata adds metadata to the message and returns it for chaining.
func (m *Message) WithMetadata(key string, value interface{}) *Message {
	if m.Metadata == nil {
		m.Metadata = make(map[string]interface{})
	}
	m.Metadata[key] = value
	return m
}

// Clone returns a deep copy of the message. The Metadata map, the
// ToolCalls slice, and each call's Args map are fresh allocations, so
// mutating the copy never reaches the original.
func (m *Message) Clone() *Message {
	out := *m
	out.Metadata = make(map[string]interface{}, len(m.Metadata))
	for k, v := range m.Metadata {
		out.Metadata[k] = v
	}
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		for i, call := range m.ToolCalls {
			if call.Args != nil {
				args := make(map[string]interface{}, len(call.Args))
				for k, v := range call.Args {
					args[k] = v
				}
				call.Args = args
			}
			out.ToolCalls[i] = call
		}
	}
	return &out
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// Validate checks the message against the role and size constraints the
// orchestration layer relies on.
func (m *Message) Validate() error {
	switch m.Role {
	case "user", "assistant", "system", "tool":
	case "":
		return fmt.Errorf("message role cannot be empty")
	default:
		return fmt.Errorf("invalid message role %q: must be one of user, assistant, system, tool", m.Role)
	}

	const maxContent = 1 << 20 // 1MB
	if len(m.Content) > maxContent {
		return fmt.Errorf("message content exceeds %d bytes (got %d)", maxContent, len(m.Content))
	}

	if m.Role == "tool" && m.ToolCallID == "" {
		return fmt.Errorf("tool message must reference the tool call it answers")
	}
	for i, tc := range m.ToolCalls {
		if tc.Name == "" {
			return fmt.Errorf("tool call %d has no tool name", i)
		}
	}
	return nil
}

// ToolSpec describes a callable tool to a model: the name the model should
// emit in tool calls, a natural-language description, and a JSON-schema-like
// parameter map.
type ToolSpec struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ToolResult represents the outcome of a tool execution.
type ToolResult struct {
	Success  bool                   `json:"success"`
	Data     interface{}            `json:"data,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Metadata map[string]interface{} `json:"metadata"`
}

// NewToolResult creates a successful tool result.
func NewToolResult(data interface{}) *ToolResult {
	return &ToolResult{
		Success:  true,
		Data:     data,
		Metadata: make(map[string]interface{}),
	}
}

// NewToolError creates a tool result representing a failure.
func NewToolError(err string) *ToolResult {
	return &ToolResult{
		Success:  false,
		Error:    err,
		Metadata: make(map[string]interface{}),
	}
}

// Agent is the interface all agents implement: a named, message-in
// message-out processor.
type Agent interface {
	// Name returns the unique identifier for this agent. Supervisors use
	// it as the handoff target name.
	Name() string

	// Process handles a message and returns a response.
	Process(ctx context.Context, message *Message) (*Message, error)

	// Capabilities returns capability identifiers this agent supports.
	// May be empty.
	Capabilities() []string

	// Introspect returns a snapshot of the agent's internal state, useful
	// for debugging, monitoring, and tests.
	Introspect() *IntrospectionResult
}

// Tool represents an executable capability agents can invoke on behalf of
// a model.
type Tool interface {
	// Name returns the unique identifier models use in tool calls.
	Name() string

	// Description returns a human-readable summary for prompt assembly
	// and tool declaration.
	Description() string

	// Spec returns the declaration handed to models when the tool is
	// bound.
	Spec() ToolSpec

	// Execute runs the tool with the given arguments.
	Execute(ctx context.Context, args map[string]interface{}) (*ToolResult, error)
}

