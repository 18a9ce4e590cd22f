package fitkit

import (
	"fmt"
	"time"
)

// IntrospectionResult is a snapshot of an agent's internal state: what it
// can do and what it currently knows. Distinct from reflection, which
// analyzes past performance; introspection examines present state.
type IntrospectionResult struct {
	// Timestamp when the snapshot was taken (UTC).
	Timestamp time.Time `json:"timestamp"`

	// AgentName identifies the introspected agent.
	AgentName string `json:"agent_name"`

	// Capabilities lists the capability identifiers the agent supports.
	Capabilities []string `json:"capabilities"`

	// InternalState holds agent-specific state, e.g. a model's cursor
	// position or a supervisor's specialist roster.
	InternalState map[string]interface{} `json:"internal_state,omitempty"`

	// Metadata is an extension point for additional information.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// NewIntrospectionResult creates a validated introspection result.
func NewIntrospectionResult(agentName string, capabilities []string, internalState, metadata map[string]interface{}) (*IntrospectionResult, error) {
	if agentName == "" {
		return nil, fmt.Errorf("agent name cannot be empty")
	}
	if capabilities == nil {
		capabilities = []string{}
	}
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return &IntrospectionResult{
		Timestamp:     time.Now().UTC(),
		AgentName:     agentName,
		Capabilities:  capabilities,
		InternalState: internalState,
		Metadata:      metadata,
	}, nil
}

// DefaultIntrospectionResult builds a minimal snapshot for agents without
// interesting internal state.
func DefaultIntrospectionResult(a Agent) *IntrospectionResult {
	return &IntrospectionResult{
		Timestamp:    time.Now().UTC(),
		AgentName:    a.Name(),
		Capabilities: a.Capabilities(),
		Metadata:     make(map[string]interface{}),
	}
}
