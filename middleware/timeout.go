package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/fitforge/fitkit/fitkit"
)

// TimeoutConfig configures timeout behavior.
type TimeoutConfig struct {
	// Timeout is the request timeout duration.
	// Default: 30 seconds
	Timeout time.Duration
}

// DefaultTimeoutConfig returns a timeout config with sensible defaults.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Timeout: 30 * time.Second}
}

// TimeoutError is returned when a request exceeds the configured timeout.
type TimeoutError struct {
	AgentName string
	Timeout   time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to agent %q timed out after %v", e.AgentName, e.Timeout)
}

// TimeoutDecorator wraps an agent with timeout protection. The agent
// runs in its own goroutine so a Process implementation that ignores
// context cancellation still cannot block the caller past the deadline.
type TimeoutDecorator struct {
	agent  fitkit.Agent
	config TimeoutConfig
}

var _ fitkit.Agent = (*TimeoutDecorator)(nil)

// NewTimeoutDecorator creates a new timeout decorator.
func NewTimeoutDecorator(agent fitkit.Agent, config TimeoutConfig) *TimeoutDecorator {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &TimeoutDecorator{
		agent:  agent,
		config: config,
	}
}

// Name returns the name of the underlying agent.
func (t *TimeoutDecorator) Name() string {
	return t.agent.Name()
}

// Capabilities returns the capabilities of the underlying agent.
func (t *TimeoutDecorator) Capabilities() []string {
	return t.agent.Capabilities()
}

// Introspect returns the underlying agent's introspection result.
func (t *TimeoutDecorator) Introspect() *fitkit.IntrospectionResult {
	return t.agent.Introspect()
}

// Process implements the Agent interface with timeout protection.
func (t *TimeoutDecorator) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()

	type result struct {
		msg *fitkit.Message
		err error
	}

	// Buffered so the goroutine never leaks after a timeout.
	done := make(chan result, 1)
	go func() {
		msg, err := t.agent.Process(timeoutCtx, message)
		done <- result{msg, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if timeoutCtx.Err() == context.DeadlineExceeded {
				return nil, &TimeoutError{AgentName: t.Name(), Timeout: t.config.Timeout}
			}
			return nil, res.err
		}
		return res.msg, nil
	case <-timeoutCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TimeoutError{AgentName: t.Name(), Timeout: t.config.Timeout}
	}
}
