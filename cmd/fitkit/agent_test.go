package main

import (
	"context"
	"strings"
	"testing"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/config"
	"github.com/fitforge/fitkit/demo"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/middleware"
)

func TestBuildAgentScripted(t *testing.T) {
	agent, cleanup, err := buildAgent(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if _, ok := agent.(*middleware.RetryDecorator); ok {
		t.Error("scripted provider must not be wrapped in retry: consumed responses are not replayed")
	}

	response, err := agent.Process(context.Background(), fitkit.NewMessage("user", demo.ConsultationRequest))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(response.Content, "fitness plan") {
		t.Errorf("unexpected scripted reply: %q", response.Content)
	}
}

// TestBuildAgentOpenAIWiring verifies the live backend is wrapped in
// retry and the configured delegation bound reaches the supervisor.
func TestBuildAgentOpenAIWiring(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Provider = config.ProviderOpenAI
	cfg.Model.APIKey = "test-key"
	cfg.MaxHandoffs = 5

	agent, cleanup, err := buildAgent(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	retried, ok := agent.(*middleware.RetryDecorator)
	if !ok {
		t.Fatalf("expected retry-wrapped agent, got %T", agent)
	}
	if got := retried.Introspect().InternalState["max_handoffs"]; got != 5 {
		t.Errorf("expected max_handoffs 5 on supervisor, got %v", got)
	}
}

func TestModelCallOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Model.Temperature = 0.7
	cfg.Model.MaxTokens = 256

	opts := llm.BuildCallOptions(modelCallOptions(cfg)...)
	if opts.Temperature == nil || *opts.Temperature != 0.7 {
		t.Errorf("temperature not threaded through: %v", opts.Temperature)
	}
	if opts.MaxTokens == nil || *opts.MaxTokens != 256 {
		t.Errorf("max tokens not threaded through: %v", opts.MaxTokens)
	}
}
