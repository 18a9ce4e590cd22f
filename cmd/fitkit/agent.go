package main

import (
	"context"
	"fmt"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/config"
	"github.com/fitforge/fitkit/demo"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/fitness"
	"github.com/fitforge/fitkit/middleware"
)

// buildAgent constructs the chat agent for the configured provider.
// Live backends are wrapped in retry; the scripted provider is not, since
// a consumed scripted response is never replayed. The returned cleanup
// releases any backing clients.
func buildAgent(ctx context.Context, cfg *config.Config) (fitkit.Agent, func(), error) {
	noop := func() {}
	callOpts := modelCallOptions(cfg)

	switch cfg.Model.Provider {
	case config.ProviderScripted:
		return &replayAgent{}, noop, nil

	case config.ProviderOpenAI:
		// Each agent gets its own model handle; they share the client config.
		coordinator := llm.NewOpenAILLM(cfg.Model.APIKey, cfg.Model.Name)
		workout := llm.NewOpenAILLM(cfg.Model.APIKey, cfg.Model.Name)
		nutrition := llm.NewOpenAILLM(cfg.Model.APIKey, cfg.Model.Name)
		team, err := fitness.NewTeam(coordinator, workout, nutrition,
			fitness.WithMaxHandoffs(cfg.MaxHandoffs),
			fitness.WithMaxSteps(cfg.MaxSteps),
			fitness.WithCallOptions(callOpts...))
		if err != nil {
			return nil, nil, err
		}
		return withRetry(team.Supervisor), noop, nil

	case config.ProviderGemini:
		model, err := llm.NewGeminiLLM(ctx, cfg.Model.APIKey, cfg.Model.Name)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { model.Close() }
		return withRetry(newChatAgent("fitness_assistant", model, fitness.SupervisorPrompt, callOpts)), cleanup, nil

	case config.ProviderBedrock:
		model, err := llm.NewBedrockLLM(ctx, llm.BedrockConfig{
			ModelID: cfg.Model.Name,
			Region:  cfg.Model.Region,
		})
		if err != nil {
			return nil, nil, err
		}
		return withRetry(newChatAgent("fitness_assistant", model, fitness.SupervisorPrompt, callOpts)), noop, nil
	}

	return nil, nil, fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
}

// modelCallOptions translates the configured model tuning into per-call
// options.
func modelCallOptions(cfg *config.Config) []llm.CallOption {
	opts := []llm.CallOption{llm.WithTemperature(cfg.Model.Temperature)}
	if cfg.Model.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.Model.MaxTokens))
	}
	return opts
}

func withRetry(agent fitkit.Agent) fitkit.Agent {
	return middleware.NewRetryDecorator(agent, middleware.DefaultRetryConfig())
}

// replayAgent rebuilds the scripted fitness team for every request, so
// each message replays the full deterministic consultation.
type replayAgent struct{}

var _ fitkit.Agent = (*replayAgent)(nil)

func (a *replayAgent) Name() string { return fitness.SupervisorName }

func (a *replayAgent) Capabilities() []string {
	return []string{"supervisor", "scripted_replay"}
}

func (a *replayAgent) Introspect() *fitkit.IntrospectionResult {
	return fitkit.DefaultIntrospectionResult(a)
}

func (a *replayAgent) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	team, err := demo.BuildFitnessTeam()
	if err != nil {
		return nil, err
	}
	return team.Supervisor.Process(ctx, message)
}

// chatAgent is a single-model conversational agent for providers without
// tool calling (gemini, bedrock). Each turn is a standalone completion
// under the coordinator prompt.
type chatAgent struct {
	name     string
	model    llm.LLM
	prompt   string
	callOpts []llm.CallOption
}

var _ fitkit.Agent = (*chatAgent)(nil)

func newChatAgent(name string, model llm.LLM, prompt string, callOpts []llm.CallOption) *chatAgent {
	return &chatAgent{name: name, model: model, prompt: prompt, callOpts: callOpts}
}

func (a *chatAgent) Name() string { return a.name }

func (a *chatAgent) Capabilities() []string {
	return []string{"chat"}
}

func (a *chatAgent) Introspect() *fitkit.IntrospectionResult {
	result, _ := fitkit.NewIntrospectionResult(a.name, a.Capabilities(), map[string]interface{}{
		"model": a.model.Model(),
	}, nil)
	return result
}

func (a *chatAgent) Process(ctx context.Context, message *fitkit.Message) (*fitkit.Message, error) {
	history := make([]*fitkit.Message, 0, 2)
	if a.prompt != "" {
		history = append(history, fitkit.NewMessage("system", a.prompt))
	}
	history = append(history, message)

	reply, err := a.model.Complete(ctx, history, a.callOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s completion failed: %w", a.name, err)
	}
	reply.Name = a.name
	return reply, nil
}
