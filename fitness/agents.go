package fitness

import (
	"fmt"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/patterns"
)

// Agent names used for supervisor handoffs.
const (
	WorkoutSpecialistName = "workout_specialist"
	NutritionistName      = "nutritionist"
	SupervisorName        = "fitness_supervisor"
)

// TeamOption tunes the agents built by NewTeam and the specialist
// constructors. Zero values keep the pattern defaults.
type TeamOption func(*teamSettings)

type teamSettings struct {
	maxHandoffs int
	maxSteps    int
	callOpts    []llm.CallOption
}

// WithMaxHandoffs bounds the supervisor's delegation loop.
func WithMaxHandoffs(n int) TeamOption {
	return func(s *teamSettings) { s.maxHandoffs = n }
}

// WithMaxSteps bounds each specialist's tool loop.
func WithMaxSteps(n int) TeamOption {
	return func(s *teamSettings) { s.maxSteps = n }
}

// WithCallOptions passes model call options (temperature, max tokens)
// through on every coordinator and specialist model call.
func WithCallOptions(opts ...llm.CallOption) TeamOption {
	return func(s *teamSettings) { s.callOpts = opts }
}

func applyTeamOptions(opts []TeamOption) teamSettings {
	var s teamSettings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// NewWorkoutSpecialist builds the workout specialist: a react agent with
// the workout planning and training metrics tools.
func NewWorkoutSpecialist(model llm.ToolCallingLLM, opts ...TeamOption) (fitkit.Agent, error) {
	settings := applyTeamOptions(opts)
	agent, err := patterns.NewReActAgent(&patterns.ReActConfig{
		Name:        WorkoutSpecialistName,
		Model:       model,
		Tools:       WorkoutTools(),
		Prompt:      WorkoutSpecialistPrompt,
		MaxSteps:    settings.maxSteps,
		CallOptions: settings.callOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("workout specialist: %w", err)
	}
	return agent, nil
}

// NewNutritionist builds the nutritionist: a react agent with the meal
// planning and nutrition needs tools.
func NewNutritionist(model llm.ToolCallingLLM, opts ...TeamOption) (fitkit.Agent, error) {
	settings := applyTeamOptions(opts)
	agent, err := patterns.NewReActAgent(&patterns.ReActConfig{
		Name:        NutritionistName,
		Model:       model,
		Tools:       NutritionTools(),
		Prompt:      NutritionistPrompt,
		MaxSteps:    settings.maxSteps,
		CallOptions: settings.callOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("nutritionist: %w", err)
	}
	return agent, nil
}

// Team holds the assembled fitness consultation team.
type Team struct {
	Supervisor        fitkit.Agent
	WorkoutSpecialist fitkit.Agent
	Nutritionist      fitkit.Agent
}

// NewTeam wires the full consultation team: a supervisor coordinating
// the workout specialist and the nutritionist. Each agent gets its own
// model so scripted models stay independent.
func NewTeam(coordinator, workoutModel, nutritionModel llm.ToolCallingLLM, opts ...TeamOption) (*Team, error) {
	settings := applyTeamOptions(opts)
	workout, err := NewWorkoutSpecialist(workoutModel, opts...)
	if err != nil {
		return nil, err
	}
	nutritionist, err := NewNutritionist(nutritionModel, opts...)
	if err != nil {
		return nil, err
	}

	supervisor, err := patterns.NewSupervisorAgent(&patterns.SupervisorConfig{
		Name:        SupervisorName,
		Model:       coordinator,
		Agents:      []fitkit.Agent{workout, nutritionist},
		Prompt:      SupervisorPrompt,
		MaxHandoffs: settings.maxHandoffs,
		CallOptions: settings.callOpts,
	})
	if err != nil {
		return nil, fmt.Errorf("fitness supervisor: %w", err)
	}

	return &Team{
		Supervisor:        supervisor,
		WorkoutSpecialist: workout,
		Nutritionist:      nutritionist,
	}, nil
}
