package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/fitforge/fitkit/adapter/llm"
	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/fitness"
)

// ConsultationRequest is the user request driving the fitness scenario.
const ConsultationRequest = "I'm 25 years old, 70kg, 175cm tall. I want to lose weight. " +
	"Create both a workout and a nutrition plan for me."

// BuildFitnessTeam assembles the scripted fitness consultation: the
// coordinator consults the workout specialist and then the nutritionist,
// each of which runs its real domain tools.
func BuildFitnessTeam() (*fitness.Team, error) {
	coordinatorModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("I'll start with our workout specialist.", fitkit.ToolCall{
			ID: callID("call_workout"), Name: "transfer_to_" + fitness.WorkoutSpecialistName,
		}),
		fitkit.NewToolCallMessage("Now let me bring in our nutritionist.", fitkit.ToolCall{
			ID: callID("call_nutrition"), Name: "transfer_to_" + fitness.NutritionistName,
		}),
		fitkit.NewMessage("assistant",
			"Your complete fitness plan is ready: a 3-day fat burning program paired with "+
				"a weight loss meal plan around 2100 daily calories and 154g of protein. "+
				"Stay consistent for 8-12 weeks and reassess."),
	})
	if err != nil {
		return nil, err
	}

	workoutModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("Let me check your metrics first.", fitkit.ToolCall{
			ID: callID("call_metrics"), Name: "calculate_training_metrics",
			Args: map[string]interface{}{
				"weight": 70.0, "height": 175.0, "age": 25.0, "gender": "male",
			},
		}),
		fitkit.NewToolCallMessage("Now I'll build your training plan.", fitkit.ToolCall{
			ID: callID("call_plan"), Name: "create_workout_plan",
			Args: map[string]interface{}{
				"goal": "weight_loss", "level": "beginner", "days": 3.0, "equipment": "basic",
			},
		}),
		fitkit.NewMessage("assistant",
			"Your 3-day fat burning program is ready, built around your metrics "+
				"(BMI 22.9, max heart rate 195 bpm)."),
	})
	if err != nil {
		return nil, err
	}

	nutritionModel, err := llm.NewScriptedLLM([]*fitkit.Message{
		fitkit.NewToolCallMessage("Let me calculate your nutritional needs.", fitkit.ToolCall{
			ID: callID("call_needs"), Name: "calculate_nutrition_needs",
			Args: map[string]interface{}{
				"weight": 70.0, "height": 175.0, "age": 25.0,
				"gender": "male", "activity": "moderate", "goal": "weight_loss",
			},
		}),
		fitkit.NewToolCallMessage("And here is your meal plan.", fitkit.ToolCall{
			ID: callID("call_meal"), Name: "create_meal_plan",
			Args: map[string]interface{}{
				"goal": "weight_loss", "calories": 2100.0, "restrictions": "none",
			},
		}),
		fitkit.NewMessage("assistant",
			"Your weight loss meal plan is ready: about 2100 daily calories with 154g of protein."),
	})
	if err != nil {
		return nil, err
	}

	return fitness.NewTeam(coordinatorModel, workoutModel, nutritionModel)
}

// RunFitness executes the fitness consultation scenario and writes the
// conversation flow to w.
func RunFitness(ctx context.Context, w io.Writer) error {
	fmt.Fprintln(w, "=== Fitness Consultation Demo ===")
	fmt.Fprintf(w, "User: %s\n", ConsultationRequest)

	team, err := BuildFitnessTeam()
	if err != nil {
		return fmt.Errorf("building fitness team: %w", err)
	}

	response, err := team.Supervisor.Process(ctx, fitkit.NewMessage("user", ConsultationRequest))
	if err != nil {
		return fmt.Errorf("fitness demo failed: %w", err)
	}

	printOutcome(w, response)
	return nil
}

// RunAll executes every demo scenario in order.
func RunAll(ctx context.Context, w io.Writer) error {
	if err := RunResearch(ctx, w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return RunFitness(ctx, w)
}
