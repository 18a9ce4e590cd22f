// Package fitness provides the domain tools and agents for the fitness
// consultation system: a workout specialist, a nutritionist, and the
// supervisor that coordinates them.
package fitness

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitforge/fitkit/fitkit"
	"github.com/fitforge/fitkit/tools"
)

// Activity multipliers for TDEE estimation.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// Calorie adjustments per nutrition goal.
var goalAdjustments = map[string]float64{
	"weight_loss": -500, // ~1 lb per week loss
	"muscle_gain": +300, // lean bulk
	"maintenance": 0,
}

// Macro splits (percent of calories) per dietary goal.
var macroRatios = map[string]struct{ Protein, Carbs, Fat float64 }{
	"weight_loss": {30, 35, 35},
	"muscle_gain": {25, 45, 30},
	"maintenance": {20, 50, 30},
	"performance": {20, 55, 25},
}

// basalMetabolicRate computes BMR with the Mifflin-St Jeor equation.
// Weight in kg, height in cm, age in years.
func basalMetabolicRate(weight, height float64, age int, gender string) float64 {
	bmr := 10*weight + 6.25*height - 5*float64(age)
	if strings.EqualFold(gender, "male") {
		return bmr + 5
	}
	return bmr - 161
}

func bmiCategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

func titleize(s string) string {
	words := strings.Split(strings.ReplaceAll(s, "_", " "), " ")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// NewWorkoutPlanTool builds a personalized workout plan from goal,
// experience level, weekly availability, and equipment.
func NewWorkoutPlanTool() fitkit.Tool {
	programs := map[string]string{
		"weight_loss":     "fat burning program with cardio and strength training",
		"muscle_gain":     "muscle building program with progressive overload",
		"strength":        "strength training program focusing on compound movements",
		"endurance":       "cardiovascular endurance program",
		"general_fitness": "balanced fitness routine for overall health",
	}
	equipmentNotes := map[string]string{
		"none":     "Bodyweight exercises only - no equipment needed",
		"basic":    "Using dumbbells, resistance bands, and bodyweight exercises",
		"gym":      "Full gym equipment available - machines, free weights, cardio",
		"home_gym": "Home gym setup with weights, machines, and accessories",
	}

	tool, _ := tools.NewFuncTool(
		"create_workout_plan",
		"Create a personalized workout plan based on fitness goals and constraints.",
		tools.ObjectSchema([]string{"goal", "level", "days"}, map[string]map[string]interface{}{
			"goal":      {"type": "string", "description": "Primary fitness goal (weight_loss, muscle_gain, strength, endurance, general_fitness)"},
			"level":     {"type": "string", "description": "Experience level (beginner, intermediate, advanced)"},
			"days":      {"type": "number", "description": "Workout days per week (1-7)"},
			"equipment": {"type": "string", "description": "Available equipment (none, basic, gym, home_gym)"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			goal := tools.String(args, "goal", "general_fitness")
			level := tools.String(args, "level", "beginner")
			equipment := tools.String(args, "equipment", "basic")
			days, err := tools.Number(args, "days")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			if days < 1 || days > 7 {
				return fitkit.NewToolError("days must be between 1 and 7"), nil
			}

			program, ok := programs[goal]
			if !ok {
				program = programs["general_fitness"]
			}
			note, ok := equipmentNotes[equipment]
			if !ok {
				note = equipmentNotes["basic"]
			}

			plan := fmt.Sprintf(`WORKOUT PLAN CREATED:
Goal: %s
Level: %s
Schedule: %d days per week
Equipment: %s

Program: %d-day %s

Key Components:
- Progressive overload principles
- Proper form and technique focus
- Adequate recovery periods
- Injury prevention strategies

Recommendations:
- Start with lighter weights and focus on form
- Gradually increase intensity over time
- Include warm-up and cool-down in each session
- Track progress weekly

Duration: 8-12 weeks with regular assessments and adjustments`,
				titleize(goal), titleize(level), int(days), note, int(days), program)

			return fitkit.NewToolResult(plan), nil
		},
	)
	return tool
}

// NewTrainingMetricsTool computes BMI, BMR, heart-rate training zones,
// and TDEE estimates.
func NewTrainingMetricsTool() fitkit.Tool {
	tool, _ := tools.NewFuncTool(
		"calculate_training_metrics",
		"Calculate fitness metrics: BMI, BMR, heart rate zones, and TDEE estimates.",
		tools.ObjectSchema([]string{"weight", "height", "age"}, map[string]map[string]interface{}{
			"weight": {"type": "number", "description": "Current weight in kg"},
			"height": {"type": "number", "description": "Height in centimeters"},
			"age":    {"type": "number", "description": "Age in years"},
			"gender": {"type": "string", "description": "Gender (male/female) for BMR calculation"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			weight, err := tools.Number(args, "weight")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			height, err := tools.Number(args, "height")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			ageF, err := tools.Number(args, "age")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			if weight <= 0 || height <= 0 || ageF <= 0 {
				return fitkit.NewToolError("weight, height and age must be positive"), nil
			}
			age := int(ageF)
			gender := tools.String(args, "gender", "male")

			heightM := height / 100
			bmi := weight / (heightM * heightM)
			bmr := basalMetabolicRate(weight, height, age, gender)

			maxHR := 220 - age
			fatBurnLo, fatBurnHi := int(float64(maxHR)*0.6), int(float64(maxHR)*0.7)
			cardioLo, cardioHi := int(float64(maxHR)*0.7), int(float64(maxHR)*0.85)
			peakLo, peakHi := int(float64(maxHR)*0.85), int(float64(maxHR)*0.95)

			metrics := fmt.Sprintf(`FITNESS METRICS CALCULATED:

Body Composition:
- BMI: %.1f (%s)
- Height: %.0f cm
- Weight: %.0f kg

Metabolic Rate:
- BMR: %.0f calories/day
- TDEE Estimates:
  - Sedentary: %.0f calories/day
  - Moderate Activity: %.0f calories/day
  - Very Active: %.0f calories/day

Heart Rate Training Zones:
- Fat Burn Zone: %d-%d bpm (60-70%% max HR)
- Cardio Zone: %d-%d bpm (70-85%% max HR)
- Peak Zone: %d-%d bpm (85-95%% max HR)
- Maximum Heart Rate: %d bpm`,
				bmi, bmiCategory(bmi), height, weight,
				bmr, bmr*1.2, bmr*1.55, bmr*1.725,
				fatBurnLo, fatBurnHi, cardioLo, cardioHi, peakLo, peakHi, maxHR)

			return fitkit.NewToolResult(metrics), nil
		},
	)
	return tool
}

// NewMealPlanTool builds a meal plan with a macro split matched to the
// dietary goal.
func NewMealPlanTool() fitkit.Tool {
	foodsByRestriction := map[string]struct{ Protein, Carbs, Fats string }{
		"none": {
			"Chicken, fish, eggs, Greek yogurt, lean beef, cottage cheese",
			"Rice, oats, sweet potato, quinoa, fruits, whole grain bread",
			"Avocado, nuts, olive oil, salmon, seeds",
		},
		"vegetarian": {
			"Eggs, Greek yogurt, legumes, tofu, cheese, protein powder",
			"Rice, oats, sweet potato, quinoa, fruits, whole grains",
			"Avocado, nuts, olive oil, seeds, nut butters",
		},
		"vegan": {
			"Legumes, tofu, tempeh, seitan, plant protein powder, nuts",
			"Rice, oats, sweet potato, quinoa, fruits, whole grains",
			"Avocado, nuts, olive oil, seeds, tahini, coconut",
		},
		"gluten_free": {
			"Chicken, fish, eggs, Greek yogurt, legumes, quinoa",
			"Rice, quinoa, sweet potato, fruits, GF oats, potatoes",
			"Avocado, nuts, olive oil, salmon, seeds",
		},
		"dairy_free": {
			"Chicken, fish, eggs, legumes, tofu, plant protein",
			"Rice, oats, sweet potato, quinoa, fruits, vegetables",
			"Avocado, nuts, olive oil, coconut oil, seeds",
		},
	}

	tool, _ := tools.NewFuncTool(
		"create_meal_plan",
		"Create a personalized meal plan with macronutrient breakdown.",
		tools.ObjectSchema([]string{"goal", "calories"}, map[string]map[string]interface{}{
			"goal":         {"type": "string", "description": "Dietary goal (weight_loss, muscle_gain, maintenance, performance)"},
			"calories":     {"type": "number", "description": "Target daily calories"},
			"restrictions": {"type": "string", "description": "Dietary restrictions (vegetarian, vegan, gluten_free, dairy_free, none)"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			goal := tools.String(args, "goal", "maintenance")
			restrictions := tools.String(args, "restrictions", "none")
			calories, err := tools.Number(args, "calories")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			if calories <= 0 {
				return fitkit.NewToolError("calories must be positive"), nil
			}

			ratio, ok := macroRatios[goal]
			if !ok {
				ratio = macroRatios["maintenance"]
			}
			foods, ok := foodsByRestriction[restrictions]
			if !ok {
				foods = foodsByRestriction["none"]
			}

			proteinG := calories * ratio.Protein / 100 / 4
			carbsG := calories * ratio.Carbs / 100 / 4
			fatG := calories * ratio.Fat / 100 / 9

			plan := fmt.Sprintf(`PERSONALIZED MEAL PLAN:
Goal: %s
Daily Calories: %.0f
Dietary Restrictions: %s

MACRONUTRIENT BREAKDOWN:
- Protein: %.0fg (%.0f%% of calories)
- Carbohydrates: %.0fg (%.0f%% of calories)
- Fats: %.0fg (%.0f%% of calories)

MEAL STRUCTURE:
- 3 main meals + 2 healthy snacks
- Protein with every meal (aim for %.0fg per meal/snack)
- Vegetables with lunch and dinner
- Pre/post workout nutrition timing

FOOD RECOMMENDATIONS:
Protein Sources: %s
Carbohydrate Sources: %s
Healthy Fats: %s

Duration: Follow for 2-4 weeks, then reassess and adjust based on progress`,
				titleize(goal), calories, titleize(restrictions),
				proteinG, ratio.Protein, carbsG, ratio.Carbs, fatG, ratio.Fat,
				proteinG/5, foods.Protein, foods.Carbs, foods.Fats)

			return fitkit.NewToolResult(plan), nil
		},
	)
	return tool
}

// NewNutritionNeedsTool computes caloric requirements, protein target,
// and hydration needs.
func NewNutritionNeedsTool() fitkit.Tool {
	tool, _ := tools.NewFuncTool(
		"calculate_nutrition_needs",
		"Calculate caloric, protein, and hydration needs from body stats, activity level, and goal.",
		tools.ObjectSchema([]string{"weight", "height", "age", "gender", "activity", "goal"}, map[string]map[string]interface{}{
			"weight":   {"type": "number", "description": "Weight in kg"},
			"height":   {"type": "number", "description": "Height in centimeters"},
			"age":      {"type": "number", "description": "Age in years"},
			"gender":   {"type": "string", "description": "Gender (male/female)"},
			"activity": {"type": "string", "description": "Activity level (sedentary, light, moderate, active, very_active)"},
			"goal":     {"type": "string", "description": "Nutrition goal (weight_loss, muscle_gain, maintenance)"},
		}),
		func(ctx context.Context, args map[string]interface{}) (*fitkit.ToolResult, error) {
			weight, err := tools.Number(args, "weight")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			height, err := tools.Number(args, "height")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			ageF, err := tools.Number(args, "age")
			if err != nil {
				return fitkit.NewToolError(err.Error()), nil
			}
			if weight <= 0 || height <= 0 || ageF <= 0 {
				return fitkit.NewToolError("weight, height and age must be positive"), nil
			}
			age := int(ageF)
			gender := tools.String(args, "gender", "male")
			activity := tools.String(args, "activity", "moderate")
			goal := tools.String(args, "goal", "maintenance")

			bmr := basalMetabolicRate(weight, height, age, gender)
			multiplier, ok := activityMultipliers[activity]
			if !ok {
				multiplier = activityMultipliers["moderate"]
			}
			tdee := bmr * multiplier
			targetCalories := tdee + goalAdjustments[goal]

			// Higher protein for body composition goals.
			proteinPerKg := 1.6
			if goal == "muscle_gain" || goal == "weight_loss" {
				proteinPerKg = 2.2
			}
			proteinGrams := weight * proteinPerKg

			baseWater := weight * 35 // 35 ml per kg
			exerciseWater := 250.0
			if activity == "active" || activity == "very_active" {
				exerciseWater = 500
			}
			totalWater := baseWater + exerciseWater

			analysis := fmt.Sprintf(`COMPREHENSIVE NUTRITIONAL NEEDS:

Personal Information:
- Gender: %s
- Age: %d years
- Weight: %.0f kg
- Height: %.0f cm
- Activity Level: %s

Caloric Requirements:
- BMR: %.0f calories/day
- TDEE: %.0f calories/day
- Target Calories for %s: %.0f calories/day

Protein Requirements:
- Daily Protein Target: %.0fg
- Protein per meal (5 meals): %.0fg
- Protein per kg body weight: %.1fg/kg

Hydration Requirements:
- Daily Water Target: %.0fml (%.1f glasses)
- Base requirement: %.0fml
- Exercise addition: %.0fml`,
				titleize(gender), age, weight, height, titleize(activity),
				bmr, tdee, titleize(goal), targetCalories,
				proteinGrams, proteinGrams/5, proteinPerKg,
				totalWater, totalWater/250, baseWater, exerciseWater)

			return fitkit.NewToolResult(analysis), nil
		},
	)
	return tool
}

// WorkoutTools returns the workout specialist's toolset.
func WorkoutTools() []fitkit.Tool {
	return []fitkit.Tool{NewWorkoutPlanTool(), NewTrainingMetricsTool()}
}

// NutritionTools returns the nutritionist's toolset.
func NutritionTools() []fitkit.Tool {
	return []fitkit.Tool{NewMealPlanTool(), NewNutritionNeedsTool()}
}
