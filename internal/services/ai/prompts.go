package ai

import (
	"fmt"
	"strings"

	"github.com/benvon/life-tracker/internal/models"
)

// SystemPrompt frames every ingestion completion
const SystemPrompt = "You are a precise health log parser. Follow the output format exactly and never add commentary."

// ClassifyRequest builds the categorisation request for one entry
func ClassifyRequest(text string) CompletionRequest {
	var b strings.Builder
	b.WriteString("Categorize this health log entry into exactly ONE category.\n\n")
	b.WriteString("Categories:\n")
	b.WriteString("- water: drinking water or other plain fluids (e.g. \"1L water\", \"2 glasses of water\")\n")
	b.WriteString("- food: meals, snacks, drinks with calories, coffee or tea (e.g. \"200g chicken and rice\", \"2 eggs\", \"black coffee\")\n")
	b.WriteString("- cardio: running, cycling, swimming or rowing sessions (e.g. \"ran 5k\", \"30 min bike\")\n")
	b.WriteString("- workout: strength training with sets and reps (e.g. \"bench press 3x8@185\", \"squats 5x5 225\")\n")
	b.WriteString("- sleep: sleep duration or quality (e.g. \"slept 7.5 hours\", \"8h sleep, quality 8\")\n")
	b.WriteString("- steps: step counts (e.g. \"10000 steps\", \"walked 8k steps\")\n\n")
	fmt.Fprintf(&b, "Entry: %q\n\n", text)
	b.WriteString("Return ONLY the category name, nothing else.")

	return CompletionRequest{
		Operation: OperationClassify,
		System:    SystemPrompt,
		Prompt:    b.String(),
	}
}

// parseInstructions holds the JSON shape and conversion rules per category
var parseInstructions = map[models.Category]string{
	models.CategoryFood: `Return JSON: {"items":[{"food":"name","amount":number,"unit":"g"}]}
One item per distinct food. Convert amounts to grams. If no amount is given, use 100g.
Include "calories", "protein", "carbs", "fats" (grams) and "caffeine_mg" per item only when you are confident.
Examples: "200g chicken and rice" -> two items; "2 eggs" -> {"food":"egg","amount":100,"unit":"g"}.`,
	models.CategoryWorkout: `Return JSON: {"exercises":[{"name":"exercise","sets":number,"reps":number,"weight":number,"unit":"lbs"}]}
One entry per exercise. Weight unit is "lbs" unless "kg" is stated.
Examples: "bench press 3x8@185" -> {"name":"bench press","sets":3,"reps":8,"weight":185,"unit":"lbs"};
"squats 5x5 100kg" -> {"name":"squats","sets":5,"reps":5,"weight":100,"unit":"kg"}.`,
	models.CategoryWater: `Return JSON: {"amount_ml":number}
Convert to millilitres: 1L = 1000ml, one glass = 250ml, one bottle = 500ml.`,
	models.CategorySteps: `Return JSON: {"total_steps":number,"from_running":number}
"8k" means 8000. from_running is 0 unless the entry says the steps came from running.`,
	models.CategorySleep: `Return JSON: {"duration_hours":number,"quality_score":number or null}
quality_score is 1-10 when stated, otherwise null. "7h30" means 7.5.`,
	models.CategoryCardio: `Return JSON: {"activity":"run|bike|swim|row|other","distance_km":number,"duration_minutes":number}
Convert miles to km (1 mile = 1.609 km). "5k" means 5 km. Use 0 for anything not stated.`,
}

// ParseRequest builds the structured extraction request for an entry already classified as category
func ParseRequest(category models.Category, text string) (CompletionRequest, error) {
	instructions, ok := parseInstructions[category]
	if !ok {
		return CompletionRequest{}, fmt.Errorf("no parse prompt for category %q", category)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Extract the %s details from this entry.\n\n", category)
	b.WriteString(instructions)
	fmt.Fprintf(&b, "\n\nEntry: %q\n\nReturn ONLY the JSON object.", text)

	return CompletionRequest{
		Operation: OperationParse,
		System:    SystemPrompt,
		Prompt:    b.String(),
		JSON:      true,
	}, nil
}
