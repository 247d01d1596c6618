package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Payload is the structured data parsed from a pending entry.
// Each category has exactly one concrete payload type.
type Payload interface {
	Category() Category
}

// WaterPayload is a drink of water
type WaterPayload struct {
	AmountML float64 `json:"amount_ml"`
}

// FoodItem is one food within a meal entry. Macros are totals for the stated amount.
type FoodItem struct {
	Food       string  `json:"food"`
	Amount     float64 `json:"amount,omitempty"`
	Unit       string  `json:"unit,omitempty"`
	Calories   float64 `json:"calories,omitempty"`
	Protein    float64 `json:"protein,omitempty"`
	Carbs      float64 `json:"carbs,omitempty"`
	Fats       float64 `json:"fats,omitempty"`
	CaffeineMG float64 `json:"caffeine_mg,omitempty"`
}

// HasMacros reports whether any macro value was supplied
func (f FoodItem) HasMacros() bool {
	return f.Calories > 0 || f.Protein > 0 || f.Carbs > 0 || f.Fats > 0
}

// Description renders the food log description, e.g. "chicken (200g)"
func (f FoodItem) Description() string {
	if f.Amount == 0 {
		return f.Food
	}
	unit := f.Unit
	if unit == "" {
		unit = "g"
	}
	return fmt.Sprintf("%s (%s%s)", f.Food, formatAmount(f.Amount), unit)
}

// FoodPayload is a meal or snack. A nil Items slice means the parser found no items.
type FoodPayload struct {
	Items []FoodItem `json:"items"`
}

// StepsPayload is a step count
type StepsPayload struct {
	TotalSteps  int `json:"total_steps"`
	FromRunning int `json:"from_running,omitempty"`
}

// Exercise is one strength exercise within a workout entry
type Exercise struct {
	Name   string  `json:"name"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
	Weight float64 `json:"weight"`
	Unit   string  `json:"unit,omitempty"`
}

// WorkoutPayload is a gym session. A nil Exercises slice means the parser found none.
type WorkoutPayload struct {
	Exercises []Exercise `json:"exercises"`
}

// SleepPayload is a night of sleep
type SleepPayload struct {
	DurationHours float64 `json:"duration_hours"`
	QualityScore  *int    `json:"quality_score,omitempty"`
}

// CardioPayload is a run, ride or similar session
type CardioPayload struct {
	Activity        string  `json:"activity,omitempty"`
	DistanceKM      float64 `json:"distance_km,omitempty"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
}

// Whole-number fields accept fractional JSON numbers and round them, so "8000.0" steps or a
// 7.5 quality score keep the rest of the entry instead of failing the decode.

// UnmarshalJSON decodes step counts leniently
func (p *StepsPayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		TotalSteps  float64 `json:"total_steps"`
		FromRunning float64 `json:"from_running"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.TotalSteps = roundInt(raw.TotalSteps)
	p.FromRunning = roundInt(raw.FromRunning)
	return nil
}

// UnmarshalJSON decodes sets and reps leniently
func (e *Exercise) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name   string  `json:"name"`
		Sets   float64 `json:"sets"`
		Reps   float64 `json:"reps"`
		Weight float64 `json:"weight"`
		Unit   string  `json:"unit"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Exercise{
		Name:   raw.Name,
		Sets:   roundInt(raw.Sets),
		Reps:   roundInt(raw.Reps),
		Weight: raw.Weight,
		Unit:   raw.Unit,
	}
	return nil
}

// UnmarshalJSON decodes the quality score leniently
func (p *SleepPayload) UnmarshalJSON(b []byte) error {
	var raw struct {
		DurationHours float64  `json:"duration_hours"`
		QualityScore  *float64 `json:"quality_score"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.DurationHours = raw.DurationHours
	p.QualityScore = nil
	if raw.QualityScore != nil {
		q := roundInt(*raw.QualityScore)
		p.QualityScore = &q
	}
	return nil
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func (WaterPayload) Category() Category   { return CategoryWater }
func (FoodPayload) Category() Category    { return CategoryFood }
func (StepsPayload) Category() Category   { return CategorySteps }
func (WorkoutPayload) Category() Category { return CategoryWorkout }
func (SleepPayload) Category() Category   { return CategorySleep }
func (CardioPayload) Category() Category  { return CategoryCardio }

// DecodePayload decodes raw JSON into the payload type for category.
// A null or empty document decodes to a nil payload.
func DecodePayload(category Category, raw []byte) (Payload, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var (
		payload Payload
		err     error
	)
	switch category {
	case CategoryWater:
		var p WaterPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case CategoryFood:
		var p FoodPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case CategorySteps:
		var p StepsPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case CategoryWorkout:
		var p WorkoutPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case CategorySleep:
		var p SleepPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case CategoryCardio:
		var p CardioPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", category, err)
	}
	if err := validatePayload(payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// EncodePayload renders a payload for the parsed_data column; nil encodes as SQL NULL.
func EncodePayload(p Payload) (*string, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Category(), err)
	}
	s := string(b)
	return &s, nil
}

func validatePayload(p Payload) error {
	switch v := p.(type) {
	case WaterPayload:
		if v.AmountML < 0 {
			return fmt.Errorf("water amount_ml must not be negative")
		}
	case FoodPayload:
		for i, item := range v.Items {
			if strings.TrimSpace(item.Food) == "" {
				return fmt.Errorf("food item %d has no name", i)
			}
		}
	case WorkoutPayload:
		for i, ex := range v.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("exercise %d has no name", i)
			}
		}
	case SleepPayload:
		if v.DurationHours < 0 || v.DurationHours > 24 {
			return fmt.Errorf("sleep duration_hours %v out of range", v.DurationHours)
		}
	case StepsPayload:
		if v.TotalSteps < 0 {
			return fmt.Errorf("total_steps must not be negative")
		}
	}
	return nil
}

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
