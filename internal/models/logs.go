package models

import "time"

// WaterLog is a committed water intake row
type WaterLog struct {
	Date     time.Time
	AmountML float64
}

// FoodLog is a committed row for one food item
type FoodLog struct {
	Description string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fats        float64
	CaffeineMG  float64
	Date        time.Time
}

// StepsLog is a committed step count row
type StepsLog struct {
	Date        time.Time
	TotalSteps  int
	FromRunning int
}

// GymLog is a committed row for one exercise
type GymLog struct {
	Exercise   string
	Sets       int
	Reps       int
	Weight     float64
	WeightUnit string
	Notes      string
	Date       time.Time
}

// SleepLog is a committed sleep row
type SleepLog struct {
	Date          time.Time
	DurationHours float64
	QualityScore  *int
	Notes         string
}
