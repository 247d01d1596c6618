package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of kinds a pending entry can be classified into
type Category string

const (
	CategoryWater   Category = "water"
	CategoryFood    Category = "food"
	CategoryCardio  Category = "cardio"
	CategoryWorkout Category = "workout"
	CategorySleep   Category = "sleep"
	CategorySteps   Category = "steps"
)

// Categories lists every valid category in display order
var Categories = []Category{
	CategoryWater,
	CategoryFood,
	CategoryCardio,
	CategoryWorkout,
	CategorySleep,
	CategorySteps,
}

// Valid reports whether c is in the closed category set
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PendingLog is an AI-parsed entry awaiting compilation for its date
type PendingLog struct {
	ID       uuid.UUID `json:"id"`
	Date     time.Time `json:"date"`
	Category Category  `json:"category"`
	RawInput string    `json:"raw_input"`
	// Payload is nil when structured parsing failed; the entry is kept for manual correction.
	Payload  Payload   `json:"-"`
	LoggedAt time.Time `json:"logged_at"`
	Compiled bool      `json:"compiled"`
}

// MarshalJSON renders the typed payload under parsed_data
func (p PendingLog) MarshalJSON() ([]byte, error) {
	type alias PendingLog
	return json.Marshal(struct {
		alias
		ParsedData Payload `json:"parsed_data"`
	}{alias: alias(p), ParsedData: p.Payload})
}
