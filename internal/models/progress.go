package models

import (
	"time"

	"github.com/google/uuid"
)

// ProgressHistory is the stored progress of one goal on one date
type ProgressHistory struct {
	GoalID        uuid.UUID `json:"goal_id"`
	Date          time.Time `json:"date"`
	AchievedValue *float64  `json:"achieved_value,omitempty"`
	TargetValue   *float64  `json:"target_value,omitempty"`
	Percentage    float64   `json:"percentage"`
	Stars         int       `json:"stars"`
	UpdatedAt     time.Time `json:"updated_at"`
}
