package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyChecklistItem is a recurring daily item of a qualitative goal
type DailyChecklistItem struct {
	ID               uuid.UUID `json:"id"`
	GoalID           uuid.UUID `json:"goal_id"`
	Title            string    `json:"title"`
	WeightPercentage float64   `json:"weight_percentage"`
	IsRecurring      bool      `json:"is_recurring"`
}

// ChecklistItemStatus is a daily checklist item joined with its completion for one date.
// A missing completion row reads as incomplete.
type ChecklistItemStatus struct {
	DailyChecklistItem
	IsCompleted     bool    `json:"is_completed"`
	CompletionNotes *string `json:"completion_notes,omitempty"`
}

// ChecklistCompletion records whether an item was done on a date
type ChecklistCompletion struct {
	ID              uuid.UUID  `json:"id"`
	ChecklistItemID uuid.UUID  `json:"checklist_item_id"`
	Date            time.Time  `json:"date"`
	IsCompleted     bool       `json:"is_completed"`
	Notes           *string    `json:"notes,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}
