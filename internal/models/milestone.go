package models

import (
	"time"

	"github.com/google/uuid"
)

// MilestoneType selects how milestone progress is measured
type MilestoneType string

const (
	MilestoneTypeQuantitative MilestoneType = "quantitative"
	MilestoneTypeQualitative  MilestoneType = "qualitative"
	MilestoneTypeChecklist    MilestoneType = "checklist"
)

// IsChecklist reports whether progress comes from checklist items rather than current/target values
func (t MilestoneType) IsChecklist() bool {
	return t == MilestoneTypeQualitative || t == MilestoneTypeChecklist
}

// Milestone is a checkpoint attached to exactly one goal
type Milestone struct {
	ID               uuid.UUID     `json:"id"`
	GoalID           uuid.UUID     `json:"goal_id"`
	Title            string        `json:"title"`
	MilestoneType    MilestoneType `json:"milestone_type"`
	TargetValue      *float64      `json:"target_value,omitempty"`
	TargetUnit       *string       `json:"target_unit,omitempty"`
	CurrentValue     float64       `json:"current_value"`
	WeightPercentage float64       `json:"weight_percentage"`
	IsCompleted      bool          `json:"is_completed"`
	DueDate          *time.Time    `json:"due_date,omitempty"`
	DisplayOrder     int           `json:"display_order"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

// MilestoneChecklistItem is one sub-item of a checklist milestone
type MilestoneChecklistItem struct {
	ID           uuid.UUID `json:"id"`
	MilestoneID  uuid.UUID `json:"milestone_id"`
	Title        string    `json:"title"`
	IsCompleted  bool      `json:"is_completed"`
	DisplayOrder int       `json:"display_order"`
}

// MilestoneUpdate lists every milestone column that may be changed after creation.
// Nil fields are left untouched.
type MilestoneUpdate struct {
	Title            *string    `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	TargetValue      *float64   `json:"target_value,omitempty" validate:"omitempty,gte=0"`
	TargetUnit       *string    `json:"target_unit,omitempty"`
	CurrentValue     *float64   `json:"current_value,omitempty"`
	WeightPercentage *float64   `json:"weight_percentage,omitempty" validate:"omitempty,gte=0"`
	IsCompleted      *bool      `json:"is_completed,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	DisplayOrder     *int       `json:"display_order,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u MilestoneUpdate) IsEmpty() bool {
	return u.Title == nil && u.TargetValue == nil && u.TargetUnit == nil && u.CurrentValue == nil &&
		u.WeightPercentage == nil && u.IsCompleted == nil && u.DueDate == nil && u.DisplayOrder == nil
}
