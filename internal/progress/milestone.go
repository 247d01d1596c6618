package progress

import (
	"context"
	"fmt"

	"github.com/benvon/life-tracker/internal/models"
)

// MilestoneProgress is a milestone's completion state
type MilestoneProgress struct {
	Percentage     float64 `json:"percentage"`
	IsCompleted    bool    `json:"is_completed"`
	TotalItems     int     `json:"total_items,omitempty"`
	CompletedItems int     `json:"completed_items,omitempty"`
}

// ChecklistMilestoneProgress counts completed items; items are not weighted
func ChecklistMilestoneProgress(items []models.MilestoneChecklistItem) MilestoneProgress {
	if len(items) == 0 {
		return MilestoneProgress{}
	}
	completed := 0
	for _, item := range items {
		if item.IsCompleted {
			completed++
		}
	}
	return MilestoneProgress{
		Percentage:     float64(completed) / float64(len(items)) * 100,
		IsCompleted:    completed == len(items),
		TotalItems:     len(items),
		CompletedItems: completed,
	}
}

// QuantitativeMilestoneProgress compares current against target. A missing or zero target yields 0%.
func QuantitativeMilestoneProgress(current float64, target *float64) MilestoneProgress {
	if target == nil || *target == 0 {
		return MilestoneProgress{}
	}
	return MilestoneProgress{
		Percentage:  clampPercentage(current / *target * 100),
		IsCompleted: current >= *target,
	}
}

// MilestoneProgress computes m's progress, loading checklist items when m is a checklist milestone
func (e *Engine) MilestoneProgress(ctx context.Context, m *models.Milestone) (MilestoneProgress, error) {
	if m.MilestoneType.IsChecklist() {
		items, err := e.milestones.ListChecklistItems(ctx, m.ID)
		if err != nil {
			return MilestoneProgress{}, fmt.Errorf("checklist for milestone %s: %w", m.ID, err)
		}
		return ChecklistMilestoneProgress(items), nil
	}
	return QuantitativeMilestoneProgress(m.CurrentValue, m.TargetValue), nil
}
