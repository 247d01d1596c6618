package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/models"
	"go.uber.org/zap"
)

// DailyProgress is a leaf goal's achievement on one date
type DailyProgress struct {
	AchievedValue  *float64 `json:"achieved_value,omitempty"`
	TargetValue    *float64 `json:"target_value,omitempty"`
	Percentage     float64  `json:"percentage"`
	Stars          int      `json:"stars"`
	TotalItems     int      `json:"total_items,omitempty"`
	CompletedItems int      `json:"completed_items,omitempty"`
}

// MetricProgress rates an achieved metric value against a positive target.
// The percentage is capped at 100; stars use the uncapped ratio.
func MetricProgress(achieved, target float64, t Thresholds) *DailyProgress {
	raw := achieved / target * 100
	return &DailyProgress{
		AchievedValue: &achieved,
		TargetValue:   &target,
		Percentage:    clampPercentage(raw),
		Stars:         t.Stars(raw),
	}
}

// ChecklistProgress rates a day's checklist by completed weight over total weight.
// No items, or items with no weight, yield 0%.
func ChecklistProgress(items []models.ChecklistItemStatus, t Thresholds) *DailyProgress {
	var totalWeight, completedWeight float64
	completed := 0
	for _, item := range items {
		totalWeight += item.WeightPercentage
		if item.IsCompleted {
			completedWeight += item.WeightPercentage
			completed++
		}
	}

	percentage := 0.0
	if totalWeight > 0 {
		percentage = completedWeight / totalWeight * 100
	}
	return &DailyProgress{
		Percentage:     percentage,
		Stars:          t.Stars(percentage),
		TotalItems:     len(items),
		CompletedItems: completed,
	}
}

// DailyProgress returns goal's achievement on date, or nil when the goal has no daily measure.
// A goal with a health metric is measured from the logs; a qualitative goal from its checklist.
func (e *Engine) DailyProgress(ctx context.Context, goal *models.Goal, date time.Time) (*DailyProgress, error) {
	t := e.thresholds.For(goal)

	if goal.HealthMetricType != nil {
		metric := *goal.HealthMetricType
		if !metric.Valid() {
			e.logger.Warn("goal_unknown_health_metric",
				zap.String("goal_id", goal.ID.String()),
				zap.String("health_metric_type", string(metric)),
			)
			return nil, nil
		}
		if goal.TargetValue == nil || *goal.TargetValue <= 0 {
			return nil, nil
		}
		achieved, err := e.metrics.DailyTotal(ctx, metric, date)
		if err != nil {
			return nil, fmt.Errorf("daily %s total for goal %s: %w", metric, goal.ID, err)
		}
		return MetricProgress(achieved, *goal.TargetValue, t), nil
	}

	if goal.IsQualitative {
		items, err := e.checklists.ListForDate(ctx, goal.ID, date)
		if err != nil {
			return nil, fmt.Errorf("checklist for goal %s: %w", goal.ID, err)
		}
		return ChecklistProgress(items, t), nil
	}

	return nil, nil
}
