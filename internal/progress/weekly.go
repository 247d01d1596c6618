package progress

import (
	"context"
	"math"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/google/uuid"
)

// WeeklySummary averages a goal's stored daily history over a date range
type WeeklySummary struct {
	DaysTracked   int     `json:"days_tracked"`
	AvgPercentage float64 `json:"avg_percentage"`
	AvgStars      int     `json:"avg_stars"`
	Stars         int     `json:"stars"`
}

// WeeklyProgress summarises goalID's history rows between start and end inclusive.
// It returns nil when no day in the range has been recorded.
func (s *Service) WeeklyProgress(ctx context.Context, goalID uuid.UUID, start, end time.Time) (*WeeklySummary, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperr.Validation("start and end dates are required")
	}
	if end.Before(start) {
		return nil, apperr.Validation("end date must not be before start date")
	}

	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	rows, err := s.history.Range(ctx, goalID, &start, &end)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var sumPercentage float64
	var sumStars int
	for _, r := range rows {
		sumPercentage += r.Percentage
		sumStars += r.Stars
	}
	n := float64(len(rows))
	avg := sumPercentage / n

	return &WeeklySummary{
		DaysTracked:   len(rows),
		AvgPercentage: avg,
		AvgStars:      int(math.Round(float64(sumStars) / n)),
		Stars:         s.engine.thresholds.For(goal).Stars(avg),
	}, nil
}
