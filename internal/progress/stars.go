// Package progress computes goal progress: star ratings, daily metric and checklist
// achievement, milestone completion and the weighted roll-up through the goal graph.
package progress

import "github.com/benvon/life-tracker/internal/models"

// Thresholds are the percentages at which a goal earns two and three stars
type Thresholds struct {
	Two   float64
	Three float64
}

// DefaultThresholds apply when neither configuration nor the goal overrides them
var DefaultThresholds = Thresholds{Two: 70, Three: 90}

// Stars maps a percentage to a 0-3 rating. The percentage is not clamped, so 150 still earns 3.
func Stars(percentage, t2, t3 float64) int {
	switch {
	case percentage >= t3:
		return 3
	case percentage >= t2:
		return 2
	case percentage > 0:
		return 1
	default:
		return 0
	}
}

// Stars rates percentage against t
func (t Thresholds) Stars(percentage float64) int {
	return Stars(percentage, t.Two, t.Three)
}

// For returns the thresholds for goal, using t for any threshold the goal does not override
func (t Thresholds) For(goal *models.Goal) Thresholds {
	out := t
	if goal == nil {
		return out
	}
	if goal.StarThreshold2 != nil {
		out.Two = *goal.StarThreshold2
	}
	if goal.StarThreshold3 != nil {
		out.Three = *goal.StarThreshold3
	}
	return out
}

func clampPercentage(p float64) float64 {
	if p > 100 {
		return 100
	}
	return p
}
