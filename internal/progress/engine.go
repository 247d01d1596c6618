package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// GoalProgress is a goal's computed progress on one date
type GoalProgress struct {
	GoalID             uuid.UUID      `json:"goal_id"`
	Percentage         float64        `json:"percentage"`
	Stars              int            `json:"stars"`
	TotalWeight        float64        `json:"total_weight"`
	ContributionsCount int            `json:"contributions_count"`
	MilestonesCount    int            `json:"milestones_count"`
	Daily              *DailyProgress `json:"daily,omitempty"`
}

// Engine resolves goal progress from the goal graph and the committed logs
type Engine struct {
	goals      database.GoalRepositoryInterface
	milestones database.MilestoneRepositoryInterface
	checklists database.ChecklistRepositoryInterface
	metrics    database.MetricRepositoryInterface
	thresholds Thresholds
	logger     *zap.Logger
}

// NewEngine creates a progress engine. Zero thresholds fall back to DefaultThresholds.
func NewEngine(
	goals database.GoalRepositoryInterface,
	milestones database.MilestoneRepositoryInterface,
	checklists database.ChecklistRepositoryInterface,
	metrics database.MetricRepositoryInterface,
	thresholds Thresholds,
	logger *zap.Logger,
) *Engine {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		goals:      goals,
		milestones: milestones,
		checklists: checklists,
		metrics:    metrics,
		thresholds: thresholds,
		logger:     logger,
	}
}

// GoalProgress computes the progress of goalID on date.
//
// A daily goal with a date returns its daily measure directly, and nil when it has none.
// Any other goal is the weighted average of its child contributions and its incomplete
// milestones, normalised by the weights actually present and capped at 100.
// A goal reached again through its own descendants yields ErrCycleDetected.
func (e *Engine) GoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (result *GoalProgress, err error) {
	ctx, span := telemetry.StartSpan(ctx, "progress.GoalProgress",
		attribute.String("goal_id", goalID.String()),
		attribute.String("date", models.FormatDate(date)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	return e.resolve(ctx, goalID, date, map[uuid.UUID]bool{})
}

func (e *Engine) resolve(ctx context.Context, goalID uuid.UUID, date time.Time, chain map[uuid.UUID]bool) (*GoalProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if chain[goalID] {
		return nil, apperr.Cycle(goalID)
	}
	chain[goalID] = true
	defer delete(chain, goalID)

	goal, err := e.goals.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	t := e.thresholds.For(goal)

	if goal.GoalType == models.GoalTypeDaily && !date.IsZero() {
		daily, err := e.DailyProgress(ctx, goal, date)
		if err != nil || daily == nil {
			return nil, err
		}
		return &GoalProgress{
			GoalID:     goal.ID,
			Percentage: daily.Percentage,
			Stars:      daily.Stars,
			Daily:      daily,
		}, nil
	}

	contributions, err := e.goals.ListContributions(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("contributions of goal %s: %w", goalID, err)
	}

	var totalWeight, weighted float64
	for _, c := range contributions {
		child, err := e.resolve(ctx, c.ChildGoalID, date, chain)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		totalWeight += c.WeightPercentage
		weighted += child.Percentage * c.WeightPercentage / 100
	}

	// Completed milestones drop out of both the sum and the denominator.
	milestones, err := e.milestones.ListIncomplete(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("milestones of goal %s: %w", goalID, err)
	}
	for _, m := range milestones {
		mp, err := e.MilestoneProgress(ctx, m)
		if err != nil {
			return nil, err
		}
		totalWeight += m.WeightPercentage
		weighted += mp.Percentage * m.WeightPercentage / 100
	}

	raw := 0.0
	if totalWeight > 0 {
		raw = weighted / totalWeight * 100
	}

	return &GoalProgress{
		GoalID:             goalID,
		Percentage:         clampPercentage(raw),
		Stars:              t.Stars(raw),
		TotalWeight:        totalWeight,
		ContributionsCount: len(contributions),
		MilestonesCount:    len(milestones),
	}, nil
}
