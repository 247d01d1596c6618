package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GoalProgressResult is one goal's outcome within a batch recompute
type GoalProgressResult struct {
	GoalID   uuid.UUID     `json:"goal_id"`
	Progress *GoalProgress `json:"progress"`
	Error    string        `json:"error,omitempty"`
}

// Service persists computed progress onto goals and into the per-date history
type Service struct {
	engine  *Engine
	goals   database.GoalRepositoryInterface
	history database.ProgressHistoryRepositoryInterface
	logger  *zap.Logger
}

// NewService creates a progress service
func NewService(engine *Engine, goals database.GoalRepositoryInterface, history database.ProgressHistoryRepositoryInterface, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, goals: goals, history: history, logger: logger}
}

// UpdateGoalProgress computes goalID's progress on date, stores the percentage on the goal
// and upserts the (goal, date) history row. Repeating the call with unchanged data rewrites
// the same values. A nil result means the goal has no measure for the date and nothing was written.
func (s *Service) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (*GoalProgress, error) {
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}

	p, err := s.engine.GoalProgress(ctx, goalID, date)
	if err != nil {
		s.logError("goal_progress_failed", goalID, date, err)
		return nil, err
	}
	if p == nil {
		s.logger.Debug("goal_progress_undefined",
			zap.String("goal_id", goalID.String()),
			zap.String("date", models.FormatDate(date)),
		)
		return nil, nil
	}

	if err := s.goals.UpdateProgressPercentage(ctx, goalID, p.Percentage); err != nil {
		s.logError("goal_progress_write_failed", goalID, date, err)
		return nil, err
	}

	row := &models.ProgressHistory{
		GoalID:     goalID,
		Date:       date,
		Percentage: p.Percentage,
		Stars:      p.Stars,
	}
	if p.Daily != nil {
		row.AchievedValue = p.Daily.AchievedValue
		row.TargetValue = p.Daily.TargetValue
	}
	if err := s.history.Upsert(ctx, row); err != nil {
		s.logError("goal_progress_history_failed", goalID, date, err)
		return nil, err
	}

	s.logger.Info("goal_progress_updated",
		zap.String("goal_id", goalID.String()),
		zap.String("date", models.FormatDate(date)),
		zap.Float64("percentage", p.Percentage),
		zap.Int("stars", p.Stars),
	)
	return p, nil
}

// UpdateAllGoalsProgress recomputes every active top-level goal for date.
// A failing goal is recorded on its result and the batch moves on.
func (s *Service) UpdateAllGoalsProgress(ctx context.Context, date time.Time) ([]GoalProgressResult, error) {
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}

	goals, err := s.goals.ListTopLevelActive(ctx)
	if err != nil {
		s.logger.Error("goal_progress_batch_list_failed", zap.Error(err))
		return nil, fmt.Errorf("list top-level goals: %w", err)
	}

	results := make([]GoalProgressResult, 0, len(goals))
	failed := 0
	for _, goal := range goals {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		p, err := s.UpdateGoalProgress(ctx, goal.ID, date)
		result := GoalProgressResult{GoalID: goal.ID, Progress: p}
		if err != nil {
			result.Error = apperr.Message(err)
			failed++
		}
		results = append(results, result)
	}

	s.logger.Info("goal_progress_batch_completed",
		zap.String("date", models.FormatDate(date)),
		zap.Int("goals", len(goals)),
		zap.Int("failed", failed),
	)
	return results, nil
}

// History returns the stored history of goalID between optional inclusive bounds
func (s *Service) History(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, apperr.Validation("end date must not be before start date")
	}
	if _, err := s.goals.GetByID(ctx, goalID); err != nil {
		return nil, err
	}
	return s.history.Range(ctx, goalID, start, end)
}

func (s *Service) logError(event string, goalID uuid.UUID, date time.Time, err error) {
	level := s.logger.Error
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrValidation) {
		level = s.logger.Warn
	}
	level(event,
		zap.String("goal_id", goalID.String()),
		zap.String("date", models.FormatDate(date)),
		zap.Error(err),
	)
}
