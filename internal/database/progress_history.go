package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

// ProgressHistoryRepository stores per-date goal progress
type ProgressHistoryRepository struct {
	q Querier
}

// NewProgressHistoryRepository creates a new progress history repository
func NewProgressHistoryRepository(q Querier) *ProgressHistoryRepository {
	return &ProgressHistoryRepository{q: q}
}

// Upsert writes the row for (goal, date), replacing any earlier value
func (r *ProgressHistoryRepository) Upsert(ctx context.Context, h *models.ProgressHistory) error {
	now := time.Now()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO goal_progress_history (goal_id, date, achieved_value, target_value, percentage, stars, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (goal_id, date) DO UPDATE SET
			achieved_value = EXCLUDED.achieved_value,
			target_value = EXCLUDED.target_value,
			percentage = EXCLUDED.percentage,
			stars = EXCLUDED.stars,
			updated_at = EXCLUDED.updated_at
	`, h.GoalID, dateArg(h.Date), h.AchievedValue, h.TargetValue, h.Percentage, h.Stars, timestampArg(now))
	if err != nil {
		return fmt.Errorf("failed to upsert progress history: %w", err)
	}
	h.UpdatedAt = now
	return nil
}

// Get returns the row for (goal, date) or nil when none is stored
func (r *ProgressHistoryRepository) Get(ctx context.Context, goalID uuid.UUID, date time.Time) (*models.ProgressHistory, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT goal_id, date, achieved_value, target_value, percentage, stars, updated_at
		FROM goal_progress_history
		WHERE goal_id = $1 AND date = $2
	`, goalID, dateArg(date))
	h, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress history: %w", err)
	}
	return h, nil
}

// Range returns a goal's history in date order. Nil bounds are open; both bounds are inclusive.
func (r *ProgressHistoryRepository) Range(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error) {
	query := `
		SELECT goal_id, date, achieved_value, target_value, percentage, stars, updated_at
		FROM goal_progress_history
		WHERE goal_id = $1
	`
	args := []any{goalID}
	argIndex := 2

	if start != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIndex)
		args = append(args, dateArg(*start))
		argIndex++
	}
	if end != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIndex)
		args = append(args, dateArg(*end))
	}
	query += " ORDER BY date ASC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress history: %w", err)
	}
	defer rows.Close()

	var history []*models.ProgressHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating progress history: %w", err)
	}
	return history, nil
}

func scanHistory(s rowScanner) (*models.ProgressHistory, error) {
	h := &models.ProgressHistory{}
	var achieved, target sql.NullFloat64
	if err := s.Scan(&h.GoalID, &h.Date, &achieved, &target, &h.Percentage, &h.Stars, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.AchievedValue = nullFloat(achieved)
	h.TargetValue = nullFloat(target)
	return h, nil
}
