package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

// LogRepository appends rows to the committed per-category log tables
type LogRepository struct {
	q Querier
}

// NewLogRepository creates a new log repository
func NewLogRepository(q Querier) *LogRepository {
	return &LogRepository{q: q}
}

// WithTx returns a repository bound to tx
func (r *LogRepository) WithTx(tx *sql.Tx) *LogRepository {
	return &LogRepository{q: tx}
}

// InsertWater appends a water_logs row
func (r *LogRepository) InsertWater(ctx context.Context, l models.WaterLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO water_logs (id, date, amount_ml) VALUES ($1, $2, $3)
	`, uuid.New(), dateArg(l.Date), l.AmountML)
	if err != nil {
		return fmt.Errorf("failed to insert water log: %w", err)
	}
	return nil
}

// InsertFood appends a food_logs row
func (r *LogRepository) InsertFood(ctx context.Context, l models.FoodLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO food_logs (id, description, calories, protein, carbs, fats, caffeine_mg, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), l.Description, l.Calories, l.Protein, l.Carbs, l.Fats, l.CaffeineMG, timestampArg(l.Date))
	if err != nil {
		return fmt.Errorf("failed to insert food log: %w", err)
	}
	return nil
}

// InsertSteps appends a steps_logs row
func (r *LogRepository) InsertSteps(ctx context.Context, l models.StepsLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO steps_logs (id, date, total_steps, from_running) VALUES ($1, $2, $3, $4)
	`, uuid.New(), dateArg(l.Date), l.TotalSteps, l.FromRunning)
	if err != nil {
		return fmt.Errorf("failed to insert steps log: %w", err)
	}
	return nil
}

// InsertGym appends a gym_logs row
func (r *LogRepository) InsertGym(ctx context.Context, l models.GymLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO gym_logs (id, exercise, sets, reps, weight, weight_unit, notes, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, uuid.New(), l.Exercise, l.Sets, l.Reps, l.Weight, l.WeightUnit, l.Notes, timestampArg(l.Date))
	if err != nil {
		return fmt.Errorf("failed to insert gym log: %w", err)
	}
	return nil
}

// InsertSleep appends a sleep_logs row
func (r *LogRepository) InsertSleep(ctx context.Context, l models.SleepLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sleep_logs (id, date, duration_hours, quality_score, notes) VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), dateArg(l.Date), l.DurationHours, l.QualityScore, l.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert sleep log: %w", err)
	}
	return nil
}
