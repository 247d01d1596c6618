// Package compiler commits a day's pending entries into the permanent log tables exactly once.
package compiler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrNothingToCompile is the message returned when a date has no uncompiled entries
const ErrNothingToCompile = "No pending logs to compile"

const defaultWeightUnit = "lbs"

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// Result summarises one compile run
type Result struct {
	Date time.Time `json:"date"`
	// Counts holds, per category, the entries that produced output (cardio always counts)
	Counts map[models.Category]int `json:"counts"`
	// TotalLogs is the number of pending entries claimed
	TotalLogs int `json:"total_logs"`
	// RowsWritten is the number of log table rows inserted
	RowsWritten int `json:"rows_written"`
}

// DayCompiler claims a date's pending entries and fans them out into the log tables
type DayCompiler struct {
	db      TxRunner
	pending *database.PendingLogRepository
	logs    *database.LogRepository
	logger  *zap.Logger
}

// NewDayCompiler creates a day compiler
func NewDayCompiler(db TxRunner, pending *database.PendingLogRepository, logs *database.LogRepository, logger *zap.Logger) *DayCompiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DayCompiler{db: db, pending: pending, logs: logs, logger: logger}
}

// CompileDay claims every uncompiled entry of date and writes its derived rows in one transaction.
// Concurrent calls for the same date never process an entry twice; the loser sees no entries.
// A date with nothing to claim returns an ErrPrecondition and writes nothing.
func (c *DayCompiler) CompileDay(ctx context.Context, date time.Time) (result *Result, err error) {
	if date.IsZero() {
		return nil, apperr.Validation("date is required")
	}

	ctx, span := telemetry.StartSpan(ctx, "compiler.CompileDay", attribute.String("date", models.FormatDate(date)))
	defer func() { telemetry.EndSpan(span, err) }()

	result = &Result{Date: date, Counts: make(map[models.Category]int, len(models.Categories))}
	for _, category := range models.Categories {
		result.Counts[category] = 0
	}

	err = c.db.WithTx(ctx, func(tx *sql.Tx) error {
		claimed, err := c.pending.WithTx(tx).ClaimForDate(ctx, date)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			return apperr.Precondition(ErrNothingToCompile)
		}

		logs := c.logs.WithTx(tx)
		for _, entry := range claimed {
			rows, counted, err := c.commit(ctx, logs, entry)
			if err != nil {
				return err
			}
			if counted {
				result.Counts[entry.Category]++
			}
			result.RowsWritten += rows
		}
		result.TotalLogs = len(claimed)
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrPrecondition) {
			c.logger.Info("day_compile_skipped", zap.String("date", models.FormatDate(date)), zap.String("reason", apperr.Message(err)))
		} else {
			c.logger.Error("day_compile_failed", zap.String("date", models.FormatDate(date)), zap.Error(err))
		}
		return nil, err
	}

	c.logger.Info("day_compiled",
		zap.String("date", models.FormatDate(date)),
		zap.Int("total_logs", result.TotalLogs),
		zap.Int("rows_written", result.RowsWritten),
		zap.Any("counts", result.Counts),
	)
	return result, nil
}

// PendingCount reports how many entries of date a compile would claim right now
func (c *DayCompiler) PendingCount(ctx context.Context, date time.Time) (int, error) {
	if date.IsZero() {
		return 0, apperr.Validation("date is required")
	}
	return c.pending.CountUncompiled(ctx, date)
}

// commit writes the rows derived from one entry. It returns how many rows were written
// and whether the entry counts toward its category.
func (c *DayCompiler) commit(ctx context.Context, logs *database.LogRepository, entry *models.PendingLog) (int, bool, error) {
	switch p := entry.Payload.(type) {
	case models.WaterPayload:
		if p.AmountML <= 0 {
			return 0, false, nil
		}
		return 1, true, logs.InsertWater(ctx, models.WaterLog{Date: entry.Date, AmountML: p.AmountML})

	case models.FoodPayload:
		if p.Items == nil {
			return 0, false, nil
		}
		for _, item := range p.Items {
			err := logs.InsertFood(ctx, models.FoodLog{
				Description: item.Description(),
				Calories:    item.Calories,
				Protein:     item.Protein,
				Carbs:       item.Carbs,
				Fats:        item.Fats,
				CaffeineMG:  item.CaffeineMG,
				Date:        entry.LoggedAt,
			})
			if err != nil {
				return 0, false, err
			}
		}
		return len(p.Items), true, nil

	case models.StepsPayload:
		if p.TotalSteps <= 0 {
			return 0, false, nil
		}
		return 1, true, logs.InsertSteps(ctx, models.StepsLog{Date: entry.Date, TotalSteps: p.TotalSteps, FromRunning: p.FromRunning})

	case models.WorkoutPayload:
		if p.Exercises == nil {
			return 0, false, nil
		}
		for _, ex := range p.Exercises {
			unit := ex.Unit
			if unit == "" {
				unit = defaultWeightUnit
			}
			err := logs.InsertGym(ctx, models.GymLog{
				Exercise:   ex.Name,
				Sets:       ex.Sets,
				Reps:       ex.Reps,
				Weight:     ex.Weight,
				WeightUnit: unit,
				Notes:      entry.RawInput,
				Date:       entry.LoggedAt,
			})
			if err != nil {
				return 0, false, err
			}
		}
		return len(p.Exercises), true, nil

	case models.SleepPayload:
		if p.DurationHours <= 0 {
			return 0, false, nil
		}
		return 1, true, logs.InsertSleep(ctx, models.SleepLog{
			Date:          entry.Date,
			DurationHours: p.DurationHours,
			QualityScore:  p.QualityScore,
			Notes:         entry.RawInput,
		})
	}

	// Cardio has no log table; it counts even without a parsed payload.
	return 0, entry.Category == models.CategoryCardio, nil
}
