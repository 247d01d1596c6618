package database

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
)

// metricQueries maps each metric kind to its aggregate query.
// food_logs.date is a timestamp, so food metrics select the day as a half-open range.
var metricQueries = map[models.HealthMetric]string{
	models.HealthMetricCalories: `SELECT COALESCE(SUM(calories), 0) FROM food_logs WHERE date >= $1 AND date < $2`,
	models.HealthMetricProtein:  `SELECT COALESCE(SUM(protein), 0) FROM food_logs WHERE date >= $1 AND date < $2`,
	models.HealthMetricCarbs:    `SELECT COALESCE(SUM(carbs), 0) FROM food_logs WHERE date >= $1 AND date < $2`,
	models.HealthMetricFats:     `SELECT COALESCE(SUM(fats), 0) FROM food_logs WHERE date >= $1 AND date < $2`,
	models.HealthMetricCaffeine: `SELECT COALESCE(SUM(caffeine_mg), 0) FROM food_logs WHERE date >= $1 AND date < $2`,
	models.HealthMetricWater:    `SELECT COALESCE(SUM(amount_ml), 0) FROM water_logs WHERE date = $1`,
	models.HealthMetricSteps:    `SELECT COALESCE(SUM(total_steps), 0) FROM steps_logs WHERE date = $1`,
	models.HealthMetricSleep:    `SELECT COALESCE(AVG(duration_hours), 0) FROM sleep_logs WHERE date = $1`,
}

// MetricRepository reads daily aggregates from the committed log tables
type MetricRepository struct {
	q Querier
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(q Querier) *MetricRepository {
	return &MetricRepository{q: q}
}

// DailyTotal returns the aggregate of kind on date. A day without rows yields 0.
func (r *MetricRepository) DailyTotal(ctx context.Context, kind models.HealthMetric, date time.Time) (float64, error) {
	query, ok := metricQueries[kind]
	if !ok {
		return 0, apperr.Validation("unknown health metric %q", kind)
	}

	var args []any
	switch kind {
	case models.HealthMetricWater, models.HealthMetricSteps, models.HealthMetricSleep:
		args = []any{dateArg(date)}
	default:
		start := models.TruncateDay(date)
		args = []any{timestampArg(start), timestampArg(start.AddDate(0, 0, 1))}
	}

	var total float64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to aggregate %s: %w", kind, err)
	}
	return total, nil
}
