package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

const goalColumns = `id, parent_id, category_id, title, description, goal_type, target_value, target_unit,
	health_metric_type, is_qualitative, star_threshold_2, star_threshold_3, progress_percentage, status,
	created_at, updated_at`

// GoalRepository handles goal and contribution database operations
type GoalRepository struct {
	q Querier
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(q Querier) *GoalRepository {
	return &GoalRepository{q: q}
}

// Create inserts a goal, assigning an ID when none is set
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.Status == "" {
		goal.Status = models.GoalStatusActive
	}
	now := time.Now()
	goal.CreatedAt, goal.UpdatedAt = now, now

	var metric *string
	if goal.HealthMetricType != nil {
		m := string(*goal.HealthMetricType)
		metric = &m
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO goals (id, parent_id, category_id, title, description, goal_type, target_value, target_unit,
			health_metric_type, is_qualitative, star_threshold_2, star_threshold_3, progress_percentage, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`,
		goal.ID,
		uuidArg(goal.ParentID),
		uuidArg(goal.CategoryID),
		goal.Title,
		goal.Description,
		string(goal.GoalType),
		goal.TargetValue,
		goal.TargetUnit,
		metric,
		goal.IsQualitative,
		goal.StarThreshold2,
		goal.StarThreshold3,
		goal.ProgressPercentage,
		string(goal.Status),
		timestampArg(now),
		timestampArg(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// GetByID retrieves a goal by ID
func (r *GoalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("goal", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListTopLevelActive returns active goals without a parent
func (r *GoalRepository) ListTopLevelActive(ctx context.Context) ([]*models.Goal, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM goals
		WHERE parent_id IS NULL AND status = $1
		ORDER BY created_at ASC, id ASC
	`, string(models.GoalStatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query top-level goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// CreateContribution inserts a weighted edge from child into parent
func (r *GoalRepository) CreateContribution(ctx context.Context, c *models.Contribution) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ContributionType == "" {
		c.ContributionType = models.ContributionAutomatic
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO goal_contributions (id, parent_goal_id, child_goal_id, weight_percentage, contribution_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.ID, c.ParentGoalID, c.ChildGoalID, c.WeightPercentage, string(c.ContributionType), c.Notes)
	if err != nil {
		return fmt.Errorf("failed to create contribution: %w", err)
	}
	return nil
}

// ListContributions returns the edges where parentID is the parent, heaviest first
func (r *GoalRepository) ListContributions(ctx context.Context, parentID uuid.UUID) ([]models.Contribution, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, parent_goal_id, child_goal_id, weight_percentage, contribution_type, notes
		FROM goal_contributions
		WHERE parent_goal_id = $1
		ORDER BY weight_percentage DESC, id ASC
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contributions: %w", err)
	}
	defer rows.Close()

	var contributions []models.Contribution
	for rows.Next() {
		var c models.Contribution
		var contributionType string
		var notes sql.NullString
		if err := rows.Scan(&c.ID, &c.ParentGoalID, &c.ChildGoalID, &c.WeightPercentage, &contributionType, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		c.ContributionType = models.ContributionType(contributionType)
		c.Notes = notes.String
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contributions: %w", err)
	}
	return contributions, nil
}

// UpdateProgressPercentage stores the last computed percentage on the goal row
func (r *GoalRepository) UpdateProgressPercentage(ctx context.Context, id uuid.UUID, percentage float64) error {
	result, err := r.q.ExecContext(ctx, `
		UPDATE goals SET progress_percentage = $1, updated_at = $2 WHERE id = $3
	`, percentage, timestampArg(time.Now()), id)
	if err != nil {
		return fmt.Errorf("failed to update goal progress: %w", err)
	}
	return requireRow(result, "goal", id)
}

// Update applies a whitelisted partial update and returns the stored goal
func (r *GoalRepository) Update(ctx context.Context, id uuid.UUID, u models.GoalUpdate) (*models.Goal, error) {
	if u.IsEmpty() {
		return nil, apperr.Validation("no goal fields to update")
	}

	set := newSetBuilder()
	if u.Title != nil {
		set.add("title", *u.Title)
	}
	if u.Description != nil {
		set.add("description", *u.Description)
	}
	if u.GoalType != nil {
		set.add("goal_type", string(*u.GoalType))
	}
	if u.TargetValue != nil {
		set.add("target_value", *u.TargetValue)
	}
	if u.TargetUnit != nil {
		set.add("target_unit", *u.TargetUnit)
	}
	if u.HealthMetricType != nil {
		set.add("health_metric_type", string(*u.HealthMetricType))
	}
	if u.IsQualitative != nil {
		set.add("is_qualitative", *u.IsQualitative)
	}
	if u.StarThreshold2 != nil {
		set.add("star_threshold_2", *u.StarThreshold2)
	}
	if u.StarThreshold3 != nil {
		set.add("star_threshold_3", *u.StarThreshold3)
	}
	if u.Status != nil {
		set.add("status", string(*u.Status))
	}
	set.add("updated_at", timestampArg(time.Now()))

	query, args := set.build("goals", id)
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	if err := requireRow(result, "goal", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a goal; children, contributions, milestones and history cascade
func (r *GoalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return requireRow(result, "goal", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(s rowScanner) (*models.Goal, error) {
	g := &models.Goal{}
	var (
		parentID, categoryID uuid.NullUUID
		description          sql.NullString
		goalType, status     string
		targetValue          sql.NullFloat64
		targetUnit           sql.NullString
		metric               sql.NullString
		t2, t3               sql.NullFloat64
	)
	err := s.Scan(
		&g.ID,
		&parentID,
		&categoryID,
		&g.Title,
		&description,
		&goalType,
		&targetValue,
		&targetUnit,
		&metric,
		&g.IsQualitative,
		&t2,
		&t3,
		&g.ProgressPercentage,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		g.ParentID = &parentID.UUID
	}
	if categoryID.Valid {
		g.CategoryID = &categoryID.UUID
	}
	g.Description = description.String
	g.GoalType = models.GoalType(goalType)
	g.Status = models.GoalStatus(status)
	g.TargetValue = nullFloat(targetValue)
	g.TargetUnit = nullString(targetUnit)
	if metric.Valid && metric.String != "" {
		m := models.HealthMetric(metric.String)
		g.HealthMetricType = &m
	}
	g.StarThreshold2 = nullFloat(t2)
	g.StarThreshold3 = nullFloat(t3)
	return g, nil
}

// setBuilder renders UPDATE statements from a fixed list of column names chosen by the caller.
// Column names never come from request input.
type setBuilder struct {
	columns []string
	args    []any
}

func newSetBuilder() *setBuilder {
	return &setBuilder{}
}

func (b *setBuilder) add(column string, value any) {
	b.columns = append(b.columns, column)
	b.args = append(b.args, value)
}

func (b *setBuilder) build(table string, id uuid.UUID) (string, []any) {
	assignments := make([]string, len(b.columns))
	for i, col := range b.columns {
		assignments[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(assignments, ", "), len(b.columns)+1)
	return query, append(b.args, id)
}

func uuidArg(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func requireRow(result sql.Result, entity string, id any) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(entity, id)
	}
	return nil
}
