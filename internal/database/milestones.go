package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

const milestoneColumns = `id, goal_id, title, milestone_type, target_value, target_unit, current_value,
	weight_percentage, is_completed, due_date, display_order, completed_at`

// MilestoneRepository handles milestone and milestone checklist database operations
type MilestoneRepository struct {
	q Querier
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(q Querier) *MilestoneRepository {
	return &MilestoneRepository{q: q}
}

// Create inserts a milestone
func (r *MilestoneRepository) Create(ctx context.Context, m *models.Milestone) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.MilestoneType == "" {
		m.MilestoneType = models.MilestoneTypeQuantitative
	}
	var dueDate *string
	if m.DueDate != nil {
		d := dateArg(*m.DueDate)
		dueDate = &d
	}
	now := timestampArg(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO milestones (id, goal_id, title, milestone_type, target_value, target_unit, current_value,
			weight_percentage, is_completed, due_date, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		m.ID, m.GoalID, m.Title, string(m.MilestoneType), m.TargetValue, m.TargetUnit, m.CurrentValue,
		m.WeightPercentage, m.IsCompleted, dueDate, m.DisplayOrder, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}
	return nil
}

// GetByID retrieves a milestone by ID
func (r *MilestoneRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+milestoneColumns+` FROM milestones WHERE id = $1`, id)
	m, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("milestone", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get milestone: %w", err)
	}
	return m, nil
}

// ListIncomplete returns the milestones of a goal that are not yet completed
func (r *MilestoneRepository) ListIncomplete(ctx context.Context, goalID uuid.UUID) ([]*models.Milestone, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+milestoneColumns+` FROM milestones
		WHERE goal_id = $1 AND is_completed = $2
		ORDER BY display_order ASC, id ASC
	`, goalID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []*models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestones: %w", err)
	}
	return milestones, nil
}

// Update applies a whitelisted partial update and returns the stored milestone
func (r *MilestoneRepository) Update(ctx context.Context, id uuid.UUID, u models.MilestoneUpdate) (*models.Milestone, error) {
	if u.IsEmpty() {
		return nil, apperr.Validation("no milestone fields to update")
	}

	set := newSetBuilder()
	if u.Title != nil {
		set.add("title", *u.Title)
	}
	if u.TargetValue != nil {
		set.add("target_value", *u.TargetValue)
	}
	if u.TargetUnit != nil {
		set.add("target_unit", *u.TargetUnit)
	}
	if u.CurrentValue != nil {
		set.add("current_value", *u.CurrentValue)
	}
	if u.WeightPercentage != nil {
		set.add("weight_percentage", *u.WeightPercentage)
	}
	if u.IsCompleted != nil {
		set.add("is_completed", *u.IsCompleted)
		if *u.IsCompleted {
			set.add("completed_at", timestampArg(time.Now()))
		} else {
			set.add("completed_at", nil)
		}
	}
	if u.DueDate != nil {
		set.add("due_date", dateArg(*u.DueDate))
	}
	if u.DisplayOrder != nil {
		set.add("display_order", *u.DisplayOrder)
	}
	set.add("updated_at", timestampArg(time.Now()))

	query, args := set.build("milestones", id)
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}
	if err := requireRow(result, "milestone", id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// CreateChecklistItem inserts a milestone checklist item
func (r *MilestoneRepository) CreateChecklistItem(ctx context.Context, item *models.MilestoneChecklistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO milestone_checklist_items (id, milestone_id, title, is_completed, display_order)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.MilestoneID, item.Title, item.IsCompleted, item.DisplayOrder)
	if err != nil {
		return fmt.Errorf("failed to create milestone checklist item: %w", err)
	}
	return nil
}

// ListChecklistItems returns the checklist items of a milestone in display order
func (r *MilestoneRepository) ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneChecklistItem, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, milestone_id, title, is_completed, display_order
		FROM milestone_checklist_items
		WHERE milestone_id = $1
		ORDER BY display_order ASC, id ASC
	`, milestoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestone checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.MilestoneChecklistItem
	for rows.Next() {
		var item models.MilestoneChecklistItem
		if err := rows.Scan(&item.ID, &item.MilestoneID, &item.Title, &item.IsCompleted, &item.DisplayOrder); err != nil {
			return nil, fmt.Errorf("failed to scan milestone checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating milestone checklist items: %w", err)
	}
	return items, nil
}

// SetChecklistItemCompleted toggles one checklist item. When every item of the milestone is
// then complete the milestone itself is marked completed; unchecking an item reopens it.
func (r *MilestoneRepository) SetChecklistItemCompleted(ctx context.Context, itemID uuid.UUID, completed bool) (*models.Milestone, error) {
	var milestoneID uuid.UUID
	err := r.q.QueryRowContext(ctx, `
		UPDATE milestone_checklist_items SET is_completed = $1 WHERE id = $2
		RETURNING milestone_id
	`, completed, itemID).Scan(&milestoneID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("milestone checklist item", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update milestone checklist item: %w", err)
	}

	var total, done int
	err = r.q.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_completed THEN 1 ELSE 0 END), 0)
		FROM milestone_checklist_items WHERE milestone_id = $1
	`, milestoneID).Scan(&total, &done)
	if err != nil {
		return nil, fmt.Errorf("failed to count milestone checklist items: %w", err)
	}

	allDone := total > 0 && done == total
	return r.Update(ctx, milestoneID, models.MilestoneUpdate{IsCompleted: &allDone})
}

func scanMilestone(s rowScanner) (*models.Milestone, error) {
	m := &models.Milestone{}
	var (
		milestoneType string
		targetValue   sql.NullFloat64
		targetUnit    sql.NullString
		dueDate       sql.NullTime
		completedAt   sql.NullTime
	)
	err := s.Scan(
		&m.ID,
		&m.GoalID,
		&m.Title,
		&milestoneType,
		&targetValue,
		&targetUnit,
		&m.CurrentValue,
		&m.WeightPercentage,
		&m.IsCompleted,
		&dueDate,
		&m.DisplayOrder,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	m.MilestoneType = models.MilestoneType(milestoneType)
	m.TargetValue = nullFloat(targetValue)
	m.TargetUnit = nullString(targetUnit)
	m.DueDate = nullTime(dueDate)
	m.CompletedAt = nullTime(completedAt)
	return m, nil
}
