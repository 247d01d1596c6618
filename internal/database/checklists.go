package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

// ChecklistRepository handles daily checklist items and their per-date completions
type ChecklistRepository struct {
	q Querier
}

// NewChecklistRepository creates a new checklist repository
func NewChecklistRepository(q Querier) *ChecklistRepository {
	return &ChecklistRepository{q: q}
}

// CreateItem inserts a daily checklist item
func (r *ChecklistRepository) CreateItem(ctx context.Context, item *models.DailyChecklistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO daily_checklist_items (id, goal_id, title, weight_percentage, is_recurring)
		VALUES ($1, $2, $3, $4, $5)
	`, item.ID, item.GoalID, item.Title, item.WeightPercentage, item.IsRecurring)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

// ListForDate returns a goal's checklist items joined with their completion on date.
// Items without a completion row read as incomplete.
func (r *ChecklistRepository) ListForDate(ctx context.Context, goalID uuid.UUID, date time.Time) ([]models.ChecklistItemStatus, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT dci.id, dci.goal_id, dci.title, dci.weight_percentage, dci.is_recurring,
			COALESCE(dcc.is_completed, FALSE), dcc.notes
		FROM daily_checklist_items dci
		LEFT JOIN daily_checklist_completions dcc
			ON dci.id = dcc.checklist_item_id AND dcc.date = $1
		WHERE dci.goal_id = $2
		ORDER BY dci.id ASC
	`, dateArg(date), goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist items: %w", err)
	}
	defer rows.Close()

	var items []models.ChecklistItemStatus
	for rows.Next() {
		var item models.ChecklistItemStatus
		var notes sql.NullString
		if err := rows.Scan(
			&item.ID,
			&item.GoalID,
			&item.Title,
			&item.WeightPercentage,
			&item.IsRecurring,
			&item.IsCompleted,
			&notes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		item.CompletionNotes = nullString(notes)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist items: %w", err)
	}
	return items, nil
}

// UpsertCompletion records whether an item was completed on date.
// Existing notes are kept when notes is nil.
func (r *ChecklistRepository) UpsertCompletion(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error) {
	var exists bool
	err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM daily_checklist_items WHERE id = $1)`, itemID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check checklist item: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound("checklist item", itemID)
	}

	var completedAt *string
	if completed {
		ts := timestampArg(time.Now())
		completedAt = &ts
	}

	_, err = r.q.ExecContext(ctx, `
		INSERT INTO daily_checklist_completions (id, checklist_item_id, date, is_completed, notes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (checklist_item_id, date) DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			notes = COALESCE(EXCLUDED.notes, daily_checklist_completions.notes),
			completed_at = EXCLUDED.completed_at
	`, uuid.New(), itemID, dateArg(date), completed, notes, completedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert checklist completion: %w", err)
	}

	c := &models.ChecklistCompletion{}
	var (
		storedNotes sql.NullString
		storedAt    sql.NullTime
	)
	err = r.q.QueryRowContext(ctx, `
		SELECT id, checklist_item_id, date, is_completed, notes, completed_at
		FROM daily_checklist_completions
		WHERE checklist_item_id = $1 AND date = $2
	`, itemID, dateArg(date)).Scan(
		&c.ID,
		&c.ChecklistItemID,
		&c.Date,
		&c.IsCompleted,
		&storedNotes,
		&storedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read checklist completion: %w", err)
	}
	c.Notes = nullString(storedNotes)
	c.CompletedAt = nullTime(storedAt)
	return c, nil
}
