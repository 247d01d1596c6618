package database

import (
	"context"
	"time"

	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

// GoalRepositoryInterface defines the goal reads and writes used by the progress engine
// This interface enables better testability by allowing mock implementations
type GoalRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	ListContributions(ctx context.Context, parentID uuid.UUID) ([]models.Contribution, error)
	ListTopLevelActive(ctx context.Context) ([]*models.Goal, error)
	UpdateProgressPercentage(ctx context.Context, id uuid.UUID, percentage float64) error
}

// MilestoneRepositoryInterface defines the milestone reads used by the progress engine
type MilestoneRepositoryInterface interface {
	ListIncomplete(ctx context.Context, goalID uuid.UUID) ([]*models.Milestone, error)
	ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneChecklistItem, error)
}

// ChecklistRepositoryInterface defines daily checklist operations
type ChecklistRepositoryInterface interface {
	ListForDate(ctx context.Context, goalID uuid.UUID, date time.Time) ([]models.ChecklistItemStatus, error)
	UpsertCompletion(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error)
}

// MetricRepositoryInterface defines the daily metric aggregate read
type MetricRepositoryInterface interface {
	DailyTotal(ctx context.Context, kind models.HealthMetric, date time.Time) (float64, error)
}

// ProgressHistoryRepositoryInterface defines progress history operations
type ProgressHistoryRepositoryInterface interface {
	Upsert(ctx context.Context, h *models.ProgressHistory) error
	Range(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error)
}

// RatelimitConfigRepositoryInterface defines the rate limit config operations used by the reloader
type RatelimitConfigRepositoryInterface interface {
	Get(ctx context.Context, key string) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ GoalRepositoryInterface            = (*GoalRepository)(nil)
	_ MilestoneRepositoryInterface       = (*MilestoneRepository)(nil)
	_ ChecklistRepositoryInterface       = (*ChecklistRepository)(nil)
	_ MetricRepositoryInterface          = (*MetricRepository)(nil)
	_ ProgressHistoryRepositoryInterface = (*ProgressHistoryRepository)(nil)
	_ RatelimitConfigRepositoryInterface = (*RatelimitConfigRepository)(nil)
)
