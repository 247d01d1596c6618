package progress

import (
	"context"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/google/uuid"
)

type mockGoalRepo struct {
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (*models.Goal, error)
	ListContributionsFunc        func(ctx context.Context, parentID uuid.UUID) ([]models.Contribution, error)
	ListTopLevelActiveFunc       func(ctx context.Context) ([]*models.Goal, error)
	UpdateProgressPercentageFunc func(ctx context.Context, id uuid.UUID, percentage float64) error
}

var _ database.GoalRepositoryInterface = (*mockGoalRepo)(nil)

func (m *mockGoalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Goal, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperr.NotFound("goal", id)
}

func (m *mockGoalRepo) ListContributions(ctx context.Context, parentID uuid.UUID) ([]models.Contribution, error) {
	if m.ListContributionsFunc != nil {
		return m.ListContributionsFunc(ctx, parentID)
	}
	return nil, nil
}

func (m *mockGoalRepo) ListTopLevelActive(ctx context.Context) ([]*models.Goal, error) {
	if m.ListTopLevelActiveFunc != nil {
		return m.ListTopLevelActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockGoalRepo) UpdateProgressPercentage(ctx context.Context, id uuid.UUID, percentage float64) error {
	if m.UpdateProgressPercentageFunc != nil {
		return m.UpdateProgressPercentageFunc(ctx, id, percentage)
	}
	return nil
}

type mockMilestoneRepo struct {
	ListIncompleteFunc     func(ctx context.Context, goalID uuid.UUID) ([]*models.Milestone, error)
	ListChecklistItemsFunc func(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneChecklistItem, error)
}

var _ database.MilestoneRepositoryInterface = (*mockMilestoneRepo)(nil)

func (m *mockMilestoneRepo) ListIncomplete(ctx context.Context, goalID uuid.UUID) ([]*models.Milestone, error) {
	if m.ListIncompleteFunc != nil {
		return m.ListIncompleteFunc(ctx, goalID)
	}
	return nil, nil
}

func (m *mockMilestoneRepo) ListChecklistItems(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneChecklistItem, error) {
	if m.ListChecklistItemsFunc != nil {
		return m.ListChecklistItemsFunc(ctx, milestoneID)
	}
	return nil, nil
}

type mockChecklistRepo struct {
	ListForDateFunc      func(ctx context.Context, goalID uuid.UUID, date time.Time) ([]models.ChecklistItemStatus, error)
	UpsertCompletionFunc func(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error)
}

var _ database.ChecklistRepositoryInterface = (*mockChecklistRepo)(nil)

func (m *mockChecklistRepo) ListForDate(ctx context.Context, goalID uuid.UUID, date time.Time) ([]models.ChecklistItemStatus, error) {
	if m.ListForDateFunc != nil {
		return m.ListForDateFunc(ctx, goalID, date)
	}
	return nil, nil
}

func (m *mockChecklistRepo) UpsertCompletion(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error) {
	if m.UpsertCompletionFunc != nil {
		return m.UpsertCompletionFunc(ctx, itemID, date, completed, notes)
	}
	return nil, nil
}

type mockMetricRepo struct {
	DailyTotalFunc func(ctx context.Context, kind models.HealthMetric, date time.Time) (float64, error)
}

var _ database.MetricRepositoryInterface = (*mockMetricRepo)(nil)

func (m *mockMetricRepo) DailyTotal(ctx context.Context, kind models.HealthMetric, date time.Time) (float64, error) {
	if m.DailyTotalFunc != nil {
		return m.DailyTotalFunc(ctx, kind, date)
	}
	return 0, nil
}

// goalGraph backs the goal mock with in-memory goals and edges
type goalGraph struct {
	goals map[uuid.UUID]*models.Goal
	edges map[uuid.UUID][]models.Contribution
}

func newGoalGraph() *goalGraph {
	return &goalGraph{
		goals: map[uuid.UUID]*models.Goal{},
		edges: map[uuid.UUID][]models.Contribution{},
	}
}

func (g *goalGraph) add(goal models.Goal) uuid.UUID {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	if goal.GoalType == "" {
		goal.GoalType = models.GoalTypeMonthly
	}
	g.goals[goal.ID] = &goal
	return goal.ID
}

func (g *goalGraph) link(parent, child uuid.UUID, weight float64) {
	g.edges[parent] = append(g.edges[parent], models.Contribution{
		ID:               uuid.New(),
		ParentGoalID:     parent,
		ChildGoalID:      child,
		WeightPercentage: weight,
		ContributionType: models.ContributionAutomatic,
	})
}

func (g *goalGraph) repo() *mockGoalRepo {
	return &mockGoalRepo{
		GetByIDFunc: func(_ context.Context, id uuid.UUID) (*models.Goal, error) {
			goal, ok := g.goals[id]
			if !ok {
				return nil, apperr.NotFound("goal", id)
			}
			return goal, nil
		},
		ListContributionsFunc: func(_ context.Context, parentID uuid.UUID) ([]models.Contribution, error) {
			return g.edges[parentID], nil
		},
	}
}
