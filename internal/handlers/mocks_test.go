package handlers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/benvon/life-tracker/internal/compiler"
	"github.com/benvon/life-tracker/internal/ingest"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/google/uuid"
)

type mockPendingService struct {
	ingestFunc func(ctx context.Context, req ingest.Request) ([]*models.PendingLog, error)
	listFunc   func(ctx context.Context, date time.Time) (map[models.Category][]*models.PendingLog, error)
	updateFunc func(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*models.PendingLog, error)
	deleteFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *mockPendingService) Ingest(ctx context.Context, req ingest.Request) ([]*models.PendingLog, error) {
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, req)
	}
	return nil, nil
}

func (m *mockPendingService) List(ctx context.Context, date time.Time) (map[models.Category][]*models.PendingLog, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, date)
	}
	return map[models.Category][]*models.PendingLog{}, nil
}

func (m *mockPendingService) UpdateParsedData(ctx context.Context, id uuid.UUID, raw json.RawMessage) (*models.PendingLog, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, raw)
	}
	return nil, nil
}

func (m *mockPendingService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockDayCompiler struct {
	compileFunc func(ctx context.Context, date time.Time) (*compiler.Result, error)
	pendingFunc func(ctx context.Context, date time.Time) (int, error)
}

func (m *mockDayCompiler) PendingCount(ctx context.Context, date time.Time) (int, error) {
	if m.pendingFunc != nil {
		return m.pendingFunc(ctx, date)
	}
	return 1, nil
}

func (m *mockDayCompiler) CompileDay(ctx context.Context, date time.Time) (*compiler.Result, error) {
	if m.compileFunc != nil {
		return m.compileFunc(ctx, date)
	}
	return &compiler.Result{Date: date}, nil
}

type mockProgressService struct {
	updateGoalFunc func(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error)
	updateAllFunc  func(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error)
	historyFunc    func(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error)
	weeklyFunc     func(ctx context.Context, goalID uuid.UUID, start, end time.Time) (*progress.WeeklySummary, error)
}

func (m *mockProgressService) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error) {
	if m.updateGoalFunc != nil {
		return m.updateGoalFunc(ctx, goalID, date)
	}
	return nil, nil
}

func (m *mockProgressService) UpdateAllGoalsProgress(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error) {
	if m.updateAllFunc != nil {
		return m.updateAllFunc(ctx, date)
	}
	return nil, nil
}

func (m *mockProgressService) History(ctx context.Context, goalID uuid.UUID, start, end *time.Time) ([]*models.ProgressHistory, error) {
	if m.historyFunc != nil {
		return m.historyFunc(ctx, goalID, start, end)
	}
	return nil, nil
}

func (m *mockProgressService) WeeklyProgress(ctx context.Context, goalID uuid.UUID, start, end time.Time) (*progress.WeeklySummary, error) {
	if m.weeklyFunc != nil {
		return m.weeklyFunc(ctx, goalID, start, end)
	}
	return nil, nil
}

type mockChecklists struct {
	upsertFunc func(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error)
}

func (m *mockChecklists) UpsertCompletion(ctx context.Context, itemID uuid.UUID, date time.Time, completed bool, notes *string) (*models.ChecklistCompletion, error) {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, itemID, date, completed, notes)
	}
	return &models.ChecklistCompletion{ChecklistItemID: itemID, Date: date, IsCompleted: completed, Notes: notes}, nil
}

type mockMilestones struct {
	setItemFunc func(ctx context.Context, itemID uuid.UUID, completed bool) (*models.Milestone, error)
}

func (m *mockMilestones) SetChecklistItemCompleted(ctx context.Context, itemID uuid.UUID, completed bool) (*models.Milestone, error) {
	if m.setItemFunc != nil {
		return m.setItemFunc(ctx, itemID, completed)
	}
	return &models.Milestone{}, nil
}

type mockJobs struct {
	mu          sync.Mutex
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	enqueued    []*queue.Job
}

func (m *mockJobs) Enqueue(ctx context.Context, job *queue.Job) error {
	if m.enqueueFunc != nil {
		if err := m.enqueueFunc(ctx, job); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobs) jobs() []*queue.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*queue.Job(nil), m.enqueued...)
}

var (
	_ PendingService     = (*mockPendingService)(nil)
	_ DayCompiler        = (*mockDayCompiler)(nil)
	_ ProgressService    = (*mockProgressService)(nil)
	_ ChecklistCompleter = (*mockChecklists)(nil)
	_ JobEnqueuer        = (*mockJobs)(nil)
)

// envelope is the decoded response body of every API route
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}
