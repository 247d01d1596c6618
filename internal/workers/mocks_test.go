package workers

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/life-tracker/internal/compiler"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/google/uuid"
)

type mockCompiler struct {
	compileDayFunc func(ctx context.Context, date time.Time) (*compiler.Result, error)
}

var _ DayCompiler = (*mockCompiler)(nil)

func (m *mockCompiler) CompileDay(ctx context.Context, date time.Time) (*compiler.Result, error) {
	if m.compileDayFunc != nil {
		return m.compileDayFunc(ctx, date)
	}
	return &compiler.Result{Date: date}, nil
}

type mockProgress struct {
	updateGoalFunc func(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error)
	updateAllFunc  func(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error)
}

var _ ProgressUpdater = (*mockProgress)(nil)

func (m *mockProgress) UpdateGoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error) {
	if m.updateGoalFunc != nil {
		return m.updateGoalFunc(ctx, goalID, date)
	}
	return &progress.GoalProgress{}, nil
}

func (m *mockProgress) UpdateAllGoalsProgress(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error) {
	if m.updateAllFunc != nil {
		return m.updateAllFunc(ctx, date)
	}
	return nil, nil
}

type mockJobQueue struct {
	mu          sync.Mutex
	enqueueFunc func(ctx context.Context, job *queue.Job) error
	enqueued    []*queue.Job
}

var _ queue.JobQueue = (*mockJobQueue)(nil)

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
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

func (m *mockJobQueue) Consume(context.Context, int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, nil
}

func (m *mockJobQueue) Close() error { return nil }

func (m *mockJobQueue) HealthCheck(context.Context) error { return nil }

func (m *mockJobQueue) jobs() []*queue.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*queue.Job(nil), m.enqueued...)
}

// mockMessage records how the processor settled it
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

var _ queue.MessageInterface = (*mockMessage)(nil)

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job { return m.job }
