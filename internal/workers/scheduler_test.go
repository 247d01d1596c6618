package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/life-tracker/internal/queue"
	"go.uber.org/zap/zaptest"
)

func TestNewScheduler_InvalidTime(t *testing.T) {
	t.Parallel()

	for _, at := range []string{"", "25:00", "7pm", "23:60"} {
		if _, err := NewScheduler(&mockJobQueue{}, at, nil, nil); err == nil {
			t.Errorf("Expected error for %q", at)
		}
	}
}

func TestScheduler_NextRun(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(&mockJobQueue{}, "23:55", time.UTC, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "earlier the same day",
			from: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
			want: time.Date(2025, 6, 1, 23, 55, 0, 0, time.UTC),
		},
		{
			name: "exactly at run time",
			from: time.Date(2025, 6, 1, 23, 55, 0, 0, time.UTC),
			want: time.Date(2025, 6, 2, 23, 55, 0, 0, time.UTC),
		},
		{
			name: "after run time",
			from: time.Date(2025, 6, 1, 23, 58, 0, 0, time.UTC),
			want: time.Date(2025, 6, 2, 23, 55, 0, 0, time.UTC),
		},
		{
			name: "month rollover",
			from: time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC),
			want: time.Date(2025, 7, 1, 23, 55, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := s.NextRun(tt.from); !got.Equal(tt.want) {
				t.Errorf("NextRun(%v) = %v, want %v", tt.from, got, tt.want)
			}
		})
	}
}

func TestScheduler_NightlyRecompute(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{}
	s, err := NewScheduler(q, "23:55", time.UTC, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	runAt := time.Date(2025, 6, 1, 23, 55, 0, 0, time.UTC)

	job, err := s.NightlyRecompute(context.Background(), runAt)
	if err != nil {
		t.Fatalf("NightlyRecompute: %v", err)
	}

	jobs := q.jobs()
	if len(jobs) != 1 || jobs[0] != job {
		t.Fatalf("Expected the returned job to be enqueued once, got %d jobs", len(jobs))
	}
	if job.Type != queue.JobTypeRecomputeProgress || job.GoalID != nil {
		t.Errorf("Expected a full recompute job, got %+v", job)
	}
	if job.Date != "2025-06-01" {
		t.Errorf("Expected date 2025-06-01, got %s", job.Date)
	}
	if job.NotBefore != nil {
		t.Errorf("Expected a job due immediately, got NotBefore %v", job.NotBefore)
	}
	if job.NotAfter == nil || !job.NotAfter.Equal(runAt.Add(24*time.Hour)) {
		t.Errorf("Expected NotAfter a day after the run, got %v", job.NotAfter)
	}
}

func TestScheduler_NightlyRecompute_EnqueueError(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{enqueueFunc: func(context.Context, *queue.Job) error {
		return errors.New("broker down")
	}}
	s, err := NewScheduler(q, "06:00", time.UTC, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	if _, err := s.NightlyRecompute(context.Background(), time.Now()); err == nil {
		t.Error("Expected enqueue error")
	}
}

func TestScheduler_Start_EnqueuesDueJobAfterWaiting(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{}
	s, err := NewScheduler(q, "23:55", time.UTC, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var waits []time.Duration
	s.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		if len(waits) > 1 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(waits) != 2 || waits[0] <= 0 || waits[0] > 24*time.Hour {
		t.Errorf("Expected a wait of up to a day before each run, got %v", waits)
	}

	jobs := q.jobs()
	if len(jobs) != 1 {
		t.Fatalf("Expected one job after the first run, got %d", len(jobs))
	}
	if jobs[0].NotBefore != nil || !jobs[0].ShouldProcess() {
		t.Errorf("Expected the enqueued job to be due now, got %+v", jobs[0])
	}
}

func TestScheduler_Start_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	q := &mockJobQueue{}
	s, err := NewScheduler(q, "23:55", time.UTC, nil)
	if err != nil {
		t.Fatalf("NewScheduler: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(q.jobs()) != 0 {
		t.Errorf("Expected nothing enqueued after cancel, got %d", len(q.jobs()))
	}
}
