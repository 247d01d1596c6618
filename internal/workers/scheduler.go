package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/queue"
	"go.uber.org/zap"
)

// Scheduler enqueues the nightly progress recompute once its run time arrives
type Scheduler struct {
	jobQueue queue.Enqueuer
	hour     int
	minute   int
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewScheduler creates a scheduler firing daily at at (HH:MM) in loc
func NewScheduler(jobQueue queue.Enqueuer, at string, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid nightly recompute time %q: %w", at, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		jobQueue: jobQueue,
		hour:     t.Hour(),
		minute:   t.Minute(),
		location: loc,
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}, nil
}

// NextRun returns the first scheduled time strictly after from
func (s *Scheduler) NextRun(from time.Time) time.Time {
	from = from.In(s.location)
	next := time.Date(from.Year(), from.Month(), from.Day(), s.hour, s.minute, 0, 0, s.location)
	if !next.After(from) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NightlyRecompute enqueues a recompute of every top-level goal for runAt's date.
// The job is due immediately and expires a day after runAt.
func (s *Scheduler) NightlyRecompute(ctx context.Context, runAt time.Time) (*queue.Job, error) {
	runAt = runAt.In(s.location)
	date := time.Date(runAt.Year(), runAt.Month(), runAt.Day(), 0, 0, 0, 0, s.location)

	job := queue.NewRecomputeProgressJob(date, nil)
	notAfter := runAt.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue nightly recompute: %w", err)
	}

	s.logger.Info("enqueued_nightly_recompute",
		zap.String("job_id", job.ID.String()),
		zap.String("date", job.Date),
		zap.Time("run_at", runAt),
	)
	return job, nil
}

// Start waits for each nightly run time and then enqueues that night's recompute,
// until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	for {
		runAt := s.NextRun(s.now())
		if err := s.sleep(ctx, runAt.Sub(s.now())); err != nil {
			return err
		}
		if _, err := s.NightlyRecompute(ctx, runAt); err != nil {
			s.logger.Error("nightly_recompute_enqueue_failed", zap.Error(err))
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
