package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/compiler"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/benvon/life-tracker/internal/queue"
	"github.com/benvon/life-tracker/internal/services/ai"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DayCompiler compiles one date's pending entries
type DayCompiler interface {
	CompileDay(ctx context.Context, date time.Time) (*compiler.Result, error)
}

// ProgressUpdater recomputes and stores goal progress
type ProgressUpdater interface {
	UpdateGoalProgress(ctx context.Context, goalID uuid.UUID, date time.Time) (*progress.GoalProgress, error)
	UpdateAllGoalsProgress(ctx context.Context, date time.Time) ([]progress.GoalProgressResult, error)
}

// Processor runs compile_day and recompute_progress jobs
type Processor struct {
	compiler DayCompiler
	progress ProgressUpdater
	jobQueue queue.Enqueuer // re-enqueues delayed retries and follow-up recomputes
	location *time.Location
	logger   *zap.Logger
}

// NewProcessor creates a job processor. jobQueue may be nil, in which case failed jobs are
// requeued immediately and the recompute after a compile runs inline.
func NewProcessor(c DayCompiler, p ProgressUpdater, jobQueue queue.Enqueuer, loc *time.Location, logger *zap.Logger) *Processor {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		compiler: c,
		progress: p,
		jobQueue: jobQueue,
		location: loc,
		logger:   logger,
	}
}

// ProcessJob runs the job carried by msg and settles the message
func (p *Processor) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	date, err := job.ParseDate(p.location)
	if err != nil {
		return p.reject(msg, job, err)
	}

	switch job.Type {
	case queue.JobTypeCompileDay:
		err = p.compileDay(ctx, date)
	case queue.JobTypeRecomputeProgress:
		err = p.recompute(ctx, date, job.GoalID)
	default:
		return p.reject(msg, job, fmt.Errorf("unknown job type: %s", job.Type))
	}

	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		p.logger.Info("job_completed",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("date", job.Date),
		)
		return nil
	case errors.Is(err, apperr.ErrPrecondition):
		// Nothing to compile is a normal outcome, not a failure
		p.logger.Info("job_skipped",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("reason", apperr.Message(err)),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil
	case isPermanent(err):
		return p.reject(msg, job, err)
	default:
		return p.handleJobError(ctx, msg, job, err)
	}
}

func (p *Processor) compileDay(ctx context.Context, date time.Time) error {
	if _, err := p.compiler.CompileDay(ctx, date); err != nil {
		return err
	}
	if p.jobQueue != nil {
		err := p.jobQueue.Enqueue(ctx, queue.NewRecomputeProgressJob(date, nil))
		if err == nil {
			return nil
		}
		p.logger.Warn("recompute_enqueue_failed", zap.Time("date", date), zap.Error(err))
	}
	// The compile is committed, so a recompute failure must not retry it
	if _, err := p.progress.UpdateAllGoalsProgress(ctx, date); err != nil {
		p.logger.Error("post_compile_recompute_failed", zap.Time("date", date), zap.Error(err))
	}
	return nil
}

func (p *Processor) recompute(ctx context.Context, date time.Time, goalID *uuid.UUID) error {
	if goalID != nil {
		_, err := p.progress.UpdateGoalProgress(ctx, *goalID, date)
		return err
	}
	_, err := p.progress.UpdateAllGoalsProgress(ctx, date)
	return err
}

// isPermanent reports errors that a retry cannot fix
func isPermanent(err error) bool {
	return errors.Is(err, apperr.ErrValidation) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrCycleDetected)
}

// reject dead-letters the message
func (p *Processor) reject(msg queue.MessageInterface, job *queue.Job, err error) error {
	p.logger.Warn("job_rejected",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		p.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job rejected: %w", err)
}

// handleJobError retries transient failures with backoff and dead-letters the job once its
// retry budget is spent
func (p *Processor) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if !job.CanRetry() {
		p.logger.Error("job_failed_max_retries",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (max retries): %w", err)
	}

	retryDelay := ai.GetRetryDelay(err, job.RetryCount)

	if p.jobQueue != nil {
		notBefore := time.Now().Add(retryDelay)
		delayed := *job
		delayed.NotBefore = &notBefore
		delayed.RetryCount = job.RetryCount + 1

		enqueueErr := p.jobQueue.Enqueue(ctx, &delayed)
		if enqueueErr == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				p.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
			}
			p.logger.Warn("job_retry_scheduled",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)),
				zap.Int("attempt", delayed.RetryCount),
				zap.Duration("delay", retryDelay),
				zap.Error(err),
			)
			return fmt.Errorf("job failed (retry scheduled): %w", err)
		}
		p.logger.Warn("job_retry_enqueue_failed", zap.String("job_id", job.ID.String()), zap.Error(enqueueErr))
	}

	// Without a delayed re-enqueue the broker redelivers right away
	job.IncrementRetry()
	p.logger.Warn("job_requeued",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.Int("attempt", job.RetryCount),
		zap.Error(err),
	)
	if nackErr := msg.Nack(true); nackErr != nil {
		p.logger.Error("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (will retry): %w", err)
}
