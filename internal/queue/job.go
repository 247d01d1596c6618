package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeCompileDay compiles the pending entries of one date
	JobTypeCompileDay JobType = "compile_day"
	// JobTypeRecomputeProgress recomputes progress for one goal, or all top-level goals when GoalID is nil
	JobTypeRecomputeProgress JobType = "recompute_progress"
)

// DateLayout is the wire format of Job.Date
const DateLayout = "2006-01-02"

// DefaultMaxRetries is the retry budget of a new job
const DefaultMaxRetries = 3

// Job represents a background job
type Job struct {
	ID         uuid.UUID  `json:"id"`
	Type       JobType    `json:"type"`
	Date       string     `json:"date"`
	GoalID     *uuid.UUID `json:"goal_id,omitempty"`
	NotBefore  *time.Time `json:"not_before,omitempty"`
	NotAfter   *time.Time `json:"not_after,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RetryCount int        `json:"retry_count"`
	MaxRetries int        `json:"max_retries"`
}

func newJob(jobType JobType, date time.Time) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Date:       date.Format(DateLayout),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// NewCompileDayJob creates a job compiling the pending entries of date
func NewCompileDayJob(date time.Time) *Job {
	return newJob(JobTypeCompileDay, date)
}

// NewRecomputeProgressJob creates a progress recompute job. A nil goalID recomputes every top-level goal.
func NewRecomputeProgressJob(date time.Time, goalID *uuid.UUID) *Job {
	job := newJob(JobTypeRecomputeProgress, date)
	job.GoalID = goalID
	return job
}

// ParseDate returns the job date in loc
func (j *Job) ParseDate(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, j.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid job date %q: %w", j.Date, err)
	}
	return d, nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	return j.NotAfter != nil && time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
