package queue

import (
	"context"
	"time"
)

// MessageInterface is a delivered job that must be settled exactly once
type MessageInterface interface {
	Ack() error
	Nack(requeue bool) error
	GetJob() *Job
}

// Enqueuer publishes jobs. Jobs with a future NotBefore are held until then.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *Job) error
}

// JobQueue is the broker surface used by the worker binary
type JobQueue interface {
	Enqueuer

	// Consume delivers jobs until ctx is cancelled or the broker closes the channel.
	// At most prefetchCount deliveries are unsettled at once.
	Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error)

	Close() error
	HealthCheck(ctx context.Context) error
}

// DLQPurger removes dead-lettered jobs older than retention and reports how many it removed
type DLQPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int, error)
}
