package queue

import (
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNoChannel is returned when a message is settled without the channel it arrived on
var ErrNoChannel = errors.New("message has no delivery channel")

// Message is a decoded job together with the delivery it must be settled against
type Message struct {
	Job         *Job
	DeliveryTag uint64
	// Redelivered is set by the broker when an earlier delivery was requeued or lost
	Redelivered bool
	Channel     *amqp.Channel
}

var _ MessageInterface = (*Message)(nil)

// Ack settles the delivery as processed
func (m *Message) Ack() error {
	if m.Channel == nil {
		return ErrNoChannel
	}
	return m.Channel.Ack(m.DeliveryTag, false)
}

// Nack settles the delivery as failed. Without requeue the broker dead-letters it.
func (m *Message) Nack(requeue bool) error {
	if m.Channel == nil {
		return ErrNoChannel
	}
	return m.Channel.Nack(m.DeliveryTag, false, requeue)
}

// GetJob returns the decoded job
func (m *Message) GetJob() *Job {
	return m.Job
}
