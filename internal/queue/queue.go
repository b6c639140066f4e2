package queue

import (
	"context"
	"fmt"

	"github.com/kursadbilgin/emergency-alerts/internal/domain"
)

// AlertsQueue carries one message per recorded call that needs its contacts alerted.
const AlertsQueue = "alerts"

const (
	// queueMaxPriority is the RabbitMQ x-max-priority value for the alerts queue.
	queueMaxPriority int32 = 4
)

// Publisher publishes alert messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg AlertMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg AlertMessage) error

// Consumer consumes alert messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

// DLQName returns the dead-letter queue name for a work queue, e.g. dlq.alerts.
func DLQName(queue string) string {
	return fmt.Sprintf("dlq.%s", queue)
}

// WorkQueueNames returns the queues declared on every channel open.
func WorkQueueNames() []string {
	return []string{AlertsQueue}
}

// PriorityValue maps call urgency to RabbitMQ message priority.
func PriorityValue(urgency domain.Urgency) uint8 {
	switch urgency {
	case domain.UrgencyCritical:
		return 4
	case domain.UrgencyHigh:
		return 3
	case domain.UrgencyMedium:
		return 2
	case domain.UrgencyLow:
		return 1
	default:
		return 0
	}
}
