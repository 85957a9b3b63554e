package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	// SSE subscription to a recipient ID or BroadcastTopic
	Subscribe(ctx context.Context, topic string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
