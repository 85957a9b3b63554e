package notification

import "errors"

// Notification domain errors
var (
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrQueueFull               = errors.New("notification queue is full")
	ErrServiceStopped          = errors.New("notification service is stopped")
)
