package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 1 second
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	hub    *sse.Hub
	clock  clock.Clock
	logger *slog.Logger
	config Config

	queue   chan notification.CreateNotificationRequest
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(hub *sse.Hub, clk clock.Clock, logger *slog.Logger, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &service{
		hub:    hub,
		clock:  clk,
		logger: logger.With("component", "notification"),
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.logger.Info("notification service started",
		"workers", cfg.WorkerCount,
		"batch_size", cfg.BatchSize,
		"flush_interval", cfg.FlushInterval.String(),
	)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		for _, req := range batch {
			s.deliver(s.build(req))
		}
		s.logger.Debug("notifications delivered", "worker", id, "count", len(batch))

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (s *service) build(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:          uuid.New().String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   s.clock.Now(),
	}
}

// deliver pushes to the recipient's subscribers and to the broadcast topic
func (s *service) deliver(n *notification.Notification) {
	event := sse.Event{
		Topic: n.RecipientID,
		Event: string(n.Type),
		Data:  s.toResponse(n),
	}
	s.hub.PublishToMany([]string{n.RecipientID, notification.BroadcastTopic}, event)
}

// QueueNotification queues a notification for async processing. It never blocks:
// a full queue drops the notification and reports ErrQueueFull.
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if s.stopped.Load() {
		return notification.ErrServiceStopped
	}
	if !isKnownType(req.Type) {
		return notification.ErrInvalidNotificationType
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.logger.Warn("notification queue full, dropping",
			"type", string(req.Type),
			"recipient_id", req.RecipientID,
		)
		return notification.ErrQueueFull
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			s.logger.Warn("failed to queue notification", "type", string(req.Type), "error", err)
		}
	}
	return nil
}

func isKnownType(t notification.NotificationType) bool {
	for _, known := range notification.AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// toResponse converts a Notification entity to NotificationResponse
func (s *service) toResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Data:        n.Data,
		CreatedAt:   n.CreatedAt,
	}
}

// Subscribe creates an SSE subscription for a recipient ID or the broadcast topic
func (s *service) Subscribe(ctx context.Context, topic string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(topic)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop gracefully stops the notification service
func (s *service) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("notification service stopped")
}
