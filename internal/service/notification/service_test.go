package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config) notification.Service {
	t.Helper()
	clk := clock.NewFake(time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC))
	svc := NewNotificationService(sse.NewHub(), clk, nil, cfg)
	t.Cleanup(svc.Stop)
	return svc
}

func receive(t *testing.T, ch <-chan notification.SSEEvent) notification.SSEEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return notification.SSEEvent{}
	}
}

func TestQueueNotification_DeliversToRecipientAndBroadcast(t *testing.T) {
	svc := newTestService(t, Config{FlushInterval: 10 * time.Millisecond, WorkerCount: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mine, cleanupMine := svc.Subscribe(ctx, "emp-1")
	defer cleanupMine()
	all, cleanupAll := svc.Subscribe(ctx, notification.BroadcastTopic)
	defer cleanupAll()

	err := svc.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        notification.TypeAttendanceClockIn,
		Title:       "Clocked in",
		Message:     "Asha clocked in at 9:15 am",
	})
	require.NoError(t, err)

	got := receive(t, mine)
	assert.Equal(t, string(notification.TypeAttendanceClockIn), got.Event)
	assert.Equal(t, "emp-1", got.Data.RecipientID)
	assert.NotEmpty(t, got.Data.ID)
	assert.Equal(t, time.Date(2024, 3, 11, 4, 0, 0, 0, time.UTC), got.Data.CreatedAt)

	broadcast := receive(t, all)
	assert.Equal(t, got.Data.ID, broadcast.Data.ID)
}

func TestQueueNotification_RejectsUnknownType(t *testing.T) {
	svc := newTestService(t, Config{})

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        "payroll_generated",
	})

	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestQueueNotification_AfterStop(t *testing.T) {
	svc := newTestService(t, Config{})
	svc.Stop()

	err := svc.QueueNotification(context.Background(), notification.CreateNotificationRequest{
		RecipientID: "emp-1",
		Type:        notification.TypeAttendanceClockIn,
	})

	assert.ErrorIs(t, err, notification.ErrServiceStopped)
}

func TestStop_FlushesQueuedNotifications(t *testing.T) {
	svc := newTestService(t, Config{FlushInterval: time.Hour, BatchSize: 50, WorkerCount: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	all, cleanup := svc.Subscribe(ctx, notification.BroadcastTopic)
	defer cleanup()

	require.NoError(t, svc.QueueBulkNotification(ctx, []notification.CreateNotificationRequest{
		{RecipientID: "emp-1", Type: notification.TypeAttendanceAutoClosed},
		{RecipientID: "emp-2", Type: notification.TypeAttendanceAutoClosed},
	}))

	svc.Stop()

	assert.Equal(t, string(notification.TypeAttendanceAutoClosed), receive(t, all).Event)
	assert.Equal(t, string(notification.TypeAttendanceAutoClosed), receive(t, all).Event)
}
