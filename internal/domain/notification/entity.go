package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeAttendanceClockIn    NotificationType = "attendance_clock_in"
	TypeAttendanceClockOut   NotificationType = "attendance_clock_out"
	TypeAttendanceAutoClosed NotificationType = "attendance_auto_closed"
	TypeAttendanceOTDecision NotificationType = "attendance_ot_decision"
	TypeAttendanceBulkMarked NotificationType = "attendance_bulk_marked"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeAttendanceClockIn,
		TypeAttendanceClockOut,
		TypeAttendanceAutoClosed,
		TypeAttendanceOTDecision,
		TypeAttendanceBulkMarked,
	}
}

// BroadcastTopic receives every attendance notification; managers subscribe to it.
const BroadcastTopic = "attendance"

// Notification represents a dispatched notification
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}
