package domain

import "time"

// NotificationType labels the event that produced a notification.
type NotificationType string

const (
	NotificationBookingCreated     NotificationType = "BOOKING_CREATED"
	NotificationLowCapacityWarning NotificationType = "LOW_CAPACITY_WARNING"
)

// Notification is a single item produced by the notification service and
// delivered to a subject's live sessions. The gateway reads these rows but
// never writes them.
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	UserID    int64            `json:"user_id"`
	Seen      bool             `json:"seen"`
	CreatedAt time.Time        `json:"created_at"`
}
