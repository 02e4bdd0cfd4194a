package models

// NotificationType classifies a user-visible notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a transient user-visible message. IDs come from a
// monotonic counter and are unique for the process lifetime.
type Notification struct {
	ID      int64            `json:"id"`
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}
