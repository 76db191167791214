package models

import "time"

type NotificationType string

const (
	NotificationSystem  NotificationType = "system"
	NotificationOrder   NotificationType = "order"
	NotificationTicket  NotificationType = "ticket"
	NotificationVendor  NotificationType = "vendor"
	NotificationPayment NotificationType = "payment"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

var notificationTypes = map[NotificationType]bool{
	NotificationSystem: true, NotificationOrder: true, NotificationTicket: true,
	NotificationVendor: true, NotificationPayment: true,
}

var priorities = map[NotificationPriority]bool{
	PriorityLow: true, PriorityNormal: true, PriorityHigh: true, PriorityUrgent: true,
}

func (t NotificationType) Valid() bool     { return notificationTypes[t] }
func (p NotificationPriority) Valid() bool { return priorities[p] }

// AdminNotification is the model for the 'admin_notifications' table.
// A nil UserID together with IsBroadcast means every admin sees it.
type AdminNotification struct {
	ID          int64                `json:"id" db:"id"`
	UserID      *int64               `json:"userId,omitempty" db:"user_id"`
	Title       string               `json:"title" db:"title"`
	Message     string               `json:"message" db:"message"`
	Type        NotificationType     `json:"type" db:"type"`
	Priority    NotificationPriority `json:"priority" db:"priority"`
	IsRead      bool                 `json:"isRead" db:"is_read"`
	IsBroadcast bool                 `json:"isBroadcast" db:"is_broadcast"`
	Link        *string              `json:"link,omitempty" db:"link"`
	Metadata    map[string]any       `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time            `json:"createdAt" db:"created_at"`
	ReadAt      *time.Time           `json:"readAt,omitempty" db:"read_at"`
}
