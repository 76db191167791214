package models

import (
	"fmt"
	"time"
)

// ActionType is the fixed vocabulary of audited admin actions. Free text is
// never written to activity_logs.action_type.
type ActionType string

const (
	ActionLogin               ActionType = "login"
	ActionNotificationCreated ActionType = "notification_created"
	ActionNotificationRead    ActionType = "notification_read"
	ActionTicketCreated       ActionType = "ticket_created"
	ActionTicketStatusChanged ActionType = "ticket_status_changed"
	ActionTicketAssigned      ActionType = "ticket_assigned"
	ActionSettingUpdated      ActionType = "setting_updated"
	ActionUserDeactivated     ActionType = "user_deactivated"
	ActionVendorApproved      ActionType = "vendor_approved"
	ActionVendorRejected      ActionType = "vendor_rejected"
	ActionOrderStatusChanged  ActionType = "order_status_changed"
	ActionOrderRefunded       ActionType = "order_refunded"
)

type TargetType string

const (
	TargetUser         TargetType = "user"
	TargetNotification TargetType = "notification"
	TargetTicket       TargetType = "ticket"
	TargetSetting      TargetType = "setting"
	TargetVendor       TargetType = "vendor"
	TargetOrder        TargetType = "order"
)

var actionTypeNames = map[ActionType]string{
	ActionLogin:               "Signed in",
	ActionNotificationCreated: "Created notification",
	ActionNotificationRead:    "Read notification",
	ActionTicketCreated:       "Opened ticket",
	ActionTicketStatusChanged: "Changed ticket status",
	ActionTicketAssigned:      "Assigned ticket",
	ActionSettingUpdated:      "Updated setting",
	ActionUserDeactivated:     "Deactivated user",
	ActionVendorApproved:      "Approved vendor",
	ActionVendorRejected:      "Rejected vendor",
	ActionOrderStatusChanged:  "Changed order status",
	ActionOrderRefunded:       "Refunded order",
}

var targetTypeNames = map[TargetType]string{
	TargetUser:         "User",
	TargetNotification: "Notification",
	TargetTicket:       "Support Ticket",
	TargetSetting:      "System Setting",
	TargetVendor:       "Vendor",
	TargetOrder:        "Order",
}

func (a ActionType) Valid() bool { _, ok := actionTypeNames[a]; return ok }
func (t TargetType) Valid() bool { _, ok := targetTypeNames[t]; return ok }

func (a ActionType) DisplayName() string { return actionTypeNames[a] }
func (t TargetType) DisplayName() string { return targetTypeNames[t] }

func ActionTypes() []ActionType {
	out := make([]ActionType, 0, len(actionTypeNames))
	for a := range actionTypeNames {
		out = append(out, a)
	}
	return out
}

func TargetTypes() []TargetType {
	out := make([]TargetType, 0, len(targetTypeNames))
	for t := range targetTypeNames {
		out = append(out, t)
	}
	return out
}

// ActivityLog is the model for the append-only 'activity_logs' table.
type ActivityLog struct {
	ID         int64          `json:"id" db:"id"`
	ActorID    int64          `json:"actorId" db:"actor_id"`
	ActionType ActionType     `json:"actionType" db:"action_type"`
	TargetType TargetType     `json:"targetType" db:"target_type"`
	TargetID   string         `json:"targetId" db:"target_id"`
	Details    map[string]any `json:"details,omitempty" db:"details"`
	IPAddress  string         `json:"ipAddress,omitempty" db:"ip_address"`
	CreatedAt  time.Time      `json:"createdAt" db:"created_at"`
}

// Describe renders the entry for the activity feed, e.g.
// "Approved vendor (Vendor #12)".
func (l ActivityLog) Describe() string {
	action := l.ActionType.DisplayName()
	if action == "" {
		action = string(l.ActionType)
	}
	target := l.TargetType.DisplayName()
	if target == "" {
		target = string(l.TargetType)
	}
	return fmt.Sprintf("%s (%s #%s)", action, target, l.TargetID)
}
