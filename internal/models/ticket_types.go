package models

import "time"

type TicketStatus string

const (
	TicketOpen            TicketStatus = "open"
	TicketInProgress      TicketStatus = "in_progress"
	TicketWaitingCustomer TicketStatus = "waiting_customer"
	TicketResolved        TicketStatus = "resolved"
	TicketClosed          TicketStatus = "closed"
)

// Resolves reports whether moving into s stamps resolved_at.
func (s TicketStatus) Resolves() bool {
	return s == TicketResolved || s == TicketClosed
}

type TicketCategory string

const (
	TicketCategoryOrder     TicketCategory = "order"
	TicketCategoryPayment   TicketCategory = "payment"
	TicketCategoryDelivery  TicketCategory = "delivery"
	TicketCategoryAccount   TicketCategory = "account"
	TicketCategoryTechnical TicketCategory = "technical"
	TicketCategoryOther     TicketCategory = "other"
)

var ticketStatusNames = map[TicketStatus]string{
	TicketOpen:            "Open",
	TicketInProgress:      "In Progress",
	TicketWaitingCustomer: "Waiting for Customer",
	TicketResolved:        "Resolved",
	TicketClosed:          "Closed",
}

var ticketCategoryNames = map[TicketCategory]string{
	TicketCategoryOrder:     "Order Issue",
	TicketCategoryPayment:   "Payment",
	TicketCategoryDelivery:  "Delivery",
	TicketCategoryAccount:   "Account",
	TicketCategoryTechnical: "Technical",
	TicketCategoryOther:     "Other",
}

func (s TicketStatus) Valid() bool   { _, ok := ticketStatusNames[s]; return ok }
func (c TicketCategory) Valid() bool { _, ok := ticketCategoryNames[c]; return ok }

func (s TicketStatus) DisplayName() string   { return ticketStatusNames[s] }
func (c TicketCategory) DisplayName() string { return ticketCategoryNames[c] }

// SupportTicket is the model for the 'support_tickets' table.
type SupportTicket struct {
	ID              int64                `json:"id" db:"id"`
	TicketNumber    string               `json:"ticketNumber" db:"ticket_number"`
	UserID          int64                `json:"userId" db:"user_id"`
	Subject         string               `json:"subject" db:"subject"`
	Description     string               `json:"description" db:"description"`
	Category        TicketCategory       `json:"category" db:"category"`
	Priority        NotificationPriority `json:"priority" db:"priority"`
	Status          TicketStatus         `json:"status" db:"status"`
	AssignedTo      *int64               `json:"assignedTo,omitempty" db:"assigned_to"`
	ResolutionNotes *string              `json:"resolutionNotes,omitempty" db:"resolution_notes"`
	ResolvedAt      *time.Time           `json:"resolvedAt,omitempty" db:"resolved_at"`
	Metadata        map[string]any       `json:"metadata,omitempty" db:"metadata"`
	CreatedAt       time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time            `json:"updatedAt" db:"updated_at"`
}
