// Package realtime pushes table change events to websocket subscribers.
package realtime

import "github.com/01moynul/taptoeat-golang/internal/models"

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventCounts EventType = "counts"
)

// Table names a subscribable stream.
type Table string

const (
	TableNotifications Table = "notifications"
	TableTickets       Table = "tickets"
	TableActivityLogs  Table = "activity_logs"
	TableOrders        Table = "orders"
	TableCounts        Table = "counts"
)

var tables = map[Table]bool{
	TableNotifications: true,
	TableTickets:       true,
	TableActivityLogs:  true,
	TableOrders:        true,
	TableCounts:        true,
}

func (t Table) Valid() bool { return tables[t] }

// Event is one change. UserIDs lists the users the row belongs to; a
// Broadcast event goes to everyone subscribed to the table, or only to the
// given Roles when set. Admins receive every event of the tables they
// subscribe to.
type Event struct {
	Table     Table         `json:"table"`
	Type      EventType     `json:"type"`
	UserIDs   []int64       `json:"-"`
	Broadcast bool          `json:"broadcast"`
	Roles     []models.Role `json:"-"`
	Record    any           `json:"record,omitempty"`
}
