package handlers

import (
	"context"
	"log/slog"

	"github.com/01moynul/taptoeat-golang/internal/audit"
	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/cart"
	"github.com/01moynul/taptoeat-golang/internal/delivery"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/realtime"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gorilla/websocket"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	Logger   *slog.Logger
	Tokens   *auth.Issuer
	Audit    *audit.Recorder
	Carts    *cart.Store
	Workflow *delivery.Workflow
	Hub      *realtime.Hub
	Upgrader *websocket.Upgrader

	Users         UserRepository
	Menu          MenuRepository
	Orders        OrderRepository
	Notifications NotificationRepository
	Tickets       TicketRepository
	Settings      SettingRepository
	Activity      ActivityRepository
	Vendors       VendorRepository
}

// The repositories below are implemented by the MySQL stores in
// internal/store.

type UserRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.User, int, error)
	Get(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Deactivate(ctx context.Context, actorID, id int64, reason string) (models.User, error)
}

type MenuRepository interface {
	MenuItem(ctx context.Context, id string) (cart.MenuItem, string, error)
}

type OrderRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.DriverOrder, int, error)
	GetOrder(ctx context.Context, id int64) (models.DriverOrder, error)
	Refund(ctx context.Context, actorID, orderID int64, reason string) (models.DriverOrder, error)
	CountActive(ctx context.Context) (int, error)
}

type NotificationRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.AdminNotification, int, error)
	ListFor(ctx context.Context, userID int64, f *store.Filter, p store.Page) ([]models.AdminNotification, int, error)
	GetFor(ctx context.Context, userID, id int64) (models.AdminNotification, error)
	Create(ctx context.Context, actorID int64, in store.NewNotification) (models.AdminNotification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type TicketRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.SupportTicket, int, error)
	Get(ctx context.Context, id int64) (models.SupportTicket, error)
	Create(ctx context.Context, userID int64, in store.NewTicket) (models.SupportTicket, error)
	UpdateStatus(ctx context.Context, actorID, id int64, status models.TicketStatus, notes *string) (models.SupportTicket, error)
	Assign(ctx context.Context, actorID, id, assigneeID int64) (models.SupportTicket, error)
	CountOpen(ctx context.Context) (int, error)
}

type SettingRepository interface {
	List(ctx context.Context, category string, publicOnly bool) ([]models.SystemSetting, error)
	Get(ctx context.Context, key string) (models.SystemSetting, error)
	Update(ctx context.Context, actorID int64, key, value string) (models.SystemSetting, error)
}

type ActivityRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.ActivityLog, int, error)
}

type VendorRepository interface {
	List(ctx context.Context, f *store.Filter, p store.Page) ([]models.Vendor, int, error)
	Approve(ctx context.Context, actorID, id int64) (models.Vendor, error)
	Reject(ctx context.Context, actorID, id int64, reason string) (models.Vendor, error)
	CountPending(ctx context.Context) (int, error)
}
