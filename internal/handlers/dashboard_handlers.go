package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

//
// --- Admin Dashboard Stats ---
//

type AdminStats struct {
	UnreadNotifications int   `json:"unreadNotifications"`
	OpenTickets         int   `json:"openTickets"`
	PendingVendors      int   `json:"pendingVendors"`
	ActiveDeliveries    int   `json:"activeDeliveries"`
	AuditFailures       int64 `json:"auditFailures"`
}

// GetAdminStats returns KPI data for the admin dashboard
// GET /v1/admin/dashboard
func (h *Handlers) GetAdminStats(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	// 1. --- Run the counts side by side ---
	stats := AdminStats{AuditFailures: h.Audit.Failures()}
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		stats.UnreadNotifications, err = h.Notifications.UnreadCount(ctx, s.UserID)
		return err
	})
	g.Go(func() (err error) {
		stats.OpenTickets, err = h.Tickets.CountOpen(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingVendors, err = h.Vendors.CountPending(ctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveDeliveries, err = h.Orders.CountActive(ctx)
		return err
	})

	// 2. --- First failure wins ---
	if err := g.Wait(); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
