package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Notification Handlers ---
//

type notificationQuery struct {
	listQuery
	Type     models.NotificationType     `form:"type"`
	Priority models.NotificationPriority `form:"priority"`
	Unread   bool                        `form:"unread"`
}

func (q notificationQuery) apply(f *store.Filter) error {
	if q.Type != "" {
		f.Eq("type", q.Type)
	}
	if q.Priority != "" {
		f.Eq("priority", q.Priority)
	}
	if q.Unread {
		f.Eq("is_read", 0)
	}
	return q.dateRange(f)
}

// GetMyNotifications is the handler for GET /v1/notifications
// It returns the caller's own notifications plus broadcasts, newest first.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	// 1. --- Get User ID ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Build Filter ---
	var q notificationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := store.NewFilter(store.NotificationColumns...)
	if err := q.apply(f); err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Query Database ---
	list, total, err := h.Notifications.ListFor(c.Request.Context(), s.UserID, f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 4. --- Send Success Response ---
	page(c, "notifications", list, total, q.Page)
}

// GetUnreadCount is the handler for GET /v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	n, err := h.Notifications.UnreadCount(c.Request.Context(), s.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unreadCount": n})
}

// GetNotification is the handler for GET /v1/notifications/:id
func (h *Handlers) GetNotification(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, err := h.Notifications.GetFor(c.Request.Context(), s.UserID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	// Someone else's notification looks the same as a missing one.
	if !n.IsBroadcast && (n.UserID == nil || *n.UserID != s.UserID) && !s.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// MarkNotificationAsRead is the handler for PATCH /v1/notifications/:id/read
func (h *Handlers) MarkNotificationAsRead(c *gin.Context) {
	// 1. --- Get IDs ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Execute Update ---
	if err := h.Notifications.MarkRead(c.Request.Context(), s.UserID, id); err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsAsRead is the handler for PATCH /v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsAsRead(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), s.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read", "updated": n})
}

// GetAllNotifications is the handler for GET /v1/admin/notifications
func (h *Handlers) GetAllNotifications(c *gin.Context) {
	var q struct {
		notificationQuery
		UserID      *int64 `form:"userId"`
		IsBroadcast *bool  `form:"isBroadcast"`
		IsRead      *bool  `form:"isRead"`
		Search      string `form:"search"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.NotificationColumns...)
	if q.UserID != nil {
		f.Eq("user_id", *q.UserID)
	}
	if q.IsBroadcast != nil {
		f.Eq("is_broadcast", boolFlag(*q.IsBroadcast))
	}
	if q.IsRead != nil {
		f.Eq("is_read", boolFlag(*q.IsRead))
	}
	if q.Search != "" {
		f.Or(store.ILike("title", q.Search), store.ILike("message", q.Search))
	}
	if err := q.apply(f); err != nil {
		h.writeError(c, err)
		return
	}

	list, total, err := h.Notifications.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "notifications", list, total, q.Page)
}

// CreateNotification is the handler for POST /v1/admin/notifications
func (h *Handlers) CreateNotification(c *gin.Context) {
	// 1. --- Get Admin ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input store.NewNotification
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Insert ---
	n, err := h.Notifications.Create(c.Request.Context(), s.UserID, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"notification": n})
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}
