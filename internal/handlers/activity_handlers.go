package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Activity Log Handlers ---
//

type activityView struct {
	models.ActivityLog
	ActionName  string `json:"actionName"`
	TargetName  string `json:"targetName"`
	Description string `json:"description"`
}

// GetActivityLogs is the handler for GET /v1/admin/activity
func (h *Handlers) GetActivityLogs(c *gin.Context) {
	// 1. --- Build Filter ---
	var q struct {
		listQuery
		ActorID    *int64            `form:"actorId"`
		ActionType models.ActionType `form:"actionType"`
		TargetType models.TargetType `form:"targetType"`
		TargetID   string            `form:"targetId"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.ActivityColumns...)
	if q.ActorID != nil {
		f.Eq("actor_id", *q.ActorID)
	}
	if q.ActionType != "" {
		if !q.ActionType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action type"})
			return
		}
		f.Eq("action_type", q.ActionType)
	}
	if q.TargetType != "" {
		if !q.TargetType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown target type"})
			return
		}
		f.Eq("target_type", q.TargetType)
	}
	if q.TargetID != "" {
		f.Eq("target_id", q.TargetID)
	}
	if err := q.dateRange(f); err != nil {
		h.writeError(c, err)
		return
	}

	// 2. --- Query ---
	logs, total, err := h.Activity.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Render ---
	views := make([]activityView, 0, len(logs))
	for _, l := range logs {
		views = append(views, activityView{
			ActivityLog: l,
			ActionName:  l.ActionType.DisplayName(),
			TargetName:  l.TargetType.DisplayName(),
			Description: l.Describe(),
		})
	}
	page(c, "activity", views, total, q.Page)
}
