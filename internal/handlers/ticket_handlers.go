package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Support Ticket Handlers ---
//

type ticketQuery struct {
	listQuery
	Status     models.TicketStatus         `form:"status"`
	Priority   models.NotificationPriority `form:"priority"`
	Category   models.TicketCategory       `form:"category"`
	AssignedTo *int64                      `form:"assignedTo"`
	Unassigned bool                        `form:"unassigned"`
	Search     string                      `form:"search"`
}

func (q ticketQuery) apply(f *store.Filter) error {
	if q.Status != "" {
		f.Eq("status", q.Status)
	}
	if q.Priority != "" {
		f.Eq("priority", q.Priority)
	}
	if q.Category != "" {
		f.Eq("category", q.Category)
	}
	switch {
	case q.Unassigned:
		f.Eq("assigned_to", nil)
	case q.AssignedTo != nil:
		f.Eq("assigned_to", *q.AssignedTo)
	}
	if q.Search != "" {
		f.Or(store.ILike("subject", q.Search), store.ILike("description", q.Search), store.ILike("ticket_number", q.Search))
	}
	return q.dateRange(f)
}

// CreateTicket is the handler for POST /v1/tickets
func (h *Handlers) CreateTicket(c *gin.Context) {
	// 1. --- Get User ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input store.NewTicket
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Insert ---
	t, err := h.Tickets.Create(c.Request.Context(), s.UserID, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket": t})
}

// GetMyTickets is the handler for GET /v1/tickets
func (h *Handlers) GetMyTickets(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	var q ticketQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := store.NewFilter(store.TicketColumns...).Eq("user_id", s.UserID)
	if err := q.apply(f); err != nil {
		h.writeError(c, err)
		return
	}

	list, total, err := h.Tickets.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "tickets", list, total, q.Page)
}

// GetTicket is the handler for GET /v1/tickets/:id and GET /v1/admin/tickets/:id
// Non-admins only see their own tickets.
func (h *Handlers) GetTicket(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	t, err := h.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if t.UserID != s.UserID && !s.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}

// GetAllTickets is the handler for GET /v1/admin/tickets
func (h *Handlers) GetAllTickets(c *gin.Context) {
	var q struct {
		ticketQuery
		UserID *int64 `form:"userId"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.TicketColumns...)
	if q.UserID != nil {
		f.Eq("user_id", *q.UserID)
	}
	if err := q.apply(f); err != nil {
		h.writeError(c, err)
		return
	}

	list, total, err := h.Tickets.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "tickets", list, total, q.Page)
}

type UpdateTicketStatusInput struct {
	Status          models.TicketStatus `json:"status" binding:"required"`
	ResolutionNotes *string             `json:"resolutionNotes"`
}

// UpdateTicketStatus is the handler for PATCH /v1/admin/tickets/:id/status
func (h *Handlers) UpdateTicketStatus(c *gin.Context) {
	// 1. --- Get Admin & Ticket ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input UpdateTicketStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Update ---
	t, err := h.Tickets.UpdateStatus(c.Request.Context(), s.UserID, id, input.Status, input.ResolutionNotes)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": t})
}

type AssignTicketInput struct {
	AssigneeID int64 `json:"assigneeId" binding:"required"`
}

// AssignTicket is the handler for PATCH /v1/admin/tickets/:id/assign
func (h *Handlers) AssignTicket(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input AssignTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.Tickets.Assign(c.Request.Context(), s.UserID, id, input.AssigneeID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": t})
}
