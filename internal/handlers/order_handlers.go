package handlers

import (
	"context"
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/auth"
	"github.com/01moynul/taptoeat-golang/internal/delivery"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Driver Order Handlers ---
//

// orderView adds the display name and the workflow step (0 to 4) the driver
// app uses for its progress bar. Orders outside the workflow have no step.
type orderView struct {
	models.DriverOrder
	StatusName   string `json:"statusName"`
	WorkflowStep *int   `json:"workflowStep,omitempty"`
}

func newOrderView(o models.DriverOrder) orderView {
	v := orderView{DriverOrder: o, StatusName: delivery.DisplayName(o.Status)}
	if step, ok := delivery.WorkflowStep(o.Status); ok {
		v.WorkflowStep = &step
	}
	return v
}

func orderViews(orders []models.DriverOrder) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, newOrderView(o))
	}
	return out
}

type orderListQuery struct {
	listQuery
	Status models.OrderStatus `form:"status"`
}

// GetAvailableOrders is the handler for GET /v1/driver/orders/available
// It lists the orders waiting in the pool for a driver.
func (h *Handlers) GetAvailableOrders(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.OrderColumns...).Eq("status", models.OrderAvailable)
	orders, total, err := h.Orders.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "orders", orderViews(orders), total, q.Page)
}

// GetMyDriverOrders is the handler for GET /v1/driver/orders
// It lists the orders assigned to the logged-in driver, optionally by status.
func (h *Handlers) GetMyDriverOrders(c *gin.Context) {
	// 1. --- Get Driver ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Build Filter ---
	var q orderListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := store.NewFilter(store.OrderColumns...).Eq("driver_id", s.UserID)
	if q.Status != "" {
		if !delivery.Valid(q.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}
		f.Eq("status", q.Status)
	}

	// 3. --- Query ---
	orders, total, err := h.Orders.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "orders", orderViews(orders), total, q.Page)
}

// GetDriverOrder is the handler for GET /v1/driver/orders/:id
// Drivers may see orders in the pool and their own orders.
func (h *Handlers) GetDriverOrder(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	o, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	mine := o.DriverID != nil && *o.DriverID == s.UserID
	if o.Status != models.OrderAvailable && !mine && !s.IsAdmin() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": newOrderView(o)})
}

type orderAction func(ctx context.Context, s auth.Session, orderID int64) (delivery.Result, error)

// runOrderAction applies one workflow action and answers with the order as
// re-read from the database.
func (h *Handlers) runOrderAction(c *gin.Context, action orderAction) {
	// 1. --- Get Driver & Order ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Run Workflow ---
	res, err := action(c.Request.Context(), s, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"order":        newOrderView(res.Order),
		"transitioned": res.Transitioned,
		"superseded":   res.Superseded,
	})
}

// AcceptOrder is the handler for POST /v1/driver/orders/:id/accept
func (h *Handlers) AcceptOrder(c *gin.Context) { h.runOrderAction(c, h.Workflow.Accept) }

// RejectOrder is the handler for POST /v1/driver/orders/:id/reject
func (h *Handlers) RejectOrder(c *gin.Context) { h.runOrderAction(c, h.Workflow.Reject) }

// NavigateToVendor is the handler for POST /v1/driver/orders/:id/navigate-vendor
func (h *Handlers) NavigateToVendor(c *gin.Context) {
	h.runOrderAction(c, h.Workflow.StartNavigationToVendor)
}

// ArriveAtVendor is the handler for POST /v1/driver/orders/:id/arrive-vendor
func (h *Handlers) ArriveAtVendor(c *gin.Context) {
	h.runOrderAction(c, h.Workflow.MarkArrivedAtVendor)
}

// ConfirmPickup is the handler for POST /v1/driver/orders/:id/confirm-pickup
func (h *Handlers) ConfirmPickup(c *gin.Context) { h.runOrderAction(c, h.Workflow.ConfirmPickup) }

// NavigateToCustomer is the handler for POST /v1/driver/orders/:id/navigate-customer
func (h *Handlers) NavigateToCustomer(c *gin.Context) {
	h.runOrderAction(c, h.Workflow.StartNavigationToCustomer)
}

// ArriveAtCustomer is the handler for POST /v1/driver/orders/:id/arrive-customer
func (h *Handlers) ArriveAtCustomer(c *gin.Context) {
	h.runOrderAction(c, h.Workflow.MarkArrivedAtCustomer)
}

// ConfirmDelivery is the handler for POST /v1/driver/orders/:id/confirm-delivery
func (h *Handlers) ConfirmDelivery(c *gin.Context) { h.runOrderAction(c, h.Workflow.ConfirmDelivery) }

//
// --- Admin Order Handlers ---
//

// GetAllOrders is the handler for GET /v1/admin/orders
func (h *Handlers) GetAllOrders(c *gin.Context) {
	var q struct {
		orderListQuery
		DriverID      *int64               `form:"driverId"`
		CustomerID    *int64               `form:"customerId"`
		PaymentStatus models.PaymentStatus `form:"paymentStatus"`
		Search        string               `form:"search"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.OrderColumns...)
	if q.Status != "" {
		f.Eq("status", q.Status)
	}
	if q.DriverID != nil {
		f.Eq("driver_id", *q.DriverID)
	}
	if q.CustomerID != nil {
		f.Eq("customer_id", *q.CustomerID)
	}
	if q.PaymentStatus != "" {
		f.Eq("payment_status", q.PaymentStatus)
	}
	if q.Search != "" {
		f.ILike("order_number", q.Search)
	}
	if err := q.dateRange(f); err != nil {
		h.writeError(c, err)
		return
	}

	orders, total, err := h.Orders.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "orders", orderViews(orders), total, q.Page)
}

// CancelOrder is the handler for POST /v1/admin/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) { h.runOrderAction(c, h.Workflow.Cancel) }

type RefundOrderInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RefundOrder is the handler for POST /v1/admin/orders/:id/refund
func (h *Handlers) RefundOrder(c *gin.Context) {
	// 1. --- Get Admin & Order ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input RefundOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Refund ---
	o, err := h.Orders.Refund(c.Request.Context(), s.UserID, id, input.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order refunded",
		"order":   newOrderView(o),
	})
}
