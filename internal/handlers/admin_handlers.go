package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: Vendor Approval ---
//

// GetVendors is the handler for GET /v1/admin/vendors
// Defaults to the pending queue; pass status=all for every vendor.
func (h *Handlers) GetVendors(c *gin.Context) {
	var q struct {
		listQuery
		Status string `form:"status"`
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.VendorColumns...)
	switch q.Status {
	case "":
		f.Eq("status", models.VendorPending)
	case "all":
	default:
		f.Eq("status", q.Status)
	}
	if q.Search != "" {
		f.ILike("name", q.Search)
	}
	if err := q.dateRange(f); err != nil {
		h.writeError(c, err)
		return
	}

	vendors, total, err := h.Vendors.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "vendors", vendors, total, q.Page)
}

// ApproveVendor is the handler for PATCH /v1/admin/vendors/:id/approve
func (h *Handlers) ApproveVendor(c *gin.Context) {
	// 1. --- Get Admin & Vendor ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Approve (notifies the owner) ---
	v, err := h.Vendors.Approve(c.Request.Context(), s.UserID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vendor approved", "vendor": v})
}

type RejectVendorInput struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectVendor is the handler for PATCH /v1/admin/vendors/:id/reject
func (h *Handlers) RejectVendor(c *gin.Context) {
	// 1. --- Get Admin & Vendor ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input RejectVendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	// 3. --- Reject ---
	v, err := h.Vendors.Reject(c.Request.Context(), s.UserID, id, input.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vendor rejected", "vendor": v})
}
