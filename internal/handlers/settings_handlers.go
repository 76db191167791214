package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// --- System Settings Handlers ---
//

// GetPublicSettings is the handler for GET /v1/settings
// Any signed-in user may read the settings marked public.
func (h *Handlers) GetPublicSettings(c *gin.Context) {
	settings, err := h.Settings.List(c.Request.Context(), c.Query("category"), true)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSettings is the handler for GET /v1/admin/settings
func (h *Handlers) GetSettings(c *gin.Context) {
	settings, err := h.Settings.List(c.Request.Context(), c.Query("category"), false)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSetting is the handler for GET /v1/admin/settings/:key
func (h *Handlers) GetSetting(c *gin.Context) {
	st, err := h.Settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"setting": st})
}

type UpdateSettingInput struct {
	Value *string `json:"value" binding:"required"`
}

// UpdateSetting is the handler for PATCH /v1/admin/settings/:key
// The value is checked against the setting's declared type.
func (h *Handlers) UpdateSetting(c *gin.Context) {
	// 1. --- Get Admin ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input UpdateSettingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Update ---
	st, err := h.Settings.Update(c.Request.Context(), s.UserID, c.Param("key"), *input.Value)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting updated", "setting": st})
}
