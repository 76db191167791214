package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/01moynul/taptoeat-golang/internal/store"
	"github.com/gin-gonic/gin"
)

// --- User Login ---

// LoginInput defines the JSON data expected for a login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Find User By Email ---
	user, err := h.Users.GetByEmail(c.Request.Context(), input.Email)
	if apperr.IsKind(err, apperr.KindNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 3. --- Check Password ---
	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		h.writeError(c, apperr.Backend("Failed to check password", err))
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 4. --- Check Account Is Active ---
	// Checked after the password so a wrong guess cannot reveal which
	// accounts exist.
	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your account has been deactivated. Please contact support."})
		return
	}

	// 5. --- Generate JWT ---
	token, err := h.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.writeError(c, apperr.Backend("Failed to generate token", err))
		return
	}

	// 6. --- Audit (best effort) ---
	h.Audit.Record(c.Request.Context(), store.ActivityEntry{
		ActorID:  user.ID,
		Action:   models.ActionLogin,
		Target:   models.TargetUser,
		TargetID: user.ID,
		IP:       c.ClientIP(),
	})

	// 7. --- Send Success Response ---
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// GetMe is the handler for GET /v1/me
func (h *Handlers) GetMe(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), s.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

//
// --- Admin: User Management ---
//

// GetUsers is the handler for GET /v1/admin/users
func (h *Handlers) GetUsers(c *gin.Context) {
	var q struct {
		listQuery
		Role     models.Role `form:"role"`
		IsActive *bool       `form:"isActive"`
		Search   string      `form:"search"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f := store.NewFilter(store.UserColumns...)
	if q.Role != "" {
		f.Eq("role", q.Role)
	}
	if q.IsActive != nil {
		f.Eq("is_active", boolFlag(*q.IsActive))
	}
	if q.Search != "" {
		f.Or(store.ILike("email", q.Search), store.ILike("full_name", q.Search))
	}
	if err := q.dateRange(f); err != nil {
		h.writeError(c, err)
		return
	}

	users, total, err := h.Users.List(c.Request.Context(), f, q.Page)
	if err != nil {
		h.writeError(c, err)
		return
	}
	page(c, "users", users, total, q.Page)
}

// GetUser is the handler for GET /v1/admin/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeactivateUser is the handler for DELETE /v1/admin/users/:id
// Users are never physically deleted; the row is kept and marked inactive.
func (h *Handlers) DeactivateUser(c *gin.Context) {
	// 1. --- Get Admin & Target ---
	s, ok := session(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// 2. --- Soft Delete ---
	user, err := h.Users.Deactivate(c.Request.Context(), s.UserID, id, c.Query("reason"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deactivated", "user": user})
}
