package handlers

import (
	"net/http"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
	"github.com/01moynul/taptoeat-golang/internal/cart"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers ---
//
// The cart lives in memory per signed-in user. Every response carries the
// full priced summary so the client never recomputes totals.
//

type AddCartItemInput struct {
	Product        cart.Product   `json:"product"`
	Vendor         cart.Vendor    `json:"vendor"`
	Quantity       int            `json:"quantity"`
	Customizations map[string]any `json:"customizations"`
	Note           string         `json:"note"`
}

type AddMenuItemInput struct {
	MenuItemID     string         `json:"menuItemId" binding:"required"`
	Quantity       int            `json:"quantity"`
	Customizations map[string]any `json:"customizations"`
	Note           string         `json:"note"`
}

type UpdateQuantityInput struct {
	// Zero or less removes the line.
	Quantity *int `json:"quantity" binding:"required"`
}

type DeliveryMethodInput struct {
	DeliveryMethod cart.DeliveryMethod `json:"deliveryMethod" binding:"required"`
}

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Carts.Get(s.UserID).Summary())
}

// AddToCart is the handler for POST /v1/cart/items
// A product the menu knows is priced from the menu, not from the request.
func (h *Handlers) AddToCart(c *gin.Context) {
	// 1. --- Get User ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input AddCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Product.ID == "" || input.Vendor.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product and vendor ids are required"})
		return
	}
	if input.Product.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return
	}

	// 3. --- Price From The Menu When It Knows The Product ---
	item, vendorName, err := h.Menu.MenuItem(c.Request.Context(), input.Product.ID)
	switch {
	case err == nil:
		h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
			return ct.AddMenuItem(item, vendorName, input.Quantity, input.Customizations, input.Note)
		})
		return
	case !apperr.IsKind(err, apperr.KindNotFound):
		h.writeError(c, err)
		return
	}

	// 4. --- Off-menu Line Keeps The Submitted Price ---
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.AddItem(input.Product, input.Vendor, input.Quantity, input.Customizations, input.Note), nil
	})
}

// AddMenuItemToCart is the handler for POST /v1/cart/menu-items
// The menu item is loaded from the database so its price tiers and order
// limits cannot be forged by the client.
func (h *Handlers) AddMenuItemToCart(c *gin.Context) {
	// 1. --- Get User ---
	s, ok := session(c)
	if !ok {
		return
	}

	// 2. --- Bind & Validate JSON ---
	var input AddMenuItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 3. --- Load Menu Item ---
	item, vendorName, err := h.Menu.MenuItem(c.Request.Context(), input.MenuItemID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 4. --- Update Cart ---
	updated, err := h.Carts.Update(s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.AddMenuItem(item, vendorName, input.Quantity, input.Customizations, input.Note)
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated.Summary())
}

// UpdateCartItem is the handler for PATCH /v1/cart/items/:id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	var input UpdateQuantityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemID := c.Param("id")
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.UpdateItemQuantity(itemID, *input.Quantity)
	})
}

// IncrementCartItem is the handler for POST /v1/cart/items/:id/increment
func (h *Handlers) IncrementCartItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	itemID := c.Param("id")
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.Increment(itemID)
	})
}

// DecrementCartItem is the handler for POST /v1/cart/items/:id/decrement
func (h *Handlers) DecrementCartItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	itemID := c.Param("id")
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.Decrement(itemID)
	})
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	itemID := c.Param("id")
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.RemoveItem(itemID), nil
	})
}

// ClearCart is the handler for DELETE /v1/cart
func (h *Handlers) ClearCart(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.Clear(), nil
	})
}

// ClearVendorItems is the handler for DELETE /v1/cart/vendors/:vendorId
func (h *Handlers) ClearVendorItems(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}
	vendorID := c.Param("vendorId")
	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.ClearVendorItems(vendorID), nil
	})
}

// UpdateDeliveryMethod is the handler for PUT /v1/cart/delivery-method
func (h *Handlers) UpdateDeliveryMethod(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	var input DeliveryMethodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.DeliveryMethod.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delivery method"})
		return
	}

	h.updateCart(c, s.UserID, func(ct cart.Cart) (cart.Cart, error) {
		return ct.UpdateDeliveryMethod(input.DeliveryMethod), nil
	})
}

func (h *Handlers) updateCart(c *gin.Context, userID int64, fn func(cart.Cart) (cart.Cart, error)) {
	updated, err := h.Carts.Update(userID, fn)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated.Summary())
}
