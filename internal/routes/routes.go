package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/01moynul/taptoeat-golang/internal/handlers"
	"github.com/01moynul/taptoeat-golang/internal/middleware"
	"github.com/01moynul/taptoeat-golang/internal/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CORSOrigins []string
	Maintenance middleware.MaintenanceChecker
	Logger      *slog.Logger
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger))

	// --- CORS Guard ---
	// This must run before any route so preflight requests are answered.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := middleware.AuthMiddleware(h.Tokens, opts.Maintenance, opts.Logger)

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/login", h.Login)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(requireAuth)
		{
			auth.GET("/me", h.GetMe)
			auth.GET("/settings", h.GetPublicSettings)
			auth.GET("/realtime", h.Subscribe)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.GET("/notifications/unread-count", h.GetUnreadCount)
			auth.PATCH("/notifications/read-all", h.MarkAllNotificationsAsRead)
			auth.GET("/notifications/:id", h.GetNotification)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			// --- Support Ticket Routes ---
			auth.POST("/tickets", h.CreateTicket)
			auth.GET("/tickets", h.GetMyTickets)
			auth.GET("/tickets/:id", h.GetTicket)
		}

		// --- Cart Routes (Customers & Sales Agents) ---
		cart := v1.Group("/cart")
		cart.Use(requireAuth, middleware.RequireRole(models.RoleCustomer, models.RoleSalesAgent))
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.POST("/items", h.AddToCart)
			cart.POST("/menu-items", h.AddMenuItemToCart)
			cart.PATCH("/items/:id", h.UpdateCartItem)
			cart.POST("/items/:id/increment", h.IncrementCartItem)
			cart.POST("/items/:id/decrement", h.DecrementCartItem)
			cart.DELETE("/items/:id", h.DeleteCartItem)
			cart.DELETE("/vendors/:vendorId", h.ClearVendorItems)
			cart.PUT("/delivery-method", h.UpdateDeliveryMethod)
		}

		// --- Driver-Only Routes ---
		driver := v1.Group("/driver")
		driver.Use(requireAuth, middleware.RequireRole(models.RoleDriver))
		{
			driver.GET("/orders/available", h.GetAvailableOrders)
			driver.GET("/orders", h.GetMyDriverOrders)
			driver.GET("/orders/:id", h.GetDriverOrder)
			driver.POST("/orders/:id/accept", h.AcceptOrder)
			driver.POST("/orders/:id/reject", h.RejectOrder)
			driver.POST("/orders/:id/navigate-vendor", h.NavigateToVendor)
			driver.POST("/orders/:id/arrive-vendor", h.ArriveAtVendor)
			driver.POST("/orders/:id/confirm-pickup", h.ConfirmPickup)
			driver.POST("/orders/:id/navigate-customer", h.NavigateToCustomer)
			driver.POST("/orders/:id/arrive-customer", h.ArriveAtCustomer)
			driver.POST("/orders/:id/confirm-delivery", h.ConfirmDelivery)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", h.GetAdminStats)

			admin.GET("/notifications", h.GetAllNotifications)
			admin.POST("/notifications", h.CreateNotification)

			admin.GET("/tickets", h.GetAllTickets)
			admin.GET("/tickets/:id", h.GetTicket)
			admin.PATCH("/tickets/:id/status", h.UpdateTicketStatus)
			admin.PATCH("/tickets/:id/assign", h.AssignTicket)

			admin.GET("/settings", h.GetSettings)
			admin.GET("/settings/:key", h.GetSetting)
			admin.PATCH("/settings/:key", h.UpdateSetting)

			admin.GET("/activity", h.GetActivityLogs)

			admin.GET("/users", h.GetUsers)
			admin.GET("/users/:id", h.GetUser)
			admin.DELETE("/users/:id", h.DeactivateUser)

			admin.GET("/vendors", h.GetVendors)
			admin.PATCH("/vendors/:id/approve", h.ApproveVendor)
			admin.PATCH("/vendors/:id/reject", h.RejectVendor)

			admin.GET("/orders", h.GetAllOrders)
			admin.POST("/orders/:id/cancel", h.CancelOrder)
			admin.POST("/orders/:id/refund", h.RefundOrder)
		}
	}

	return router
}
