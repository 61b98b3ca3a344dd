// internal/app/router.go
package app

import (
	authHandler "softmarket-service/internal/handlers/auth"
	cartHandler "softmarket-service/internal/handlers/cart"
	dashboardHandler "softmarket-service/internal/handlers/dashboard"
	licenseHandler "softmarket-service/internal/handlers/license"
	notifyHandler "softmarket-service/internal/handlers/notification"
	orderHandler "softmarket-service/internal/handlers/order"
	paymentHandler "softmarket-service/internal/handlers/payment"
	planHandler "softmarket-service/internal/handlers/plan"
	productHandler "softmarket-service/internal/handlers/product"
	wishlistHandler "softmarket-service/internal/handlers/wishlist"
	"softmarket-service/internal/middleware"
	"softmarket-service/internal/ws"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler      *authHandler.AuthHandler
	ProductHandler   *productHandler.ProductHandler
	PlanHandler      *planHandler.PlanHandler
	OrderHandler     *orderHandler.OrderHandler
	PaymentHandler   *paymentHandler.PaymentHandler
	LicenseHandler   *licenseHandler.LicenseHandler
	CartHandler      *cartHandler.CartHandler
	WishlistHandler  *wishlistHandler.WishlistHandler
	NotifHandler     *notifyHandler.NotificationHandler
	DashboardHandler *dashboardHandler.DashboardHandler
	Hub              *ws.Hub
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.Hub.HandleConnection)

	// ==================== Auth ====================
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthHandler.Register)
		auth.POST("/login", h.AuthHandler.Login)
		auth.GET("/me", h.AuthMiddleware.Auth(), h.AuthHandler.GetMe)
	}

	// ==================== Products ====================
	products := api.Group("/products")
	{
		products.GET("", h.ProductHandler.ListProducts)
		products.GET("/:id", h.ProductHandler.GetProduct)
		products.GET("/:id/price-history", h.ProductHandler.GetPriceHistory)

		sellers := products.Group("")
		sellers.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("seller", "admin"))
		{
			sellers.POST("", h.ProductHandler.CreateProduct)
			sellers.PUT("/:id", h.ProductHandler.UpdateProduct)
		}

		admin := products.Group("")
		admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("admin"))
		{
			admin.PUT("/:id/status", h.ProductHandler.UpdateProductStatus)
		}
	}

	// ==================== Subscription Plans ====================
	plans := api.Group("/plans")
	{
		plans.GET("", h.PlanHandler.ListPlans)
		plans.GET("/:id", h.PlanHandler.GetPlan)

		admin := plans.Group("")
		admin.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("admin"))
		{
			admin.POST("", h.PlanHandler.CreatePlan)
			admin.PUT("/:id", h.PlanHandler.UpdatePlan)
			admin.DELETE("/:id", h.PlanHandler.DeletePlan)
		}
	}

	// ==================== Orders ====================
	orders := api.Group("/orders")
	orders.Use(h.AuthMiddleware.Auth())
	{
		orders.POST("", h.OrderHandler.CreateOrder)
		orders.GET("", h.OrderHandler.ListOrders)
		orders.GET("/:id", h.OrderHandler.GetOrder)
		orders.PATCH("/:id/cancel", h.OrderHandler.CancelOrder)
	}

	// ==================== Payments ====================
	payments := api.Group("/payments")
	payments.Use(h.AuthMiddleware.Auth())
	{
		payments.POST("", h.PaymentHandler.CreatePayment)
	}

	// ==================== Licenses ====================
	licenses := api.Group("/licenses")
	licenses.Use(h.AuthMiddleware.Auth())
	{
		licenses.GET("", h.LicenseHandler.ListLicenses)
		licenses.GET("/:id", h.LicenseHandler.GetLicense)
		licenses.POST("/validate", h.LicenseHandler.ValidateLicense)
		licenses.POST("/activate", h.LicenseHandler.ActivateLicense)
		licenses.PATCH("/:id/deactivate", h.LicenseHandler.DeactivateLicense)
		licenses.PATCH("/:id/renew", h.LicenseHandler.RenewLicense)
		licenses.POST("/check-expired", h.AuthMiddleware.RequireRole("admin"), h.LicenseHandler.CheckExpired)
	}

	// ==================== Cart ====================
	cart := api.Group("/cart")
	cart.Use(h.AuthMiddleware.Auth())
	{
		cart.GET("", h.CartHandler.ListItems)
		cart.POST("/items", h.CartHandler.AddItem)
		cart.DELETE("/items/:subscriptionId", h.CartHandler.RemoveItem)
		cart.DELETE("", h.CartHandler.Clear)
	}

	// ==================== Wishlist ====================
	wishlist := api.Group("/wishlist")
	wishlist.Use(h.AuthMiddleware.Auth())
	{
		wishlist.GET("", h.WishlistHandler.List)
		wishlist.POST("/:softwareId/toggle", h.WishlistHandler.Toggle)
	}

	// ==================== Notifications ====================
	notifications := api.Group("/notifications")
	notifications.Use(h.AuthMiddleware.Auth())
	{
		notifications.GET("", h.NotifHandler.List)
		notifications.PUT("/:id/read", h.NotifHandler.MarkAsRead)
	}

	// ==================== Seller Dashboard ====================
	dashboard := api.Group("/dashboard")
	dashboard.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequireRole("seller", "admin"))
	{
		dashboard.GET("/seller", h.DashboardHandler.SellerDashboard)
	}
}
