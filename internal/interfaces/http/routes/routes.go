// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/interfaces/http/handlers"
	"github.com/premiumdrop/storefront/internal/interfaces/http/middleware"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
)

// Handlers groups every HTTP handler the API exposes
type Handlers struct {
	Product  *handlers.ProductHandler
	Comment  *handlers.CommentHandler
	Location *handlers.LocationHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Admin    *handlers.AdminHandler
}

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	SetupProductRoutes(rg, h)
	SetupLocationRoutes(rg, h)
	SetupCartRoutes(rg, h)
	SetupCheckoutRoutes(rg, h)
	SetupAdminRoutes(rg, h, jwtManager)
}

// SetupProductRoutes sets up catalog, comment and inquiry routes
func SetupProductRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/categories", h.Product.GetCategories)
		products.GET("/featured", h.Product.GetFeaturedProducts)
		products.GET("/:id", h.Product.GetProduct)

		products.GET("/:id/comments", h.Comment.GetComments)
		products.POST("/:id/comments", h.Comment.CreateComment)

		products.POST("/:id/inquiry", h.Checkout.ProductInquiry)
	}
}

// SetupLocationRoutes sets up department and detection routes
func SetupLocationRoutes(rg *gin.RouterGroup, h *Handlers) {
	locations := rg.Group("/locations")
	{
		locations.GET("/departments", h.Location.GetDepartments)
		locations.GET("/departments/:key", h.Location.GetDepartment)
		locations.POST("/detect", h.Location.DetectLocation)
		locations.GET("/detected", h.Location.GetDetectedLocation)
	}
}

// SetupCartRoutes sets up cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.GET("/count", h.Cart.GetCartCount)
		cart.GET("/totals", h.Cart.GetCartTotals)
		cart.POST("/items", h.Cart.AddToCart)
		cart.POST("/import", h.Cart.ImportCart)
		cart.PATCH("/items/:key", h.Cart.UpdateCartItem)
		cart.DELETE("/items/:key", h.Cart.RemoveFromCart)
		cart.DELETE("", h.Cart.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers) {
	checkout := rg.Group("/checkout")
	{
		checkout.POST("/whatsapp", h.Checkout.WhatsAppCheckout)
	}
}

// SetupAdminRoutes sets up operator routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers, jwtManager *auth.JWTManager) {
	admin := rg.Group("/admin")
	admin.POST("/login", h.Admin.Login)

	protected := admin.Group("")
	protected.Use(middleware.AdminAuth(jwtManager))
	{
		protected.POST("/catalog/reload", h.Admin.ReloadCatalog)

		orders := protected.Group("/orders")
		{
			orders.GET("", h.Admin.GetOrders)
			orders.GET("/:ref", h.Admin.GetOrder)
			orders.PATCH("/:ref/status", h.Admin.UpdateOrderStatus)
			orders.GET("/:ref/receipt", h.Admin.GetOrderReceipt)
		}

		protected.GET("/analytics/sales", h.Admin.GetSalesAnalytics)
	}
}
