// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// maxImportItems bounds a browser cart import
const maxImportItems = 100

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService    *cart.Service
	productService *product.Service
	config         *config.Config
	logger         *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, productService *product.Service, cfg *config.Config, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService:    cartService,
		productService: productService,
		config:         cfg,
		logger:         logger,
	}
}

// CartResponse is a cart with its location-independent figures
type CartResponse struct {
	*cart.Cart
	ItemCount int   `json:"item_count"`
	SubTotal  int64 `json:"sub_total"`
}

// CartTotalsResponse pairs the cart with totals for a selected location
type CartTotalsResponse struct {
	Cart   *cart.Cart      `json:"cart"`
	Totals cart.CartTotals `json:"totals"`
}

func newCartResponse(c *cart.Cart) CartResponse {
	return CartResponse{Cart: c, ItemCount: c.TotalQuantity(), SubTotal: c.Subtotal()}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	userCart, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		h.serverError(c, err, "Failed to retrieve cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    newCartResponse(userCart),
	})
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	count, err := h.cartService.GetCartItemCount(c.Request.Context(), sessionID)
	if err != nil {
		h.serverError(c, err, "Failed to retrieve cart count")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart count retrieved successfully",
		"data":    gin.H{"count": count},
	})
}

// GetCartTotals handles GET /cart/totals?department=&city=
func (h *CartHandler) GetCartTotals(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	var sel location.SelectedLocation
	if err := c.ShouldBindQuery(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	userCart, totals, err := h.cartService.GetTotals(c.Request.Context(), sessionID, sel)
	if err != nil {
		h.serverError(c, err, "Failed to calculate cart totals")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart totals calculated successfully",
		"data":    CartTotalsResponse{Cart: userCart, Totals: totals},
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if _, err := h.productService.GetProduct(req.ProductID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return
	}

	userCart, err := h.cartService.AddItem(c.Request.Context(), sessionID, req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		h.serverError(c, err, "Failed to add item to cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    newCartResponse(userCart),
	})
}

// ImportCart handles POST /cart/import with the array the browser kept
func (h *CartHandler) ImportCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	var items []cart.CartItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}
	if len(items) > maxImportItems {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Too many items to import",
		})
		return
	}

	userCart, imported, err := h.cartService.ImportItems(c.Request.Context(), sessionID, items)
	if err != nil {
		h.serverError(c, err, "Failed to import cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart imported successfully",
		"data": gin.H{
			"cart":     newCartResponse(userCart),
			"imported": imported,
			"skipped":  len(items) - imported,
		},
	})
}

// UpdateCartItem handles PATCH /cart/items/:key
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)
	key := c.Param("key")

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if !h.hasItem(c, sessionID, key) {
		return
	}

	userCart, err := h.cartService.SetQuantity(c.Request.Context(), sessionID, key, req.Action)
	if err != nil {
		if errors.Is(err, cart.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Action must be increase or decrease",
			})
			return
		}
		h.serverError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    newCartResponse(userCart),
	})
}

// RemoveFromCart handles DELETE /cart/items/:key
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)
	key := c.Param("key")

	if !h.hasItem(c, sessionID, key) {
		return
	}

	userCart, err := h.cartService.RemoveItem(c.Request.Context(), sessionID, key)
	if err != nil {
		h.serverError(c, err, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    newCartResponse(userCart),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	if err := h.cartService.ClearCart(c.Request.Context(), sessionID); err != nil {
		h.serverError(c, err, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}

// hasItem answers 404 when the key is not in the session's cart
func (h *CartHandler) hasItem(c *gin.Context, sessionID, key string) bool {
	userCart, err := h.cartService.GetCart(c.Request.Context(), sessionID)
	if err != nil {
		h.serverError(c, err, "Failed to retrieve cart")
		return false
	}
	if _, ok := userCart.Find(key); !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Cart item not found",
		})
		return false
	}
	return true
}

func (h *CartHandler) serverError(c *gin.Context, err error, message string) {
	h.logger.WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": message,
	})
}
