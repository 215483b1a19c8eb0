// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/checkout"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles WhatsApp checkout and product inquiry endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cfg *config.Config, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		config:          cfg,
		logger:          logger,
	}
}

// WhatsAppCheckout handles POST /checkout/whatsapp
func (h *CheckoutHandler) WhatsAppCheckout(c *gin.Context) {
	sessionID := getOrCreateSessionID(c, h.config)

	var req checkout.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	sel := location.SelectedLocation{Department: req.Department, City: req.City}
	result, err := h.checkoutService.Checkout(c.Request.Context(), sessionID, sel)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cart is empty",
			})
			return
		}
		h.logger.WithError(err).WithField("session_id", sessionID).Error("WhatsApp checkout failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to prepare checkout",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout prepared successfully",
		"data":    result,
	})
}

// ProductInquiry handles POST /products/:id/inquiry
func (h *CheckoutHandler) ProductInquiry(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req checkout.InquiryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request data",
				"details": err.Error(),
			})
			return
		}
	}

	result, err := h.checkoutService.Inquiry(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		h.logger.WithError(err).WithField("product_id", id).Error("Product inquiry failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to prepare inquiry",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inquiry prepared successfully",
		"data":    result,
	})
}
