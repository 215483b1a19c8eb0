// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/analytics"
	"github.com/premiumdrop/storefront/internal/domain/order"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/interfaces/http/middleware"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
	"github.com/premiumdrop/storefront/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles operator endpoints. orderService and analyticsService
// are nil when the order log is disabled.
type AdminHandler struct {
	productService   *product.Service
	orderService     *order.Service
	analyticsService *analytics.Service
	pdfService       *pdf.Service
	jwtManager       *auth.JWTManager
	passwordManager  *auth.PasswordManager
	config           *config.Config
	logger           *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(productService *product.Service, orderService *order.Service, analyticsService *analytics.Service, pdfService *pdf.Service, jwtManager *auth.JWTManager, cfg *config.Config, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		productService:   productService,
		orderService:     orderService,
		analyticsService: analyticsService,
		pdfService:       pdfService,
		jwtManager:       jwtManager,
		passwordManager:  auth.NewPasswordManager(cfg.Security.BcryptCost),
		config:           cfg,
		logger:           logger,
	}
}

// LoginRequest represents admin login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if h.config.Admin.PasswordHash == "" {
		h.logger.Warn("Admin login attempted but ADMIN_PASSWORD_HASH is not set")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	emailOK := req.Email == "" || strings.EqualFold(req.Email, h.config.Admin.Email)
	if err := h.passwordManager.VerifyPassword(req.Password, h.config.Admin.PasswordHash); err != nil || !emailOK {
		h.logger.WithField("client_ip", c.ClientIP()).Warn("Failed admin login")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	token, expiresAt, err := h.jwtManager.GenerateAccessToken(h.config.Admin.Email)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue admin token")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to issue token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"data": LoginResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		},
	})
}

// ReloadCatalog handles POST /admin/catalog/reload
func (h *AdminHandler) ReloadCatalog(c *gin.Context) {
	count, err := h.productService.Reload(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Catalog reload failed, keeping previous catalog")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Failed to reload catalog",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Catalog reloaded successfully",
		"data":    gin.H{"products": count},
	})
}

// GetOrders handles GET /admin/orders
func (h *AdminHandler) GetOrders(c *gin.Context) {
	if !h.ordersEnabled(c) {
		return
	}

	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	response, err := h.orderService.GetOrders(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    response,
	})
}

// GetOrder handles GET /admin/orders/:ref
func (h *AdminHandler) GetOrder(c *gin.Context) {
	o, ok := h.loadOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateOrderStatus handles PATCH /admin/orders/:ref/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	if !h.ordersEnabled(c) {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	updatedBy, _ := middleware.GetAdminEmailFromContext(c)
	o, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("ref"), &req, updatedBy)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, order.ErrInvalidStatusTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.logger.WithError(err).Error("Failed to update order status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		}
		return
	}

	h.logger.WithFields(logrus.Fields{
		"reference":  o.Reference,
		"status":     o.Status,
		"updated_by": updatedBy,
	}).Info("Order status updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	})
}

// GetOrderReceipt handles GET /admin/orders/:ref/receipt. ?format=html returns
// the page that would be converted, for previews.
func (h *AdminHandler) GetOrderReceipt(c *gin.Context) {
	o, ok := h.loadOrder(c)
	if !ok {
		return
	}

	if c.Query("format") == "html" {
		page, err := h.pdfService.RenderReceiptHTML(o)
		if err != nil {
			h.logger.WithError(err).WithField("reference", o.Reference).Error("Failed to render receipt")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render receipt"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}

	pdfBuffer, err := h.pdfService.GenerateReceipt(o)
	if err != nil {
		h.logger.WithError(err).WithField("reference", o.Reference).Error("Failed to generate receipt")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to generate receipt",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=pedido-%s.pdf", o.Reference))
	c.Header("Content-Length", strconv.Itoa(pdfBuffer.Len()))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

// GetSalesAnalytics handles GET /admin/analytics/sales?days=
func (h *AdminHandler) GetSalesAnalytics(c *gin.Context) {
	if h.analyticsService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Order log is disabled",
		})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid days parameter",
		})
		return
	}

	report, err := h.analyticsService.GetSalesAnalytics(c.Request.Context(), days)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build sales analytics")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve sales analytics",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sales analytics retrieved successfully",
		"data":    report,
	})
}

func (h *AdminHandler) ordersEnabled(c *gin.Context) bool {
	if h.orderService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Order log is disabled",
		})
		return false
	}
	return true
}

func (h *AdminHandler) loadOrder(c *gin.Context) (*order.Order, bool) {
	if !h.ordersEnabled(c) {
		return nil, false
	}

	o, err := h.orderService.GetOrderByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return nil, false
		}
		h.logger.WithError(err).Error("Failed to retrieve order")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return nil, false
	}
	return o, true
}
