// internal/interfaces/http/handlers/comment.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/domain/comment"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
)

// CommentHandler handles product comment endpoints
type CommentHandler struct {
	commentService *comment.Service
	productService *product.Service
	logger         *logrus.Logger
}

// NewCommentHandler creates a new comment handler
func NewCommentHandler(commentService *comment.Service, productService *product.Service, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		productService: productService,
		logger:         logger,
	}
}

// GetComments handles GET /products/:id/comments
func (h *CommentHandler) GetComments(c *gin.Context) {
	id, ok := h.productParam(c)
	if !ok {
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("product_id", id).Error("Failed to load comments")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve comments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comments retrieved successfully",
		"data":    comments,
	})
}

// CreateComment handles POST /products/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	id, ok := h.productParam(c)
	if !ok {
		return
	}

	var req comment.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	entry, err := h.commentService.Add(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, comment.ErrEmptyText) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Comment text is required",
			})
			return
		}
		h.logger.WithError(err).WithField("product_id", id).Error("Failed to save comment")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save comment",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"data":    entry,
	})
}

// productParam resolves :id to a catalog product
func (h *CommentHandler) productParam(c *gin.Context) (int64, bool) {
	id, ok := parseProductID(c)
	if !ok {
		return 0, false
	}
	if _, err := h.productService.GetProduct(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Product not found",
		})
		return 0, false
	}
	return id, true
}
