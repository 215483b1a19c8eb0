// internal/interfaces/http/handlers/product.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/premiumdrop/storefront/internal/domain/product"
)

const (
	defaultFeaturedLimit = 8
	maxFeaturedLimit     = 24
	relatedLimit         = 4
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	productService *product.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *product.Service) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ProductImages lists, per image, the paths a client tries in order
type ProductImages struct {
	Candidates  [][]string `json:"candidates"`
	Placeholder string     `json:"placeholder"`
}

// ProductDetail is the product page payload
type ProductDetail struct {
	Product            *product.Product  `json:"product"`
	DiscountPercentage int               `json:"discount_percentage"`
	Images             ProductImages     `json:"images"`
	Related            []product.Product `json:"related"`
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ProductListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    h.productService.GetProducts(&req),
	})
}

// GetCategories handles GET /products/categories
func (h *ProductHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    h.productService.GetCategories(),
	})
}

// GetFeaturedProducts handles GET /products/featured
func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultFeaturedLimit)))
	if err != nil || limit <= 0 || limit > maxFeaturedLimit {
		limit = defaultFeaturedLimit
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Featured products retrieved successfully",
		"data":    h.productService.GetFeaturedProducts(limit),
	})
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	p, err := h.productService.GetProduct(id)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}

	images := ProductImages{
		Candidates:  make([][]string, 0, len(p.Images)),
		Placeholder: product.PlaceholderImage,
	}
	for _, src := range p.Images {
		images.Candidates = append(images.Candidates, product.ImageCandidates(src))
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data": ProductDetail{
			Product:            p,
			DiscountPercentage: p.GetDiscountPercentage(),
			Images:             images,
			Related:            h.productService.GetRelatedProducts(p, relatedLimit),
		},
	})
}
