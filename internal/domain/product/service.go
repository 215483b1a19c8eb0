// internal/domain/product/service.go
package product

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// AllCategories is the pseudo-category that disables category filtering
const AllCategories = "all"

// CategoryLabels maps catalog categories to their Spanish display labels
var CategoryLabels = map[string]string{
	"Sports & Outdoors": "Deportes y aire libre",
	"Electronics":       "Electrónica",
	"Home & Kitchen":    "Hogar y Cocina",
	"Office":            "Oficina",
	"Accessories":       "Accesorios",
	"Gaming":            "Gaming",
	"Fashion":           "Moda",
	"Beauty":            "Belleza",
	"Photography":       "Fotografía",
	"Wearables":         "Wearables",
}

// Service is the catalog store. It holds the normalized product list loaded
// once from a Source and answers every browse, search and lookup request.
type Service struct {
	source  Source
	logger  *logrus.Logger
	perPage int

	mu       sync.RWMutex
	products []Product
	byID     map[int64]int
}

// NewService creates a new product service
func NewService(source Source, perPage int, logger *logrus.Logger) *Service {
	if perPage <= 0 {
		perPage = 10
	}
	return &Service{
		source:  source,
		logger:  logger,
		perPage: perPage,
		byID:    map[int64]int{},
	}
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Search   string `form:"q"`
}

// ProductResponse represents product response with pagination
type ProductResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Category is a filter option shown to shoppers
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Load fetches and normalizes the catalog, replacing the current one
func (s *Service) Load(ctx context.Context) error {
	data, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog from %s: %w", s.source, err)
	}

	products, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse catalog from %s: %w", s.source, err)
	}

	s.Replace(products)

	s.logger.WithFields(logrus.Fields{
		"source":   s.source.String(),
		"products": len(products),
	}).Info("Catalog loaded")

	return nil
}

// Reload re-fetches the catalog. On failure the previous catalog stays active.
func (s *Service) Reload(ctx context.Context) (int, error) {
	if err := s.Load(ctx); err != nil {
		return 0, err
	}
	return s.Count(), nil
}

// Replace swaps in an already normalized product list
func (s *Service) Replace(products []Product) {
	index := make(map[int64]int, len(products))
	for i, p := range products {
		if _, dup := index[p.ID]; dup {
			s.logger.WithField("product_id", p.ID).Warn("Duplicate product id in catalog, keeping first")
			continue
		}
		index[p.ID] = i
	}

	s.mu.Lock()
	s.products = products
	s.byID = index
	s.mu.Unlock()
}

// Count returns the number of products in the catalog
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

// GetProduct retrieves a single product by ID
func (s *Service) GetProduct(id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p := s.products[i]
	return &p, nil
}

// GetVariant resolves a product and one of its variants
func (s *Service) GetVariant(productID int64, variantID string) (*Product, *Variant, error) {
	p, err := s.GetProduct(productID)
	if err != nil {
		return nil, nil, err
	}
	v, ok := p.FindVariant(variantID)
	if !ok {
		return p, nil, ErrVariantNotFound
	}
	return p, v, nil
}

// GetProducts filters, searches and paginates the catalog
func (s *Service) GetProducts(req *ProductListRequest) *ProductResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(req.Search))

	var filtered []Product
	for _, p := range s.products {
		if req.Category != "" && req.Category != AllCategories && p.Category != req.Category {
			continue
		}
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		filtered = append(filtered, p)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = s.perPage
	}

	total := len(filtered)
	totalPages := (total + limit - 1) / limit

	// pages past the end collapse to the first empty page so start cannot overflow
	if page > totalPages+1 {
		page = totalPages + 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	products := make([]Product, end-start)
	copy(products, filtered[start:end])

	return &ProductResponse{
		Products: products,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}

// matchesQuery checks name, description, category, features, tags and SKU.
// query must already be lower-cased.
func matchesQuery(p *Product, query string) bool {
	fields := []string{
		p.Name,
		p.Description,
		p.Category,
		strings.Join(p.Features, " "),
		strings.Join(p.Tags, " "),
		p.SKU,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// GetCategories returns "all" followed by each category in first-seen order
func (s *Service) GetCategories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := []Category{{Key: AllCategories, Label: "Todos los productos"}}
	seen := map[string]bool{}
	for _, p := range s.products {
		if seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		label, ok := CategoryLabels[p.Category]
		if !ok {
			label = p.Category
		}
		categories = append(categories, Category{Key: p.Category, Label: label})
	}
	return categories
}

// GetFeaturedProducts returns products flagged as featured, or the best rated
// ones when nothing is flagged.
func (s *Service) GetFeaturedProducts(limit int) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var featured []Product
	for _, p := range s.products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	if len(featured) > 0 {
		if len(featured) > limit {
			featured = featured[:limit]
		}
		return featured
	}

	ranked := make([]Product, len(s.products))
	copy(ranked, s.products)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Reviews > ranked[j].Reviews
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// GetRelatedProducts returns other products from the same category
func (s *Service) GetRelatedProducts(p *Product, limit int) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var related []Product
	for _, other := range s.products {
		if len(related) >= limit {
			break
		}
		if other.ID != p.ID && other.Category == p.Category {
			related = append(related, other)
		}
	}
	return related
}
