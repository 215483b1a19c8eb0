// internal/domain/product/entity.go
package product

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrProductNotFound is returned when an id does not resolve to a catalog product
	ErrProductNotFound = errors.New("product not found")
	// ErrVariantNotFound is returned when a variant id does not belong to the product
	ErrVariantNotFound = errors.New("product variant not found")
)

// Product represents a catalog entry loaded from products.json.
// Prices are integer Colombian pesos.
type Product struct {
	ID            int64     `json:"id"`
	SKU           string    `json:"sku,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	OriginalPrice int64     `json:"originalPrice"`
	Image         string    `json:"image,omitempty"`
	Images        []string  `json:"images"`
	Video         string    `json:"video,omitempty"`
	Variants      []Variant `json:"variants,omitempty"`
	Category      string    `json:"category"`
	Tags          []string  `json:"tags,omitempty"`
	Features      []string  `json:"features,omitempty"`
	Specs         []string  `json:"specs,omitempty"`
	Rating        float64   `json:"rating"`
	Reviews       int       `json:"reviews"`
	Featured      bool      `json:"featured"`
}

// Variant represents a purchasable option of a product (color, size, bundle...)
type Variant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"` // Overrides product price when > 0
	Images      []string `json:"images,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Business methods for Product

// FindVariant returns the variant with the given id
func (p *Product) FindVariant(id string) (*Variant, bool) {
	if id == "" {
		return nil, false
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// PrimaryImage returns the first image of the product, if any
func (p *Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.Image
}

// GetDiscountPercentage returns the rounded discount against the original price
func (p *Product) GetDiscountPercentage() int {
	if p.OriginalPrice > 0 && p.Price < p.OriginalPrice {
		return int(math.Round((1 - float64(p.Price)/float64(p.OriginalPrice)) * 100))
	}
	return 0
}

// rawProduct mirrors the loose products.json schema before normalization.
// Several historical field names are accepted.
type rawProduct struct {
	ID               json.Number     `json:"id"`
	SKU              json.RawMessage `json:"sku"`
	Name             string          `json:"name"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	DescriptionHTML  string          `json:"descriptionHtml"`
	ShortDescription string          `json:"shortDescription"`
	Price            json.RawMessage `json:"price"`
	OriginalPrice    json.RawMessage `json:"originalPrice"`
	Image            string          `json:"image"`
	Images           []string        `json:"images"`
	Video            string          `json:"video"`
	Variants         []rawVariant    `json:"variants"`
	Category         string          `json:"category"`
	Tags             []string        `json:"tags"`
	Features         []string        `json:"features"`
	Specs            []string        `json:"specs"`
	Rating           float64         `json:"rating"`
	Reviews          int             `json:"reviews"`
	Featured         bool            `json:"featured"`
}

type rawVariant struct {
	ID          json.RawMessage `json:"id"`
	Name        string          `json:"name"`
	Price       json.RawMessage `json:"price"`
	Images      []string        `json:"images"`
	Description string          `json:"description"`
}

// parseAmount accepts numbers and numeric strings and rounds to whole pesos.
// The second return value is false when the field is absent or unparseable.
func parseAmount(raw json.RawMessage) (int64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(math.Round(f)), true
}

// parseText accepts a JSON string or number and returns its textual form
func parseText(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
