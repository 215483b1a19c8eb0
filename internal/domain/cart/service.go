// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
)

// Catalog resolves products for the cart
type Catalog interface {
	GetProduct(id int64) (*product.Product, error)
}

// Change describes a successful cart mutation
type Change struct {
	SessionID string
	Action    string // add, quantity, remove, clear, import
	Key       string
	Cart      *Cart
}

// Listener is called after every successful mutation
type Listener func(ctx context.Context, change Change)

// Service handles cart business logic
type Service struct {
	storage   Storage
	catalog   Catalog
	rates     ShippingRates
	threshold int64
	logger    *logrus.Logger

	mu        sync.Mutex
	listeners []Listener
	locks     [64]sync.Mutex // striped by session id
}

// NewService creates a new cart service
func NewService(storage Storage, catalog Catalog, rates ShippingRates, freeShippingThreshold int64, logger *logrus.Logger) *Service {
	return &Service{
		storage:   storage,
		catalog:   catalog,
		rates:     rates,
		threshold: freeShippingThreshold,
		logger:    logger,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// UpdateCartItemRequest represents a quantity step on one item
type UpdateCartItemRequest struct {
	Action string `json:"action" binding:"required"`
}

// OnChange registers a listener for cart mutations
func (s *Service) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// FreeShippingThreshold returns the subtotal at which shipping is waived
func (s *Service) FreeShippingThreshold() int64 {
	return s.threshold
}

// GetCart retrieves the cart for a session
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	return s.storage.Load(ctx, sessionID)
}

// GetCartItemCount returns the sum of quantities in the cart
func (s *Service) GetCartItemCount(ctx context.Context, sessionID string) (int, error) {
	c, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return c.TotalQuantity(), nil
}

// GetTotals computes totals for the selected location
func (s *Service) GetTotals(ctx context.Context, sessionID string, sel location.SelectedLocation) (*Cart, CartTotals, error) {
	c, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, CartTotals{}, err
	}
	return c, CalculateTotals(c, sel, s.rates, s.threshold), nil
}

// TotalWithShipping applies the service's rates and threshold
func (s *Service) TotalWithShipping(subtotal int64, sel location.SelectedLocation) int64 {
	return TotalWithShipping(subtotal, sel, s.rates, s.threshold)
}

// AddItem adds quantity units of a product (and optional variant) to the
// cart. An unknown product leaves the cart untouched; an unknown variant is
// treated as no variant.
func (s *Service) AddItem(ctx context.Context, sessionID string, productID int64, variantID string, quantity int) (*Cart, error) {
	return s.mutate(ctx, sessionID, "add", func(c *Cart) (string, bool, error) {
		item, ok := s.buildItem(productID, variantID, quantity)
		if !ok {
			return "", false, nil
		}
		c.Add(item)
		return item.Key, true, nil
	})
}

// SetQuantity increases or decreases an item by one
func (s *Service) SetQuantity(ctx context.Context, sessionID, key, action string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "quantity", func(c *Cart) (string, bool, error) {
		changed, err := c.Apply(key, action)
		return key, changed, err
	})
}

// RemoveItem deletes an item regardless of its quantity
func (s *Service) RemoveItem(ctx context.Context, sessionID, key string) (*Cart, error) {
	return s.mutate(ctx, sessionID, "remove", func(c *Cart) (string, bool, error) {
		return key, c.Remove(key), nil
	})
}

// ClearCart removes all items from the cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionID
	}

	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.storage.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.notify(ctx, Change{SessionID: sessionID, Action: "clear", Cart: NewCart(sessionID, time.Now().UTC())})
	return nil
}

// ImportItems merges a cart exported by the browser. Items are re-priced from
// the catalog; items whose product no longer exists are skipped.
func (s *Service) ImportItems(ctx context.Context, sessionID string, items []CartItem) (*Cart, int, error) {
	imported := 0
	c, err := s.mutate(ctx, sessionID, "import", func(c *Cart) (string, bool, error) {
		for _, in := range items {
			productID, variantID := in.ProductID, in.VariantID
			if productID == 0 && in.Key != "" {
				id, variant, err := ParseItemKey(in.Key)
				if err != nil {
					continue
				}
				productID, variantID = id, variant
			}

			item, ok := s.buildItem(productID, variantID, in.Quantity)
			if !ok {
				s.logger.WithFields(logrus.Fields{
					"session_id": sessionID,
					"product_id": productID,
				}).Debug("Skipping imported cart item for unknown product")
				continue
			}
			c.Add(item)
			imported++
		}
		return "", imported > 0, nil
	})
	return c, imported, err
}

// buildItem resolves the product and prices a new cart line
func (s *Service) buildItem(productID int64, variantID string, quantity int) (CartItem, bool) {
	prod, err := s.catalog.GetProduct(productID)
	if err != nil {
		if !errors.Is(err, product.ErrProductNotFound) {
			s.logger.WithError(err).Warn("Catalog lookup failed")
		} else {
			s.logger.WithField("product_id", productID).Debug("Ignoring add for unknown product")
		}
		return CartItem{}, false
	}

	item := CartItem{
		ProductID:     prod.ID,
		Name:          prod.Name,
		Price:         prod.Price,
		OriginalPrice: prod.OriginalPrice,
		Images:        prod.Images,
		Quantity:      quantity,
	}

	if variant, ok := prod.FindVariant(variantID); ok {
		item.VariantID = variant.ID
		item.VariantName = variant.Name
		if variant.Price > 0 {
			item.Price = variant.Price
		}
		if len(variant.Images) > 0 {
			item.Images = variant.Images
		}
	}

	item.Key = ItemKey(item.ProductID, item.VariantID)
	return item, true
}

// mutate loads, changes, persists and announces a cart under the session lock
func (s *Service) mutate(ctx context.Context, sessionID, action string, fn func(c *Cart) (string, bool, error)) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrSessionID
	}

	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key, changed, err := fn(c)
	if err != nil {
		return nil, err
	}
	if !changed {
		return c, nil
	}

	if err := s.storage.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to persist cart: %w", err)
	}

	s.notify(ctx, Change{SessionID: sessionID, Action: action, Key: key, Cart: c})
	return c, nil
}

func (s *Service) notify(ctx context.Context, change Change) {
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, change)
	}
}

func (s *Service) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &s.locks[h.Sum32()%uint32(len(s.locks))]
	m.Lock()
	return m.Unlock
}
