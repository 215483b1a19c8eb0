// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidAction = errors.New("invalid quantity action")
	ErrSessionID     = errors.New("session ID required for cart")
)

// Quantity actions
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// MaxItemQuantity caps the units of one cart line
const MaxItemQuantity = 99

// CartItem is one line of a shopper's cart. The JSON field names match the
// array the browser kept in local storage so such a cart can be imported as is.
type CartItem struct {
	Key           string   `json:"key"`
	ProductID     int64    `json:"id"`
	VariantID     string   `json:"variantId,omitempty"`
	VariantName   string   `json:"variantName,omitempty"`
	Name          string   `json:"name"`
	Price         int64    `json:"price"` // Unit price in COP at time of adding
	OriginalPrice int64    `json:"originalPrice"`
	Images        []string `json:"images"`
	Quantity      int      `json:"quantity"`
}

// ItemKey builds the composite key: "<id>" or "<id>::<variantId>"
func ItemKey(productID int64, variantID string) string {
	id := strconv.FormatInt(productID, 10)
	if variantID == "" {
		return id
	}
	return id + "::" + variantID
}

// ParseItemKey splits a composite key back into product and variant ids
func ParseItemKey(key string) (int64, string, error) {
	idPart, variant, _ := strings.Cut(key, "::")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid cart item key %q", key)
	}
	return id, variant, nil
}

// Subtotal returns unit price times quantity
func (i *CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Cart is the per-session cart persisted in Redis
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart creates an empty cart
func NewCart(sessionID string, now time.Time) *Cart {
	return &Cart{
		SessionID: sessionID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Cart) indexOf(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}

// Find returns the item with the given key
func (c *Cart) Find(key string) (*CartItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return &c.Items[i], true
	}
	return nil, false
}

// Add merges item into the cart: an existing key gains the quantity,
// otherwise the item is appended. Quantities below one count as one and a
// line never exceeds MaxItemQuantity.
func (c *Cart) Add(item CartItem) {
	item.Quantity = clampQuantity(item.Quantity)
	if item.Key == "" {
		item.Key = ItemKey(item.ProductID, item.VariantID)
	}

	if i := c.indexOf(item.Key); i >= 0 {
		// both operands are within 1..MaxItemQuantity, so the sum cannot wrap
		c.Items[i].Quantity = clampQuantity(c.Items[i].Quantity + item.Quantity)
		return
	}
	c.Items = append(c.Items, item)
}

func clampQuantity(q int) int {
	switch {
	case q < 1:
		return 1
	case q > MaxItemQuantity:
		return MaxItemQuantity
	}
	return q
}

// Apply changes the quantity of key by one. Decreasing to zero removes the
// item. It reports whether the cart changed; an unknown key is not an error.
func (c *Cart) Apply(key, action string) (bool, error) {
	if action != ActionIncrease && action != ActionDecrease {
		return false, ErrInvalidAction
	}

	i := c.indexOf(key)
	if i < 0 {
		return false, nil
	}

	if action == ActionIncrease {
		if c.Items[i].Quantity >= MaxItemQuantity {
			return false, nil
		}
		c.Items[i].Quantity++
		return true, nil
	}

	c.Items[i].Quantity--
	if c.Items[i].Quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	return true, nil
}

// Remove deletes key and reports whether it was present
func (c *Cart) Remove(key string) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []CartItem{}
}

// IsEmpty reports whether the cart has no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Subtotal is the sum of unit price times quantity over all items
func (c *Cart) Subtotal() int64 {
	var total int64
	for i := range c.Items {
		total += c.Items[i].Subtotal()
	}
	return total
}

// TotalQuantity is the sum of all quantities, shown on the cart badge
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartTotals represents calculated cart totals for a selected location
type CartTotals struct {
	ItemCount     int    `json:"item_count"`     // Number of distinct keys
	TotalQuantity int    `json:"total_quantity"` // Sum of all quantities
	SubTotal      int64  `json:"sub_total"`
	ShippingCost  int64  `json:"shipping_cost"` // Zero when waived or no department
	FreeShipping  bool   `json:"free_shipping"`
	TotalAmount   int64  `json:"total_amount"`
	Department    string `json:"department,omitempty"`
	City          string `json:"city,omitempty"`
}
