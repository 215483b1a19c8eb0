// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/order"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/sirupsen/logrus"
)

var ErrEmptyCart = errors.New("cart is empty")

// CartStore is the part of the cart service checkout needs
type CartStore interface {
	GetTotals(ctx context.Context, sessionID string, sel location.SelectedLocation) (*cart.Cart, cart.CartTotals, error)
	ClearCart(ctx context.Context, sessionID string) error
	FreeShippingThreshold() int64
}

// Catalog resolves products for inquiries
type Catalog interface {
	GetProduct(id int64) (*product.Product, error)
}

// OrderRecorder keeps the order log
type OrderRecorder interface {
	CreateOrder(ctx context.Context, o *order.Order) error
}

// Service handles checkout business logic
type Service struct {
	carts     CartStore
	catalog   Catalog
	table     *location.Table
	estimator *location.Estimator
	orders    OrderRecorder
	phone     string
	logger    *logrus.Logger
	now       func() time.Time
}

// NewService creates a new checkout service. orders may be nil when the order
// log is disabled.
func NewService(carts CartStore, catalog Catalog, table *location.Table, estimator *location.Estimator, orders OrderRecorder, whatsAppPhone string, logger *logrus.Logger) *Service {
	return &Service{
		carts:     carts,
		catalog:   catalog,
		table:     table,
		estimator: estimator,
		orders:    orders,
		phone:     whatsAppPhone,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckoutRequest carries the shopper's selected location
type CheckoutRequest struct {
	Department string `json:"department"`
	City       string `json:"city"`
}

// InquiryRequest asks about one product
type InquiryRequest struct {
	VariantID  string `json:"variant_id"`
	Department string `json:"department"`
	City       string `json:"city"`
}

// Result is the outcome of a WhatsApp checkout
type Result struct {
	Reference string                     `json:"reference"`
	Message   string                     `json:"message"`
	URL       string                     `json:"url"`
	Totals    cart.CartTotals            `json:"totals"`
	Estimate  *location.DeliveryEstimate `json:"estimate,omitempty"`
}

// InquiryResult is a ready-to-open product inquiry link
type InquiryResult struct {
	Message string `json:"message"`
	URL     string `json:"url"`
}

// Checkout formats the cart into a WhatsApp order, records it and empties the
// cart. Recording is best-effort and never blocks the checkout.
func (s *Service) Checkout(ctx context.Context, sessionID string, sel location.SelectedLocation) (*Result, error) {
	c, totals, err := s.carts.GetTotals(ctx, sessionID, sel)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	dept, estimate := s.destination(sel)
	reference := order.GenerateReference(s.now().In(s.location()))

	summary := OrderSummary{
		Reference:             reference,
		Items:                 c.Items,
		Totals:                totals,
		Department:            dept,
		City:                  sel.City,
		Estimate:              estimate,
		FreeShippingThreshold: s.carts.FreeShippingThreshold(),
	}
	message := FormatOrderMessage(summary)

	result := &Result{
		Reference: reference,
		Message:   message,
		URL:       WhatsAppURL(s.phone, message),
		Totals:    totals,
		Estimate:  estimate,
	}

	s.record(ctx, sessionID, summary, message)

	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		s.logger.WithError(err).WithField("session_id", sessionID).Error("Failed to clear cart after checkout")
	}

	s.logger.WithFields(logrus.Fields{
		"reference":  reference,
		"session_id": sessionID,
		"items":      totals.TotalQuantity,
		"total":      totals.TotalAmount,
		"department": totals.Department,
	}).Info("WhatsApp checkout prepared")

	return result, nil
}

// Inquiry builds the single-product inquiry link
func (s *Service) Inquiry(ctx context.Context, productID int64, req *InquiryRequest) (*InquiryResult, error) {
	p, err := s.catalog.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	sel := location.SelectedLocation{Department: req.Department, City: req.City}
	dept, estimate := s.destination(sel)

	summary := InquirySummary{Product: p, Department: dept, City: req.City, Estimate: estimate}
	if v, ok := p.FindVariant(req.VariantID); ok {
		summary.Variant = v
	}

	price := p.Price
	if summary.Variant != nil && summary.Variant.Price > 0 {
		price = summary.Variant.Price
	}
	summary.FreeShipping = price >= s.carts.FreeShippingThreshold()

	message := FormatProductInquiry(summary)
	return &InquiryResult{Message: message, URL: WhatsAppURL(s.phone, message)}, nil
}

// destination resolves the selected department and its delivery estimate
func (s *Service) destination(sel location.SelectedLocation) (*location.Department, *location.DeliveryEstimate) {
	if !sel.HasDepartment() {
		return nil, nil
	}
	d, ok := s.table.Lookup(sel.Department)
	if !ok {
		return nil, nil
	}
	est := s.estimator.Estimate(d)
	return &d, &est
}

func (s *Service) location() *time.Location {
	return s.estimator.Today().Location()
}

func (s *Service) record(ctx context.Context, sessionID string, summary OrderSummary, message string) {
	if s.orders == nil {
		return
	}

	o := &order.Order{
		Reference:      summary.Reference,
		SessionID:      sessionID,
		SubtotalAmount: summary.Totals.SubTotal,
		ShippingAmount: summary.Totals.ShippingCost,
		TotalAmount:    summary.Totals.TotalAmount,
		FreeShipping:   summary.Totals.FreeShipping,
		City:           summary.City,
		Message:        message,
	}
	if summary.Department != nil {
		o.Department = summary.Department.Key
		o.DepartmentName = summary.Department.Name
	}
	if summary.Estimate != nil {
		date := summary.Estimate.Date
		o.EstimatedDelivery = &date
	}
	for _, item := range summary.Items {
		o.Items = append(o.Items, order.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			Name:        item.Name,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			TotalPrice:  item.Subtotal(),
		})
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		s.logger.WithError(err).WithField("reference", summary.Reference).Warn("Failed to record order, continuing checkout")
	}
}
