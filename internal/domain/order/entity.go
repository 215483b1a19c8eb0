// internal/domain/order/entity.go
package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

// OrderStatus represents the order status
type OrderStatus string

const (
	// OrderStatusSent means the message was handed to WhatsApp and the sales
	// team has not confirmed the order yet.
	OrderStatusSent       OrderStatus = "sent"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a checkout recorded when the shopper was sent to WhatsApp
type Order struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	Reference string      `gorm:"uniqueIndex;not null;size:50" json:"reference"`
	SessionID string      `gorm:"index;size:64" json:"session_id"`
	Status    OrderStatus `gorm:"not null;default:'sent'" json:"status"`

	// Financial Information, in COP
	SubtotalAmount int64  `gorm:"not null" json:"subtotal_amount"`
	ShippingAmount int64  `gorm:"default:0" json:"shipping_amount"`
	TotalAmount    int64  `gorm:"not null" json:"total_amount"`
	FreeShipping   bool   `gorm:"default:false" json:"free_shipping"`
	Currency       string `gorm:"size:3;default:'COP'" json:"currency"`

	// Destination
	Department        string     `gorm:"size:50" json:"department"`
	DepartmentName    string     `gorm:"size:100" json:"department_name"`
	City              string     `gorm:"size:100" json:"city"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`

	// Message is the exact text sent to WhatsApp
	Message string `gorm:"type:text" json:"message"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem represents items in an order
type OrderItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"not null;index" json:"order_id"`
	ProductID   int64     `gorm:"not null;index" json:"product_id"`
	VariantID   string    `gorm:"size:100" json:"variant_id"`
	Name        string    `gorm:"not null;size:255" json:"name"`
	VariantName string    `gorm:"size:255" json:"variant_name"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Price       int64     `gorm:"not null" json:"price"`       // Unit price in COP
	TotalPrice  int64     `gorm:"not null" json:"total_price"` // Quantity * Price
	CreatedAt   time.Time `json:"created_at"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedBy string      `gorm:"size:255" json:"created_by"`
	CreatedAt time.Time   `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// Business methods for Order

// GenerateReference creates the shopper-facing order reference.
// Format: PD-YYYYMMDD-XXXXXXXX
func GenerateReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("PD-%s-%s", now.Format("20060102"), suffix)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusSent ||
		o.Status == OrderStatusConfirmed ||
		o.Status == OrderStatusProcessing
}

// IsCompleted checks if order is completed
func (o *Order) IsCompleted() bool {
	return o.Status == OrderStatusDelivered
}

// ItemCount is the sum of item quantities
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status OrderStatus, comment, createdBy string) {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	})
}

var validTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusSent:       {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransitionTo reports whether the status change is allowed
func (o *Order) CanTransitionTo(to OrderStatus) bool {
	for _, s := range validTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}
