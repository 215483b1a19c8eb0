package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReference(t *testing.T) {
	now := time.Date(2024, 11, 8, 15, 0, 0, 0, time.UTC)
	ref := GenerateReference(now)

	assert.Regexp(t, regexp.MustCompile(`^PD-20241108-[0-9A-F]{8}$`), ref)
	assert.NotEqual(t, ref, GenerateReference(now))
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusSent, OrderStatusConfirmed, true},
		{OrderStatusSent, OrderStatusCancelled, true},
		{OrderStatusSent, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusSent, false},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
	}
	for _, tt := range tests {
		o := &Order{Status: tt.from}
		assert.Equal(t, tt.want, o.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestOrderHelpers(t *testing.T) {
	o := &Order{
		Status: OrderStatusSent,
		Items:  []OrderItem{{Quantity: 2}, {Quantity: 3}},
	}
	assert.Equal(t, 5, o.ItemCount())
	assert.True(t, o.CanBeCancelled())
	assert.False(t, o.IsCompleted())

	o.AddStatusHistory(OrderStatusConfirmed, "ok", "admin@premiumdrop.co")
	if assert.Len(t, o.StatusHistory, 1) {
		assert.Equal(t, OrderStatusConfirmed, o.StatusHistory[0].Status)
	}

	o.Status = OrderStatusDelivered
	assert.False(t, o.CanBeCancelled())
	assert.True(t, o.IsCompleted())
}

func TestListHelpers(t *testing.T) {
	req := &OrderListRequest{Page: 0, Limit: 500}
	normalizeListRequest(req)
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.Limit)

	assert.Equal(t, Pagination{Page: 2, Limit: 20, Total: 45, TotalPages: 3, HasNext: true, HasPrev: true}, paginate(2, 20, 45))
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, paginate(1, 20, 0))

	assert.Equal(t, "created_at desc", buildOrderClause("drop table", "sideways"))
	assert.Equal(t, "total_amount asc", buildOrderClause("total_amount", "asc"))
}
