// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/premiumdrop/storefront/internal/domain/order"
	"gorm.io/gorm"
)

const (
	defaultDays = 30
	maxDays     = 366
	topLimit    = 10
)

// Service reports on the WhatsApp order log
type Service struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewService creates a new analytics service. Days are bucketed in loc.
func NewService(db *gorm.DB, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{db: db, loc: loc, now: time.Now}
}

// SalesAnalytics summarizes orders sent over a period. Amounts are COP.
type SalesAnalytics struct {
	From             time.Time        `json:"from"`
	Days             int              `json:"days"`
	TotalOrders      int64            `json:"total_orders"`
	TotalRevenue     int64            `json:"total_revenue"`
	AvgOrderValue    int64            `json:"avg_order_value"`
	FreeShippingRate float64          `json:"free_shipping_rate"` // Percentage
	Growth           float64          `json:"growth"`             // Revenue vs previous period, percentage
	DailyRevenue     []TimeSeriesData `json:"daily_revenue"`
	SalesByStatus    []StatusData     `json:"sales_by_status"`
	ByDepartment     []DepartmentData `json:"by_department"`
	TopProducts      []ProductData    `json:"top_products"`
}

// TimeSeriesData is one day of orders
type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count"`
}

// StatusData aggregates orders per status
type StatusData struct {
	Status order.OrderStatus `json:"status"`
	Count  int64             `json:"count"`
	Value  int64             `json:"value"`
}

// DepartmentData aggregates orders per destination department
type DepartmentData struct {
	Department     string `json:"department"`
	DepartmentName string `json:"department_name"`
	Count          int64  `json:"count"`
	Value          int64  `json:"value"`
	Shipping       int64  `json:"shipping"`
}

// ProductData aggregates units sold per catalog product
type ProductData struct {
	ProductID  int64  `json:"product_id"`
	Name       string `json:"name"`
	TotalSold  int64  `json:"total_sold"`
	Revenue    int64  `json:"revenue"`
	OrderCount int64  `json:"order_count"`
}

// Period returns the normalized day count and the local midnight the period
// starts at. The period includes today.
func (s *Service) Period(days int) (int, time.Time) {
	if days <= 0 {
		days = defaultDays
	}
	if days > maxDays {
		days = maxDays
	}
	n := s.now().In(s.loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, s.loc)
	return days, today.AddDate(0, 0, -(days - 1))
}

// Growth is the percentage change from previous to current
func Growth(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// GetSalesAnalytics aggregates non-cancelled orders of the last days
func (s *Service) GetSalesAnalytics(ctx context.Context, days int) (*SalesAnalytics, error) {
	days, from := s.Period(days)
	prevFrom := from.AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)

	analytics := &SalesAnalytics{From: from, Days: days}
	active := db.Model(&order.Order{}).
		Where("created_at >= ? AND status <> ?", from, order.OrderStatusCancelled)

	var summary struct {
		Orders       int64
		Revenue      int64
		FreeShipping int64
	}
	err := active.Session(&gorm.Session{}).
		Select("COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS revenue, " +
			"COALESCE(SUM(CASE WHEN free_shipping THEN 1 ELSE 0 END), 0) AS free_shipping").
		Scan(&summary).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales summary: %w", err)
	}
	analytics.TotalOrders = summary.Orders
	analytics.TotalRevenue = summary.Revenue
	if summary.Orders > 0 {
		analytics.AvgOrderValue = summary.Revenue / summary.Orders
		analytics.FreeShippingRate = float64(summary.FreeShipping) / float64(summary.Orders) * 100
	}

	var previous int64
	err = db.Model(&order.Order{}).
		Where("created_at >= ? AND created_at < ? AND status <> ?", prevFrom, from, order.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&previous).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get previous period revenue: %w", err)
	}
	analytics.Growth = Growth(summary.Revenue, previous)

	// Bucket by the store's calendar day, not the database server's
	err = active.Session(&gorm.Session{}).
		Select("TO_CHAR(created_at AT TIME ZONE ?, 'YYYY-MM-DD') AS date, "+
			"COALESCE(SUM(total_amount), 0) AS value, COUNT(*) AS count", s.loc.String()).
		Group("date").Order("date").
		Scan(&analytics.DailyRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}

	err = db.Model(&order.Order{}).
		Where("created_at >= ?", from).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS value").
		Group("status").Order("count DESC").
		Scan(&analytics.SalesByStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by status: %w", err)
	}

	err = active.Session(&gorm.Session{}).
		Select("department, department_name, COUNT(*) AS count, " +
			"COALESCE(SUM(total_amount), 0) AS value, COALESCE(SUM(shipping_amount), 0) AS shipping").
		Group("department, department_name").Order("value DESC").
		Scan(&analytics.ByDepartment).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by department: %w", err)
	}

	err = db.Table("order_items AS oi").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.created_at >= ? AND o.status <> ? AND o.deleted_at IS NULL", from, order.OrderStatusCancelled).
		Select("oi.product_id, MAX(oi.name) AS name, COALESCE(SUM(oi.quantity), 0) AS total_sold, " +
			"COALESCE(SUM(oi.total_price), 0) AS revenue, COUNT(DISTINCT o.id) AS order_count").
		Group("oi.product_id").Order("revenue DESC").Limit(topLimit).
		Scan(&analytics.TopProducts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}

	return analytics, nil
}
