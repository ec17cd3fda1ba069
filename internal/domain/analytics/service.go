// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"gorm.io/gorm"
)

// LowStockThreshold is the stock level at which a product counts as low
const LowStockThreshold = 5

// Service computes the admin dashboard figures
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// DashboardStats represents overall dashboard statistics. Amounts are
// order totals in cents, cancelled orders excluded.
type DashboardStats struct {
	TotalRevenue     int64   `json:"total_revenue"`
	RevenueToday     int64   `json:"revenue_today"`
	RevenueThisMonth int64   `json:"revenue_this_month"`
	RevenueGrowth    float64 `json:"revenue_growth"` // percent, this month vs last month

	TotalOrders     int64 `json:"total_orders"`
	OrdersToday     int64 `json:"orders_today"`
	OrdersThisMonth int64 `json:"orders_this_month"`
	AvgOrderValue   int64 `json:"avg_order_value"`

	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	NewUsersThisMonth int64 `json:"new_users_this_month"`

	TotalProducts      int64 `json:"total_products"`
	AvailableProducts  int64 `json:"available_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
	LowStockProducts   int64 `json:"low_stock_products"`

	PendingVendors  int64 `json:"pending_vendors"`
	ApprovedVendors int64 `json:"approved_vendors"`
}

// SalesAnalytics represents sales over a period
type SalesAnalytics struct {
	Days          int                `json:"days"`
	DailyRevenue  []TimeSeriesData   `json:"daily_revenue"`
	TotalSales    int64              `json:"total_sales"`
	TotalRevenue  int64              `json:"total_revenue"`
	AvgOrderValue int64              `json:"avg_order_value"`
	TopProducts   []ProductSalesData `json:"top_products"`
	SalesByStatus []StatusData       `json:"sales_by_status"`
}

type TimeSeriesData struct {
	Date  string `json:"date"`
	Value int64  `json:"value"`
	Count int64  `json:"count"`
}

type ProductSalesData struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_sold"`
	Revenue     int64  `json:"revenue"`
	OrderCount  int64  `json:"order_count"`
}

type StatusData struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Value  int64  `json:"value"`
}

type counter struct {
	dest  *int64
	query *gorm.DB
}

// GetDashboardStats retrieves overall dashboard statistics
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := s.now()

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonth := thisMonth.AddDate(0, -1, 0)

	db := s.db.WithContext(ctx)
	orders := func() *gorm.DB {
		return db.Model(&order.Order{}).Where("status <> ?", order.OrderStatusCancelled)
	}
	revenue := func(q *gorm.DB) *gorm.DB {
		return q.Select("COALESCE(SUM(total), 0)")
	}

	var lastMonthRevenue int64
	sums := []counter{
		{&stats.TotalRevenue, revenue(orders())},
		{&stats.RevenueToday, revenue(orders().Where("created_at >= ?", today))},
		{&stats.RevenueThisMonth, revenue(orders().Where("created_at >= ?", thisMonth))},
		{&lastMonthRevenue, revenue(orders().Where("created_at >= ? AND created_at < ?", lastMonth, thisMonth))},
	}
	for _, c := range sums {
		if err := c.query.Scan(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute revenue: %w", err)
		}
	}

	counts := []counter{
		{&stats.TotalOrders, orders()},
		{&stats.OrdersToday, orders().Where("created_at >= ?", today)},
		{&stats.OrdersThisMonth, orders().Where("created_at >= ?", thisMonth)},
		{&stats.TotalUsers, db.Model(&user.User{})},
		{&stats.ActiveUsers, db.Model(&user.User{}).Where("is_active = ?", true)},
		{&stats.NewUsersThisMonth, db.Model(&user.User{}).Where("created_at >= ?", thisMonth)},
		{&stats.TotalProducts, db.Model(&product.Product{})},
		{&stats.AvailableProducts, db.Model(&product.Product{}).Where("available = ?", true)},
		{&stats.OutOfStockProducts, db.Model(&product.Product{}).Where("stock = 0")},
		{&stats.LowStockProducts, db.Model(&product.Product{}).Where("stock > 0 AND stock <= ?", LowStockThreshold)},
		{&stats.PendingVendors, db.Model(&vendor.Vendor{}).Where("status = ?", vendor.StatusPending)},
		{&stats.ApprovedVendors, db.Model(&vendor.Vendor{}).Where("status = ?", vendor.StatusApproved)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to compute dashboard counts: %w", err)
		}
	}

	if lastMonthRevenue > 0 {
		stats.RevenueGrowth = float64(stats.RevenueThisMonth-lastMonthRevenue) / float64(lastMonthRevenue) * 100
	}
	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / stats.TotalOrders
	}

	return stats, nil
}

// GetSalesAnalytics retrieves sales of the last days days (30 by default)
func (s *Service) GetSalesAnalytics(ctx context.Context, days int) (*SalesAnalytics, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	startDate := s.now().AddDate(0, 0, -days)
	db := s.db.WithContext(ctx)

	analytics := &SalesAnalytics{Days: days}

	err := db.Model(&order.Order{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(total), 0) AS value, COUNT(*) AS count").
		Where("created_at >= ? AND status <> ?", startDate, order.OrderStatusCancelled).
		Group("DATE(created_at)").
		Order("date").
		Scan(&analytics.DailyRevenue).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue: %w", err)
	}

	period := func() *gorm.DB {
		return db.Model(&order.Order{}).Where("created_at >= ? AND status <> ?", startDate, order.OrderStatusCancelled)
	}
	if err := period().Count(&analytics.TotalSales).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}
	if err := period().Select("COALESCE(SUM(total), 0)").Scan(&analytics.TotalRevenue).Error; err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	if analytics.TotalSales > 0 {
		analytics.AvgOrderValue = analytics.TotalRevenue / analytics.TotalSales
	}

	err = db.Table("order_items AS oi").
		Select(`oi.product_id AS product_id,
			MAX(oi.product_name) AS product_name,
			COALESCE(SUM(oi.quantity), 0) AS total_sold,
			COALESCE(SUM(oi.price * oi.quantity), 0) AS revenue,
			COUNT(DISTINCT o.id) AS order_count`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.created_at >= ? AND o.status <> ?", startDate, order.OrderStatusCancelled).
		Group("oi.product_id").
		Order("revenue DESC, oi.product_id ASC").
		Limit(10).
		Scan(&analytics.TopProducts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}

	err = db.Model(&order.Order{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total), 0) AS value").
		Where("created_at >= ?", startDate).
		Group("status").
		Order("count DESC").
		Scan(&analytics.SalesByStatus).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by status: %w", err)
	}

	return analytics, nil
}
