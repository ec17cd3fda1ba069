package analytics

import (
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seed(t *testing.T) *gorm.DB {
	db := testdb.New(t,
		&user.User{}, &user.Profile{}, &vendor.Vendor{},
		&product.Category{}, &product.Product{},
		&order.Order{}, &order.OrderItem{},
	)

	u := user.User{Username: "ada", Email: "ada@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	require.NoError(t, db.Create(&user.User{Username: "bob", Email: "bob@example.com", Password: "x"}).Error)

	profile := user.Profile{UserID: u.ID, Country: user.DefaultCountry}
	require.NoError(t, db.Create(&profile).Error)
	require.NoError(t, db.Create(&vendor.Vendor{ProfileID: profile.ID, ShopName: "Shop", Description: "d", IdentityDocument: "x.pdf", Status: vendor.StatusPending}).Error)

	cat := product.Category{Name: "Books", Slug: "books"}
	require.NoError(t, db.Create(&cat).Error)
	products := []product.Product{
		{Name: "Go", Slug: "go", CategoryID: cat.ID, Price: 3000, RegularPrice: 3000, Stock: 0, Available: true},
		{Name: "C", Slug: "c", CategoryID: cat.ID, Price: 2000, RegularPrice: 2000, Stock: 3, Available: true},
		{Name: "Rust", Slug: "rust", CategoryID: cat.ID, Price: 4000, RegularPrice: 4000, Stock: 50, Available: false},
	}
	require.NoError(t, db.Create(&products).Error)

	place := func(status order.OrderStatus, p product.Product, qty int) {
		total := p.Price * int64(qty) * 12 / 10
		o := order.Order{UserID: &u.ID, FirstName: "A", LastName: "L", Email: u.Email, Address: "1", PostalCode: "1", City: "P",
			Paid: true, Status: status, Subtotal: p.Price * int64(qty), Total: total}
		require.NoError(t, db.Create(&o).Error)
		require.NoError(t, db.Create(&order.OrderItem{OrderID: o.ID, ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: qty}).Error)
	}
	place(order.OrderStatusProcessing, products[0], 2) // 7200
	place(order.OrderStatusDelivered, products[1], 1)  // 2400
	place(order.OrderStatusCancelled, products[2], 5)  // excluded

	return db
}

func TestGetDashboardStats(t *testing.T) {
	svc := NewService(seed(t))

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(9600), stats.TotalRevenue)
	assert.Equal(t, int64(9600), stats.RevenueThisMonth)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(4800), stats.AvgOrderValue)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.ActiveUsers)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(2), stats.AvailableProducts)
	assert.Equal(t, int64(1), stats.OutOfStockProducts)
	assert.Equal(t, int64(1), stats.LowStockProducts)
	assert.Equal(t, int64(1), stats.PendingVendors)
	assert.Zero(t, stats.ApprovedVendors)
}

func TestGetSalesAnalytics(t *testing.T) {
	svc := NewService(seed(t))

	sales, err := svc.GetSalesAnalytics(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 30, sales.Days)
	assert.Equal(t, int64(2), sales.TotalSales)
	assert.Equal(t, int64(9600), sales.TotalRevenue)

	require.Len(t, sales.TopProducts, 2)
	assert.Equal(t, "Go", sales.TopProducts[0].ProductName)
	assert.Equal(t, int64(2), sales.TopProducts[0].TotalSold)
	assert.Equal(t, int64(6000), sales.TopProducts[0].Revenue)

	assert.Len(t, sales.SalesByStatus, 3)
}
