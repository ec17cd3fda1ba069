package order

import (
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*Service, *gorm.DB, *product.Product) {
	db := testdb.New(t, &product.Category{}, &product.Product{}, &Order{}, &OrderItem{}, &OrderStatusHistory{}, &inventory.Movement{})

	cat := product.Category{Name: "Books", Slug: "books"}
	require.NoError(t, db.Create(&cat).Error)
	p := product.Product{Name: "Hacker's Delight", Slug: "hackers-delight", CategoryID: cat.ID, Price: 4500, RegularPrice: 4500, Stock: 8, Available: true}
	require.NoError(t, db.Create(&p).Error)

	return NewService(db, logger.Discard()), db, &p
}

func placeOrder(t *testing.T, db *gorm.DB, userID uint, p *product.Product, qty int) *Order {
	o := Order{
		UserID:    &userID,
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Address: "1 rue du Code", PostalCode: "75001", City: "Paris",
		Paid: true, Status: OrderStatusProcessing,
		Subtotal: p.Price * int64(qty), Total: p.Price * int64(qty) * 12 / 10,
		Items: []OrderItem{{ProductID: p.ID, ProductName: p.Name, Price: p.Price, Quantity: qty}},
	}
	require.NoError(t, db.Create(&o).Error)
	return &o
}

func TestGetForUserHidesOtherUsersOrders(t *testing.T) {
	svc, db, p := setup(t)
	ctx := context.Background()
	o := placeOrder(t, db, 1, p, 1)

	got, err := svc.GetForUser(ctx, o.ID, 1)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = svc.GetForUser(ctx, o.ID, 2)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestItemPriceIsCaptured(t *testing.T) {
	svc, db, p := setup(t)
	o := placeOrder(t, db, 1, p, 2)

	require.NoError(t, db.Model(p).Update("price", 9900).Error)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(9000), got.ItemsTotal())
}

func TestStatusWorkflow(t *testing.T) {
	svc, db, p := setup(t)
	ctx := context.Background()
	o := placeOrder(t, db, 1, p, 1)
	admin := uint(99)

	_, err := svc.UpdateStatus(ctx, o.ID, &StatusUpdateRequest{Status: OrderStatusDelivered}, &admin)
	require.Error(t, err)
	assert.Equal(t, apperror.KindDomain, apperror.KindOf(err))

	got, err := svc.UpdateStatus(ctx, o.ID, &StatusUpdateRequest{Status: OrderStatusShipped, Comment: "DHL"}, &admin)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, got.Status)
	require.Len(t, got.StatusHistory, 1)
	assert.Equal(t, "DHL", got.StatusHistory[0].Comment)

	_, err = svc.Cancel(ctx, o.ID, "too late", &admin)
	assert.ErrorIs(t, err, ErrCannotBeCancelled)

	_, err = svc.UpdateStatus(ctx, o.ID, &StatusUpdateRequest{Status: "lost"}, &admin)
	assert.Equal(t, "status", apperror.FieldOf(err))
}

func TestCancelRestoresStockOnce(t *testing.T) {
	svc, db, p := setup(t)
	ctx := context.Background()
	o := placeOrder(t, db, 1, p, 3)

	got, err := svc.UpdateStatus(ctx, o.ID, &StatusUpdateRequest{Status: OrderStatusCancelled, Comment: "customer request"}, nil)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, got.Status)

	_, err = svc.Cancel(ctx, o.ID, "", nil)
	assert.ErrorIs(t, err, ErrCannotBeCancelled)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 11, reloaded.Stock)

	var movements []inventory.Movement
	require.NoError(t, db.Where("product_id = ?", p.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.MovementTypeInbound, movements[0].MovementType)
	assert.Equal(t, inventory.ReasonCancellation, movements[0].Reason)
	assert.Equal(t, 3, movements[0].Quantity)
}

func TestCancelSkipsDeletedProducts(t *testing.T) {
	svc, db, p := setup(t)
	ctx := context.Background()

	other := product.Product{Name: "SICP", Slug: "sicp", CategoryID: p.CategoryID, Price: 3000, RegularPrice: 3000, Stock: 4, Available: true}
	require.NoError(t, db.Create(&other).Error)

	o := placeOrder(t, db, 1, p, 2)
	require.NoError(t, db.Create(&OrderItem{OrderID: o.ID, ProductID: other.ID, ProductName: other.Name, Price: other.Price, Quantity: 1}).Error)

	require.NoError(t, product.NewService(db, logger.Discard()).Delete(ctx, p.ID))

	got, err := svc.Cancel(ctx, o.ID, "changed my mind", nil)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, got.Status)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, other.ID).Error)
	assert.Equal(t, 5, reloaded.Stock)

	var movements int64
	require.NoError(t, db.Model(&inventory.Movement{}).Count(&movements).Error)
	assert.Equal(t, int64(1), movements)
}

func TestListForUser(t *testing.T) {
	svc, db, p := setup(t)
	placeOrder(t, db, 1, p, 1)
	placeOrder(t, db, 1, p, 2)
	placeOrder(t, db, 2, p, 1)

	res, err := svc.ListForUser(context.Background(), 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Pagination.Total)
	assert.Len(t, res.Orders, 2)
}

func TestTransitions(t *testing.T) {
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusProcessing))
	assert.True(t, CanTransition(OrderStatusShipped, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusPending))
	assert.False(t, CanTransition(OrderStatusCancelled, OrderStatusProcessing))
}
