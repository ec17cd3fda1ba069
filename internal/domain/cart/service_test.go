package cart

import (
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	product *product.Product
}

func setup(t *testing.T, stock int, price int64) *fixture {
	db := testdb.New(t, &product.Category{}, &product.Product{}, &Cart{}, &CartItem{})

	cat := product.Category{Name: "Hardware", Slug: "hardware"}
	require.NoError(t, db.Create(&cat).Error)

	p := product.Product{Name: "Keyboard", Slug: "keyboard", CategoryID: cat.ID, Price: price, RegularPrice: price, Stock: stock, Available: true}
	require.NoError(t, db.Create(&p).Error)

	return &fixture{db: db, svc: NewService(db, logger.Discard()), product: &p}
}

func TestAddCreatesThenIncrementsLine(t *testing.T) {
	f := setup(t, 5, 2500)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	require.NoError(t, err)
	summary, err := f.svc.Add(ctx, "sess-1", f.product.ID, 1)
	require.NoError(t, err)

	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, int64(7500), summary.Total)
	assert.Equal(t, 3, summary.Count)
}

func TestAddCoercesQuantityToOne(t *testing.T) {
	f := setup(t, 5, 100)

	summary, err := f.svc.Add(context.Background(), "sess-1", f.product.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
}

func TestAddRejectsStockViolations(t *testing.T) {
	f := setup(t, 3, 100)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "sess-1", f.product.ID, 4)
	assert.ErrorIs(t, err, ErrQuantityExceedsStock)

	_, err = f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	assert.ErrorIs(t, err, ErrQuantityExceedsStock, "resulting quantity is checked")

	require.NoError(t, f.db.Model(f.product).Update("stock", 0).Error)
	_, err = f.svc.Add(ctx, "sess-2", f.product.ID, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, apperror.KindDomain, apperror.KindOf(err))
}

func TestAddRejectsUnavailableProduct(t *testing.T) {
	f := setup(t, 3, 100)
	require.NoError(t, f.db.Model(f.product).Update("available", false).Error)

	_, err := f.svc.Add(context.Background(), "sess-1", f.product.ID, 1)
	assert.ErrorIs(t, err, ErrOutOfStock)
}

func TestAddRejectsOwnProduct(t *testing.T) {
	f := setup(t, 3, 100)
	vendorID := uint(9)
	require.NoError(t, f.db.Model(f.product).Update("vendor_id", vendorID).Error)

	_, err := f.svc.Add(context.Background(), "sess-1", f.product.ID, 1, AsVendor(vendorID))
	assert.ErrorIs(t, err, ErrOwnProduct)

	_, err = f.svc.Add(context.Background(), "sess-1", f.product.ID, 1, AsVendor(10))
	assert.NoError(t, err)
}

func TestSetQuantityIgnoresInvalidValues(t *testing.T) {
	f := setup(t, 4, 100)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	require.NoError(t, err)

	for _, q := range []int{0, -1, 5} {
		summary, err := f.svc.SetQuantity(ctx, "sess-1", f.product.ID, q)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Count, "quantity %d must be ignored", q)
	}

	summary, err := f.svc.SetQuantity(ctx, "sess-1", f.product.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Count)
}

func TestRemoveDecrementsThenDeletes(t *testing.T) {
	f := setup(t, 4, 100)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	require.NoError(t, err)

	summary, err := f.svc.Remove(ctx, "sess-1", f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)

	summary, err = f.svc.Remove(ctx, "sess-1", f.product.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	_, err = f.svc.Remove(ctx, "sess-1", f.product.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestClearKeepsCart(t *testing.T) {
	f := setup(t, 4, 100)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, "sess-1", f.product.ID, 2)
	require.NoError(t, err)
	require.NoError(t, f.svc.Clear(ctx, "sess-1"))

	count, err := f.svc.Count(ctx, "sess-1")
	require.NoError(t, err)
	assert.Zero(t, count)

	var carts int64
	f.db.Model(&Cart{}).Where("id = ?", "sess-1").Count(&carts)
	assert.Equal(t, int64(1), carts)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	f := setup(t, 1, 100)
	ctx := context.Background()

	first, err := f.svc.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	second, err := f.svc.GetOrCreate(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestBuyNowReplacesCart(t *testing.T) {
	f := setup(t, 5, 1000)
	ctx := context.Background()

	other := product.Product{Name: "Mouse", Slug: "mouse", CategoryID: f.product.CategoryID, Price: 500, RegularPrice: 500, Stock: 2, Available: true}
	require.NoError(t, f.db.Create(&other).Error)

	_, err := f.svc.Add(ctx, "sess-1", other.ID, 2)
	require.NoError(t, err)

	summary, err := f.svc.BuyNow(ctx, "sess-1", f.product.ID, 3)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, f.product.ID, summary.Items[0].ProductID)
	assert.Equal(t, int64(3000), summary.Total)

	_, err = f.svc.BuyNow(ctx, "sess-1", f.product.ID, 6)
	require.Error(t, err)
	assert.Equal(t, "quantity", apperror.FieldOf(err))
}
