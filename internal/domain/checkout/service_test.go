package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/coupon"
	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/session"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	svc     *Service
	carts   *cart.Service
	coupons *coupon.Service
	jobs    *messaging.MemoryQueue
	store   session.Store
	buyer   *user.User
	product *product.Product
}

func setup(t *testing.T, stock int, price int64) *fixture {
	db := testdb.New(t,
		&user.User{}, &user.Profile{},
		&product.Category{}, &product.Product{},
		&cart.Cart{}, &cart.CartItem{},
		&coupon.Coupon{},
		&order.Order{}, &order.OrderItem{}, &order.OrderStatusHistory{},
		&inventory.Movement{},
	)
	client, _ := testdb.Redis(t)

	cfg := &config.Config{Checkout: config.CheckoutConfig{
		TaxRatePercent: 20,
		ShippingFee:    599,
		CompletionTTL:  time.Hour,
	}}
	log := logger.Discard()
	carts := cart.NewService(db, log)
	coupons := coupon.NewService(db, log)
	jobs := messaging.NewMemoryQueue(1, log)

	buyer := user.User{Username: "ada", Email: "ada@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&buyer).Error)

	cat := product.Category{Name: "Hardware", Slug: "hardware"}
	require.NoError(t, db.Create(&cat).Error)
	p := product.Product{Name: "Keyboard", Slug: "keyboard", CategoryID: cat.ID, Price: price, RegularPrice: price, Stock: stock, Available: true}
	require.NoError(t, db.Create(&p).Error)

	return &fixture{
		db:      db,
		svc:     NewService(db, cfg, carts, coupons, jobs, log),
		carts:   carts,
		coupons: coupons,
		jobs:    jobs,
		store:   session.NewRedisStore(client),
		buyer:   &buyer,
		product: &p,
	}
}

func (f *fixture) session(id string) *session.Session {
	return session.New(id, f.store, time.Hour)
}

func (f *fixture) actor() *Actor {
	return &Actor{UserID: f.buyer.ID, Email: f.buyer.Email}
}

func shippingDetails() *ShippingDetails {
	return &ShippingDetails{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "12 rue de la Paix",
		PostalCode: "75002",
		City:       "Paris",
	}
}

func (f *fixture) coupon(t *testing.T, code string, minPurchase string) {
	t.Helper()
	_, err := f.coupons.Create(context.Background(), &coupon.CreateRequest{
		Code:          code,
		DiscountType:  coupon.DiscountPercentage,
		DiscountValue: "10",
		MinPurchase:   minPurchase,
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidTo:       time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
}

func TestPlaceOrderRequiresActor(t *testing.T) {
	f := setup(t, 5, 1000)

	_, err := f.svc.PlaceOrder(context.Background(), nil, f.session("s1"), shippingDetails())
	assert.Equal(t, apperror.KindAuthentication, apperror.KindOf(err))
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	f := setup(t, 5, 1000)

	_, err := f.svc.PlaceOrder(context.Background(), f.actor(), f.session("s1"), shippingDetails())
	assert.ErrorIs(t, err, cart.ErrEmptyCart)

	var count int64
	f.db.Model(&order.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestPlaceOrderValidatesShipping(t *testing.T) {
	f := setup(t, 5, 1000)
	details := shippingDetails()
	details.City = "  "

	_, err := f.svc.PlaceOrder(context.Background(), f.actor(), f.session("s1"), details)
	assert.Equal(t, "city", apperror.FieldOf(err))
}

func TestPlaceOrderWithCoupon(t *testing.T) {
	f := setup(t, 5, 5000)
	ctx := context.Background()
	sess := f.session("s1")
	f.coupon(t, "SAVE10", "")

	_, err := f.carts.Add(ctx, sess.ID, f.product.ID, 2)
	require.NoError(t, err)
	_, err = f.coupons.Apply(ctx, sess, "save10", 10000)
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), summary.Totals.Discount)
	assert.Equal(t, int64(11399), summary.Totals.Total)

	o, err := f.svc.PlaceOrder(ctx, f.actor(), sess, shippingDetails())
	require.NoError(t, err)

	assert.True(t, o.Paid)
	assert.Equal(t, order.OrderStatusProcessing, o.Status)
	assert.Equal(t, int64(10000), o.Subtotal)
	assert.Equal(t, int64(1000), o.Discount)
	assert.Equal(t, int64(10800), o.Total)
	assert.Equal(t, "SAVE10", o.CouponCode)
	require.Len(t, o.Items, 1)
	assert.Equal(t, int64(5000), o.Items[0].Price)

	var stored product.Product
	require.NoError(t, f.db.First(&stored, f.product.ID).Error)
	assert.Equal(t, 3, stored.Stock)

	count, err := f.carts.Count(ctx, sess.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	var used coupon.Coupon
	require.NoError(t, f.db.Where("code = ?", "SAVE10").First(&used).Error)
	assert.Equal(t, 1, used.UsedCount)

	current, err := f.coupons.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, current)

	var profile user.Profile
	require.NoError(t, f.db.Where("user_id = ?", f.buyer.ID).First(&profile).Error)
	assert.Equal(t, "Paris", profile.City)

	var movements []inventory.Movement
	require.NoError(t, f.db.Where("reference_type = ? AND reference_id = ?", "order", o.ID).Find(&movements).Error)
	require.Len(t, movements, 1)
	assert.Equal(t, inventory.ReasonSale, movements[0].Reason)
	assert.Equal(t, 3, movements[0].NewQuantity)

	var history []order.OrderStatusHistory
	require.NoError(t, f.db.Where("order_id = ?", o.ID).Find(&history).Error)
	assert.Len(t, history, 1)

	published := f.jobs.Published()
	require.Len(t, published, 1)
	assert.Equal(t, messaging.TypeOrderPlaced, published[0].Type)
	var payload messaging.OrderPlaced
	require.NoError(t, published[0].Decode(&payload))
	assert.Equal(t, o.ID, payload.OrderID)

	completion, err := f.svc.ConsumeCompletion(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, o.ID, completion.OrderID)
	assert.Equal(t, int64(11399), completion.Total)
	assert.Equal(t, "ada@example.com", completion.Email)

	_, err = f.svc.ConsumeCompletion(ctx, sess)
	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestPlaceOrderIgnoresCouponBelowMinimum(t *testing.T) {
	f := setup(t, 5, 1000)
	ctx := context.Background()
	sess := f.session("s1")
	f.coupon(t, "BIG", "50")

	_, err := f.carts.Add(ctx, sess.ID, f.product.ID, 5)
	require.NoError(t, err)
	_, err = f.coupons.Apply(ctx, sess, "BIG", 5000)
	require.NoError(t, err)
	_, err = f.carts.Remove(ctx, sess.ID, f.product.ID)
	require.NoError(t, err)

	o, err := f.svc.PlaceOrder(ctx, f.actor(), sess, shippingDetails())
	require.NoError(t, err)
	assert.Zero(t, o.Discount)
	assert.Empty(t, o.CouponCode)
	assert.Equal(t, int64(4800), o.Total)

	var c coupon.Coupon
	require.NoError(t, f.db.Where("code = ?", "BIG").First(&c).Error)
	assert.Zero(t, c.UsedCount)
}

func TestPlaceOrderRollsBackOnInsufficientStock(t *testing.T) {
	f := setup(t, 5, 1000)
	ctx := context.Background()
	sess := f.session("s1")

	_, err := f.carts.Add(ctx, sess.ID, f.product.ID, 3)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&product.Product{}).Where("id = ?", f.product.ID).Update("stock", 2).Error)

	_, err = f.svc.PlaceOrder(ctx, f.actor(), sess, shippingDetails())
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, apperror.KindDomain, apperror.KindOf(err))

	var orders, items int64
	f.db.Model(&order.Order{}).Count(&orders)
	f.db.Model(&order.OrderItem{}).Count(&items)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	count, err := f.carts.Count(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Empty(t, f.jobs.Published())

	_, err = f.svc.ConsumeCompletion(ctx, sess)
	assert.ErrorIs(t, err, ErrNoCompletion)
}

func TestConcurrentCheckoutsSellLastUnitOnce(t *testing.T) {
	f := setup(t, 1, 1000)
	ctx := context.Background()

	sessions := []*session.Session{f.session("s1"), f.session("s2")}
	for _, sess := range sessions {
		_, err := f.carts.Add(ctx, sess.ID, f.product.ID, 1)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(sessions))
	for i, sess := range sessions {
		wg.Add(1)
		go func(i int, sess *session.Session) {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(ctx, f.actor(), sess, shippingDetails())
		}(i, sess)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, succeeded)

	var stored product.Product
	require.NoError(t, f.db.First(&stored, f.product.ID).Error)
	assert.Zero(t, stored.Stock)
}

func TestDiscountOf(t *testing.T) {
	c := &coupon.Coupon{DiscountType: coupon.DiscountFixed, DiscountValue: decimal.NewFromInt(15), MinPurchase: 2000}

	assert.Zero(t, discountOf(nil, 5000))
	assert.Zero(t, discountOf(c, 1999))
	assert.Equal(t, int64(1500), discountOf(c, 2000))
}
