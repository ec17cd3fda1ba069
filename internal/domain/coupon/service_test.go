package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/hackerz/marketplace/internal/pkg/session"
	"github.com/hackerz/marketplace/internal/pkg/testdb"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *session.Session) {
	db := testdb.New(t, &Coupon{})
	client, _ := testdb.Redis(t)
	return NewService(db, logger.Discard()), db, session.New("sess-1", session.NewRedisStore(client), time.Hour)
}

func createCoupon(t *testing.T, svc *Service, code string, mutate func(*CreateRequest)) *Coupon {
	req := &CreateRequest{
		Code:          code,
		DiscountType:  DiscountPercentage,
		DiscountValue: "10",
		ValidFrom:     time.Now().Add(-time.Hour),
		ValidTo:       time.Now().Add(24 * time.Hour),
	}
	if mutate != nil {
		mutate(req)
	}
	c, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return c
}

func TestApplyStoresCouponInSession(t *testing.T) {
	svc, _, sess := newTestService(t)
	ctx := context.Background()
	createCoupon(t, svc, "save10", nil)

	res, err := svc.Apply(ctx, sess, "  save10 ", 20000)
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", res.Code)
	assert.Equal(t, int64(2000), res.Discount)
	assert.Equal(t, int64(18000), res.NewTotal)

	current, err := svc.Current(ctx, sess)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "SAVE10", current.Code)

	require.NoError(t, svc.Remove(ctx, sess))
	current, err = svc.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestApplyRejections(t *testing.T) {
	svc, db, sess := newTestService(t)
	ctx := context.Background()
	createCoupon(t, svc, "BIGSPENDER", func(r *CreateRequest) { r.MinPurchase = "100" })
	expired := createCoupon(t, svc, "OLD", nil)
	require.NoError(t, db.Model(expired).Update("valid_to", time.Now().Add(-time.Minute)).Error)

	_, err := svc.Apply(ctx, sess, "", 1000)
	assert.ErrorIs(t, err, ErrCodeRequired)

	_, err = svc.Apply(ctx, sess, "NOPE", 1000)
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.Apply(ctx, sess, "BIGSPENDER", 9999)
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Contains(t, apperror.MessageOf(err), "100.00")

	_, err = svc.Apply(ctx, sess, "OLD", 1000)
	require.Error(t, err)
	assert.Equal(t, ReasonExpired, apperror.MessageOf(err))

	current, err := svc.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, current, "rejected coupons are not stored")
}

func TestCurrentDropsCouponThatBecameInvalid(t *testing.T) {
	svc, _, sess := newTestService(t)
	ctx := context.Background()
	c := createCoupon(t, svc, "FLASH", nil)

	_, err := svc.Apply(ctx, sess, "FLASH", 1000)
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, c.ID))

	current, err := svc.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, current)

	var applied Applied
	found, err := sess.Load(ctx, SessionKey, &applied)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestValidateReportsWithoutApplying(t *testing.T) {
	svc, _, sess := newTestService(t)
	ctx := context.Background()
	createCoupon(t, svc, "FIVER", func(r *CreateRequest) {
		r.DiscountType = DiscountFixed
		r.DiscountValue = "5"
		r.MinPurchase = "20"
	})

	res, err := svc.Validate(ctx, "fiver", 0)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "fixed", res.DiscountType)
	assert.Equal(t, 5.0, res.DiscountValue)
	assert.Equal(t, 20.0, res.MinPurchase)

	res, err = svc.Validate(ctx, "missing", 0)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrInvalidCode.Message, res.Message)

	current, err := svc.Current(ctx, sess)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestConsumeHonoursMaxUses(t *testing.T) {
	svc, db, _ := newTestService(t)
	c := createCoupon(t, svc, "ONCE", func(r *CreateRequest) { r.MaxUses = 1 })

	require.NoError(t, Consume(db, c.ID))
	assert.ErrorIs(t, Consume(db, c.ID), ErrExhausted)

	var reloaded Coupon
	require.NoError(t, db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	createCoupon(t, svc, "DUP", nil)

	_, err := svc.Create(ctx, &CreateRequest{Code: "dup", DiscountType: DiscountFixed, DiscountValue: "1",
		ValidFrom: time.Now(), ValidTo: time.Now().Add(time.Hour)})
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	_, err = svc.Create(ctx, &CreateRequest{Code: "X", DiscountType: DiscountPercentage, DiscountValue: "150",
		ValidFrom: time.Now(), ValidTo: time.Now().Add(time.Hour)})
	assert.Equal(t, "discount_value", apperror.FieldOf(err))

	_, err = svc.Create(ctx, &CreateRequest{Code: "Y", DiscountType: "bogus", DiscountValue: "1",
		ValidFrom: time.Now(), ValidTo: time.Now().Add(time.Hour)})
	assert.Equal(t, "discount_type", apperror.FieldOf(err))

	c := createCoupon(t, svc, "exact", func(r *CreateRequest) { r.DiscountValue = "12.50" })
	assert.True(t, c.DiscountValue.Equal(decimal.RequireFromString("12.5")))
}
