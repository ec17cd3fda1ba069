// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/coupon"
	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/session"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CompletionKey is the session entry read once by the success page
const CompletionKey = "order_complete"

var (
	ErrInsufficientStock = inventory.ErrInsufficientStock
	ErrNoCompletion      = apperror.NotFound("no recently completed order")
)

// Actor is the authenticated buyer
type Actor struct {
	UserID uint
	Email  string
}

// ShippingDetails is the payment form
type ShippingDetails struct {
	FirstName  string `json:"first_name" form:"first_name" validate:"required,max=50"`
	LastName   string `json:"last_name" form:"last_name" validate:"required,max=50"`
	Email      string `json:"email" form:"email" validate:"required,email,max=254"`
	Address    string `json:"address" form:"address" validate:"required,max=250"`
	PostalCode string `json:"postal_code" form:"postal_code" validate:"required,max=20"`
	City       string `json:"city" form:"city" validate:"required,max=100"`
}

// Completion is the marker left in the session after a successful order
type Completion struct {
	OrderID uint   `json:"order_id"`
	Total   int64  `json:"total"`
	Email   string `json:"email"`
}

// Summary is the checkout page: cart lines, applied coupon and totals
type Summary struct {
	Cart   *cart.Summary  `json:"cart"`
	Coupon *coupon.Coupon `json:"coupon,omitempty"`
	Totals order.Totals   `json:"totals"`
}

// Service turns a cart into an order
type Service struct {
	db            *gorm.DB
	carts         *cart.Service
	coupons       *coupon.Service
	jobs          messaging.Publisher
	pricing       order.Pricing
	completionTTL time.Duration
	logger        *logrus.Logger
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, cfg *config.Config, carts *cart.Service, coupons *coupon.Service, jobs messaging.Publisher, logger *logrus.Logger) *Service {
	return &Service{
		db:            db,
		carts:         carts,
		coupons:       coupons,
		jobs:          jobs,
		pricing:       order.NewPricing(cfg.Checkout),
		completionTTL: cfg.Checkout.CompletionTTL,
		logger:        logger,
	}
}

// Summary computes the checkout page for the session cart
func (s *Service) Summary(ctx context.Context, sess *session.Session) (*Summary, error) {
	cartSummary, err := s.carts.Summary(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	c, err := s.coupons.Current(ctx, sess)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Cart:   cartSummary,
		Coupon: c,
		Totals: s.pricing.Compute(cartSummary.Total, discountOf(c, cartSummary.Total)),
	}, nil
}

// PlaceOrder converts the session cart into a paid order. Stock, coupon
// usage, cart lines and the order are written in one transaction; the
// invoice and the confirmation email are left to the job queue.
func (s *Service) PlaceOrder(ctx context.Context, actor *Actor, sess *session.Session, shipping *ShippingDetails) (*order.Order, error) {
	if actor == nil {
		return nil, apperror.ErrAuthenticationRequired
	}
	shipping.trim()
	if err := apperror.ValidateStruct(shipping); err != nil {
		return nil, err
	}

	applied, err := s.coupons.Current(ctx, sess)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	o, totals, err := s.placeOrder(tx, actor, sess.ID, applied, shipping)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"user_id":  actor.UserID,
		"total":    o.Total,
	})
	log.Info("order placed")

	if applied != nil {
		if err := s.coupons.Remove(ctx, sess); err != nil {
			log.WithError(err).Warn("failed to drop coupon from session")
		}
	}

	orderID := strconv.FormatUint(uint64(o.ID), 10)
	if err := messaging.Publish(ctx, s.jobs, messaging.TypeOrderPlaced, orderID, messaging.OrderPlaced{OrderID: o.ID}); err != nil {
		log.WithError(err).Error("failed to queue order confirmation")
	}

	completion := Completion{OrderID: o.ID, Total: totals.Total, Email: o.Email}
	if err := sess.SaveFor(ctx, CompletionKey, completion, s.completionTTL); err != nil {
		log.WithError(err).Warn("failed to store order completion marker")
	}

	return o, nil
}

func (s *Service) placeOrder(tx *gorm.DB, actor *Actor, cartID string, applied *coupon.Coupon, shipping *ShippingDetails) (*order.Order, order.Totals, error) {
	items, err := cart.ActiveItems(tx, cartID)
	if err != nil {
		return nil, order.Totals{}, err
	}
	if len(items) == 0 {
		return nil, order.Totals{}, cart.ErrEmptyCart
	}

	var subtotal int64
	for i := range items {
		subtotal += items[i].SubTotal()
	}

	discount := discountOf(applied, subtotal)
	totals := s.pricing.Compute(subtotal, discount)

	userID := actor.UserID
	o := order.Order{
		UserID:     &userID,
		FirstName:  shipping.FirstName,
		LastName:   shipping.LastName,
		Email:      shipping.Email,
		Address:    shipping.Address,
		PostalCode: shipping.PostalCode,
		City:       shipping.City,
		Paid:       true,
		Status:     order.OrderStatusProcessing,
		Subtotal:   totals.Subtotal,
		Discount:   totals.Discount,
		Total:      totals.Persisted,
	}
	if discount > 0 {
		o.CouponCode = applied.Code
	}
	if err := tx.Create(&o).Error; err != nil {
		return nil, totals, fmt.Errorf("failed to create order: %w", err)
	}
	if err := order.RecordStatus(tx, o.ID, order.OrderStatusProcessing, "Order placed and paid", &userID); err != nil {
		return nil, totals, err
	}

	for i := range items {
		item := &items[i]
		line := order.OrderItem{
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
		}
		if err := tx.Create(&line).Error; err != nil {
			return nil, totals, fmt.Errorf("failed to create order item: %w", err)
		}

		if err := inventory.Decrement(tx, item.ProductID, item.Quantity, inventory.ReasonSale, inventory.OrderReference(o.ID, &userID)); err != nil {
			if errors.Is(err, inventory.ErrInsufficientStock) {
				s.logger.WithFields(logrus.Fields{
					"product_id": item.ProductID,
					"quantity":   item.Quantity,
				}).Warn("insufficient stock at checkout")
			}
			return nil, totals, err
		}
		o.Items = append(o.Items, line)
	}

	if err := cart.ClearTx(tx, cartID); err != nil {
		return nil, totals, err
	}

	if discount > 0 {
		if err := coupon.Consume(tx, applied.ID); err != nil {
			return nil, totals, err
		}
	}

	if err := user.SaveShipping(tx, actor.UserID, &user.ShippingRequest{
		Address:    shipping.Address,
		City:       shipping.City,
		PostalCode: shipping.PostalCode,
	}); err != nil {
		return nil, totals, err
	}

	return &o, totals, nil
}

// ConsumeCompletion returns the completion marker and removes it, so the
// success page renders once per order
func (s *Service) ConsumeCompletion(ctx context.Context, sess *session.Session) (*Completion, error) {
	var completion Completion
	found, err := sess.Take(ctx, CompletionKey, &completion)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoCompletion
	}
	return &completion, nil
}

// discountOf is the coupon discount on subtotal, zero when there is no
// coupon or its minimum purchase is not met
func discountOf(c *coupon.Coupon, subtotal int64) int64 {
	if c == nil || c.CheckMinPurchase(subtotal) != nil {
		return 0
	}
	return c.CalculateDiscount(subtotal)
}

func (d *ShippingDetails) trim() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Email = strings.TrimSpace(d.Email)
	d.Address = strings.TrimSpace(d.Address)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.City = strings.TrimSpace(d.City)
}
