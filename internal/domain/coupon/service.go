// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/hackerz/marketplace/internal/pkg/session"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionKey is the session entry holding the applied coupon
const SessionKey = "coupon"

var (
	ErrCodeRequired  = apperror.Validation("coupon_code", "please enter a coupon code")
	ErrInvalidCode   = apperror.Validation("coupon_code", "invalid coupon code")
	ErrExhausted     = apperror.Validation("coupon_code", ReasonExhausted)
	ErrCouponMissing = apperror.NotFound("coupon not found")
)

// Applied is the coupon reference kept in the session
type Applied struct {
	ID   uint   `json:"coupon_id"`
	Code string `json:"coupon_code"`
}

// ApplyResult is returned when a coupon was applied to a cart
type ApplyResult struct {
	Code     string `json:"code"`
	Discount int64  `json:"discount"`
	NewTotal int64  `json:"new_total"`
}

// ValidationResult is the answer to a coupon check that does not apply it
type ValidationResult struct {
	Success       bool    `json:"success"`
	Message       string  `json:"message"`
	DiscountType  string  `json:"discount_type,omitempty"`
	DiscountValue float64 `json:"discount_value,omitempty"`
	DiscountInfo  string  `json:"discount_info,omitempty"`
	MinPurchase   float64 `json:"min_purchase,omitempty"`
}

// CreateRequest represents coupon creation data. Values are currency
// amounts or percentages as decimal strings.
type CreateRequest struct {
	Code          string       `json:"code" validate:"required,max=50"`
	DiscountType  DiscountType `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue string       `json:"discount_value" validate:"required"`
	MinPurchase   string       `json:"min_purchase"`
	MaxUses       int          `json:"max_uses" validate:"min=0"`
	ValidFrom     time.Time    `json:"valid_from" validate:"required"`
	ValidTo       time.Time    `json:"valid_to" validate:"required"`
}

// Service handles coupon business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeCode trims and upper-cases a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GetByCode looks a coupon up by its normalized code
func (s *Service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	var c Coupon
	err := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(code)).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}
	return &c, nil
}

// Apply checks a code against the cart total and stores it in the session
func (s *Service) Apply(ctx context.Context, sess *session.Session, code string, cartTotal int64) (*ApplyResult, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	c, err := s.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if ok, reason := c.IsValid(s.now()); !ok {
		return nil, apperror.Validation("coupon_code", reason)
	}
	if err := c.CheckMinPurchase(cartTotal); err != nil {
		return nil, err
	}

	if err := sess.Save(ctx, SessionKey, Applied{ID: c.ID, Code: c.Code}); err != nil {
		return nil, err
	}

	newTotal, discount := c.ApplyDiscount(cartTotal)
	s.logger.WithFields(logrus.Fields{"coupon": c.Code, "discount": discount}).Debug("coupon applied")

	return &ApplyResult{Code: c.Code, Discount: discount, NewTotal: newTotal}, nil
}

// Remove drops the coupon from the session
func (s *Service) Remove(ctx context.Context, sess *session.Session) error {
	return sess.Delete(ctx, SessionKey)
}

// Current returns the coupon applied in the session, or nil. A coupon that
// stopped being valid is removed from the session.
func (s *Service) Current(ctx context.Context, sess *session.Session) (*Coupon, error) {
	var applied Applied
	found, err := sess.Load(ctx, SessionKey, &applied)
	if err != nil || !found {
		return nil, err
	}

	var c Coupon
	err = s.db.WithContext(ctx).First(&c, applied.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.Remove(ctx, sess)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coupon: %w", err)
	}

	if ok, _ := c.IsValid(s.now()); !ok {
		return nil, s.Remove(ctx, sess)
	}
	return &c, nil
}

// Validate checks a code without applying it. Rejections are reported in
// the result, not as errors.
func (s *Service) Validate(ctx context.Context, code string, cartTotal int64) (*ValidationResult, error) {
	code = NormalizeCode(code)
	if code == "" {
		return &ValidationResult{Message: ErrCodeRequired.Message}, nil
	}

	c, err := s.GetByCode(ctx, code)
	if errors.Is(err, ErrInvalidCode) {
		return &ValidationResult{Message: ErrInvalidCode.Message}, nil
	}
	if err != nil {
		return nil, err
	}

	if ok, reason := c.IsValid(s.now()); !ok {
		return &ValidationResult{Message: reason}, nil
	}

	value, _ := c.DiscountValue.Float64()
	minPurchase, _ := money.ToDecimal(c.MinPurchase).Float64()
	result := &ValidationResult{
		Success:       true,
		Message:       ReasonValid,
		DiscountType:  string(c.DiscountType),
		DiscountValue: value,
		DiscountInfo:  c.DiscountInfo(),
		MinPurchase:   minPurchase,
	}

	if cartTotal > 0 {
		if err := c.CheckMinPurchase(cartTotal); err != nil {
			result.Success = false
			result.Message = apperror.MessageOf(err)
		}
	}
	return result, nil
}

// Consume records one use of the coupon inside tx. The increment only
// happens while the coupon still has uses left, so concurrent checkouts
// cannot overshoot max_uses.
func Consume(tx *gorm.DB, couponID uint) error {
	result := tx.Model(&Coupon{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to consume coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrExhausted
	}
	return nil
}

// Create adds a coupon
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Coupon, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}

	value, err := decimal.NewFromString(req.DiscountValue)
	if err != nil || !value.IsPositive() {
		return nil, apperror.Validation("discount_value", "must be a positive number")
	}
	if req.DiscountType == DiscountPercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, apperror.Validation("discount_value", "a percentage cannot exceed 100")
	}

	minPurchase := decimal.Zero
	if req.MinPurchase != "" {
		minPurchase, err = decimal.NewFromString(req.MinPurchase)
		if err != nil || minPurchase.IsNegative() {
			return nil, apperror.Validation("min_purchase", "must be a non negative number")
		}
	}

	if !req.ValidTo.After(req.ValidFrom) {
		return nil, apperror.Validation("valid_to", "must be after valid_from")
	}

	c := Coupon{
		Code:          NormalizeCode(req.Code),
		DiscountType:  req.DiscountType,
		DiscountValue: value,
		MinPurchase:   money.FromDecimal(minPurchase),
		MaxUses:       req.MaxUses,
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
		Active:        true,
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&Coupon{}).Where("code = ?", c.Code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if count > 0 {
		return nil, apperror.Conflict("a coupon with this code already exists")
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return &c, nil
}

// List returns all coupons, newest first
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	return coupons, nil
}

// Deactivate switches a coupon off
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Model(&Coupon{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponMissing
	}
	return nil
}
