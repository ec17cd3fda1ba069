// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInsufficientStock = apperror.Domain("one of the products no longer has enough stock")

// Service handles stock adjustments and the stock ledger
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// AdjustRequest is a manual stock correction. Delta may be negative.
type AdjustRequest struct {
	Delta int    `json:"delta" form:"delta" validate:"required"`
	Notes string `json:"notes" form:"notes" validate:"max=500"`
}

// Decrement removes quantity units from the stock of a product inside tx.
// The update only applies while enough stock is left, so concurrent
// buyers can never drive the stock below zero.
func Decrement(tx *gorm.DB, productID uint, quantity int, reason MovementReason, ref Reference) error {
	result := tx.Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return record(tx, productID, MovementTypeOutbound, reason, quantity, ref)
}

// Increment puts quantity units back in stock inside tx
func Increment(tx *gorm.DB, productID uint, quantity int, reason MovementReason, ref Reference) error {
	result := tx.Model(&product.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("failed to restore stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return product.ErrProductNotFound
	}
	return record(tx, productID, MovementTypeInbound, reason, quantity, ref)
}

func record(tx *gorm.DB, productID uint, movementType MovementType, reason MovementReason, quantity int, ref Reference) error {
	var stock int
	if err := tx.Model(&product.Product{}).Select("stock").Where("id = ?", productID).Scan(&stock).Error; err != nil {
		return fmt.Errorf("failed to read stock: %w", err)
	}

	movement := Movement{
		ProductID:     productID,
		MovementType:  movementType,
		Reason:        reason,
		Quantity:      quantity,
		NewQuantity:   stock,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
		Notes:         ref.Notes,
		CreatedBy:     ref.CreatedBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := tx.Create(&movement).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// Adjust applies a manual correction to the stock of a product
func (s *Service) Adjust(ctx context.Context, productID uint, req *AdjustRequest, userID uint) (*Movement, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}

	ref := Reference{Type: "adjustment", Notes: req.Notes, CreatedBy: &userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.Delta < 0 {
			return Decrement(tx, productID, -req.Delta, ReasonAdjustment, ref)
		}
		return Increment(tx, productID, req.Delta, ReasonAdjustment, ref)
	})
	if err != nil {
		return nil, err
	}

	var movement Movement
	if err := s.db.WithContext(ctx).Where("product_id = ?", productID).Order("id DESC").First(&movement).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movement: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": productID,
		"delta":      req.Delta,
		"stock":      movement.NewQuantity,
		"user_id":    userID,
	}).Info("stock adjusted")

	return &movement, nil
}

// History returns the latest movements of a product, newest first
func (s *Service) History(ctx context.Context, productID uint, limit int) ([]Movement, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var movements []Movement
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve stock movements: %w", err)
	}
	return movements, nil
}

// LowStock lists products whose stock is at or below threshold, lowest
// first. A vendor id restricts the list to that vendor's products.
func (s *Service) LowStock(ctx context.Context, threshold int, vendorID *uint) ([]product.Product, error) {
	query := s.db.WithContext(ctx).Where("stock <= ?", threshold)
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}

	var products []product.Product
	if err := query.Order("stock ASC, id ASC").Limit(100).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock products: %w", err)
	}
	return products, nil
}
