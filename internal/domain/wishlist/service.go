package wishlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/dberr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNotInWishlist = apperror.NotFound("this product is not in your wishlist")

// Action tells what Toggle did
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
)

// Service handles wishlist business logic
type Service struct {
	db          *gorm.DB
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB, cartService *cart.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:          db,
		cartService: cartService,
		logger:      logger,
	}
}

// ToggleResult is returned by Toggle
type ToggleResult struct {
	Action        Action `json:"action"`
	Message       string `json:"message"`
	WishlistCount int64  `json:"wishlist_count"`
}

// WishlistResponse is the content of a wishlist
type WishlistResponse struct {
	Items []WishlistItem `json:"items"`
	Count int            `json:"count"`
}

// Toggle adds the product to the wishlist, or removes it when present
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (*ToggleResult, error) {
	prod, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update wishlist: %w", result.Error)
	}

	res := &ToggleResult{Action: ActionRemoved, Message: fmt.Sprintf("%s was removed from your wishlist", prod.Name)}
	if result.RowsAffected == 0 {
		item := WishlistItem{UserID: userID, ProductID: productID}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil && !dberr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to add item to wishlist: %w", err)
		}
		res = &ToggleResult{Action: ActionAdded, Message: fmt.Sprintf("%s was added to your wishlist", prod.Name)}
	}

	if res.WishlistCount, err = s.Count(ctx, userID); err != nil {
		return nil, err
	}
	return res, nil
}

// Remove deletes a product from the wishlist
func (s *Service) Remove(ctx context.Context, userID, productID uint) (int64, error) {
	result := s.db.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&WishlistItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to remove item from wishlist: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotInWishlist
	}
	return s.Count(ctx, userID)
}

// Clear removes every product from the wishlist
func (s *Service) Clear(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&WishlistItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return nil
}

// List returns the saved products, most recent first
func (s *Service) List(ctx context.Context, userID uint) (*WishlistResponse, error) {
	var items []WishlistItem
	err := s.db.WithContext(ctx).Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve wishlist items: %w", err)
	}
	return &WishlistResponse{Items: items, Count: len(items)}, nil
}

// Count returns the number of saved products
func (s *Service) Count(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&WishlistItem{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}
	return count, nil
}

// Contains reports whether the product is saved
func (s *Service) Contains(ctx context.Context, userID, productID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist: %w", err)
	}
	return count > 0, nil
}

// MoveToCart adds the product to the session cart and drops it from the
// wishlist once the cart accepted it
func (s *Service) MoveToCart(ctx context.Context, userID, productID uint, cartID string, quantity int, opts ...cart.AddOption) (*cart.Summary, error) {
	if ok, err := s.Contains(ctx, userID, productID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrNotInWishlist
	}

	summary, err := s.cartService.Add(ctx, cartID, productID, quantity, opts...)
	if err != nil {
		return nil, err
	}

	if _, err := s.Remove(ctx, userID, productID); err != nil {
		s.logger.WithError(err).WithField("product_id", productID).Warn("product moved to cart but kept in wishlist")
	}
	return summary, nil
}

func (s *Service) loadProduct(ctx context.Context, productID uint) (*product.Product, error) {
	var prod product.Product
	if err := s.db.WithContext(ctx).First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}
