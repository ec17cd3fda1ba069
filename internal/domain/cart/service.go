// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOutOfStock           = apperror.Domain("this product is no longer available")
	ErrQuantityExceedsStock = apperror.Domain("the requested quantity exceeds the available stock")
	ErrItemNotFound         = apperror.NotFound("this product is not in your cart")
	ErrEmptyCart            = apperror.Domain("your cart is empty")
	ErrOwnProduct           = apperror.Authorization("you cannot order your own products")
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new cart service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// AddOption customizes Add and BuyNow
type AddOption func(*addOptions)

type addOptions struct {
	buyerVendorID *uint
}

// AsVendor rejects products sold by the given vendor with ErrOwnProduct
func AsVendor(vendorID uint) AddOption {
	return func(o *addOptions) {
		o.buyerVendorID = &vendorID
	}
}

// GetOrCreate returns the cart of a session, persisting it on first use
func (s *Service) GetOrCreate(ctx context.Context, cartID string) (*Cart, error) {
	if cartID == "" {
		return nil, fmt.Errorf("cart id is required")
	}

	cart := Cart{ID: cartID}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&cart).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	if err := s.db.WithContext(ctx).First(&cart, "id = ?", cartID).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &cart, nil
}

// Add puts quantity units of a product in the cart. A quantity below one
// counts as one. The resulting line quantity may not exceed the stock.
func (s *Service) Add(ctx context.Context, cartID string, productID uint, quantity int, opts ...AddOption) (*Summary, error) {
	if quantity < 1 {
		quantity = 1
	}

	prod, err := s.loadProduct(ctx, productID, opts)
	if err != nil {
		return nil, err
	}
	if !prod.InStock() {
		return nil, ErrOutOfStock
	}

	if _, err := s.GetOrCreate(ctx, cartID); err != nil {
		return nil, err
	}

	var item CartItem
	err = s.db.WithContext(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	switch {
	case err == nil:
		if item.Quantity+quantity > prod.Stock {
			return nil, ErrQuantityExceedsStock
		}
		if err := s.db.WithContext(ctx).Model(&CartItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"quantity": item.Quantity + quantity,
			"active":   true,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if quantity > prod.Stock {
			return nil, ErrQuantityExceedsStock
		}
		item = CartItem{CartID: cartID, ProductID: productID, Quantity: quantity, Active: true}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to retrieve cart item: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    cartID,
		"product_id": productID,
		"quantity":   quantity,
	}).Debug("product added to cart")

	return s.Summary(ctx, cartID)
}

// SetQuantity overwrites the quantity of a line. Quantities that are not
// positive or exceed the stock are ignored and the cart is left unchanged.
func (s *Service) SetQuantity(ctx context.Context, cartID string, productID uint, quantity int) (*Summary, error) {
	item, err := s.findItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 && quantity <= item.Product.Stock {
		if err := s.db.WithContext(ctx).Model(&CartItem{}).Where("id = ?", item.ID).Update("quantity", quantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	return s.Summary(ctx, cartID)
}

// Remove takes one unit off a line, deleting the line at quantity one
func (s *Service) Remove(ctx context.Context, cartID string, productID uint) (*Summary, error) {
	item, err := s.findItem(ctx, cartID, productID)
	if err != nil {
		return nil, err
	}

	if item.Quantity > 1 {
		err = s.db.WithContext(ctx).Model(&CartItem{}).Where("id = ?", item.ID).Update("quantity", gorm.Expr("quantity - 1")).Error
	} else {
		err = s.db.WithContext(ctx).Delete(&CartItem{}, item.ID).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	return s.Summary(ctx, cartID)
}

// Clear deletes every line of the cart; the cart itself is kept
func (s *Service) Clear(ctx context.Context, cartID string) error {
	return ClearTx(s.db.WithContext(ctx), cartID)
}

// ClearTx deletes every line of the cart using the given transaction
func ClearTx(tx *gorm.DB, cartID string) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// BuyNow replaces the content of the cart with a single product
func (s *Service) BuyNow(ctx context.Context, cartID string, productID uint, quantity int, opts ...AddOption) (*Summary, error) {
	prod, err := s.loadProduct(ctx, productID, opts)
	if err != nil {
		return nil, err
	}
	if !prod.Available {
		return nil, product.ErrProductNotFound
	}
	if quantity <= 0 || quantity > prod.Stock {
		return nil, apperror.Validation("quantity", fmt.Sprintf("invalid quantity, available stock: %d", prod.Stock))
	}

	if _, err := s.GetOrCreate(ctx, cartID); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ClearTx(tx, cartID); err != nil {
			return err
		}
		item := CartItem{CartID: cartID, ProductID: productID, Quantity: quantity, Active: true}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Summary(ctx, cartID)
}

// Items returns the active lines of a cart with their products, ordered
// by product id
func (s *Service) Items(ctx context.Context, cartID string) ([]CartItem, error) {
	return ActiveItems(s.db.WithContext(ctx), cartID)
}

// ActiveItems loads the active lines of a cart using db, which may be a
// transaction
func ActiveItems(db *gorm.DB, cartID string) ([]CartItem, error) {
	var items []CartItem
	err := db.Preload("Product").
		Where("cart_id = ? AND active = ?", cartID, true).
		Order("product_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart items: %w", err)
	}
	return items, nil
}

// Summary returns the lines, the total and the item count of a cart
func (s *Service) Summary(ctx context.Context, cartID string) (*Summary, error) {
	items, err := s.Items(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return summarize(cartID, items), nil
}

// Total returns the cart amount at current prices, in cents
func (s *Service) Total(ctx context.Context, cartID string) (int64, error) {
	summary, err := s.Summary(ctx, cartID)
	if err != nil {
		return 0, err
	}
	return summary.Total, nil
}

// Count returns the number of units in the cart
func (s *Service) Count(ctx context.Context, cartID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&CartItem{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("cart_id = ? AND active = ?", cartID, true).
		Scan(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return int(count), nil
}

func (s *Service) loadProduct(ctx context.Context, productID uint, opts []AddOption) (*product.Product, error) {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}

	var prod product.Product
	if err := s.db.WithContext(ctx).First(&prod, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	if o.buyerVendorID != nil && prod.VendorID != nil && *prod.VendorID == *o.buyerVendorID {
		return nil, ErrOwnProduct
	}
	return &prod, nil
}

func (s *Service) findItem(ctx context.Context, cartID string, productID uint) (*CartItem, error) {
	var item CartItem
	err := s.db.WithContext(ctx).Preload("Product").
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to retrieve cart item: %w", err)
	}
	return &item, nil
}
