// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = apperror.NotFound("order not found")
	ErrCannotBeCancelled = apperror.Domain("this order can no longer be cancelled")
)

// Service handles order business logic after checkout
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// ListRequest represents order list query parameters
type ListRequest struct {
	Page   int         `form:"page,default=1"`
	Limit  int         `form:"limit,default=20"`
	Status OrderStatus `form:"status"`
	UserID *uint       `form:"-"`
}

// ListResponse represents paginated orders
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// StatusUpdateRequest is an admin status change
type StatusUpdateRequest struct {
	Status  OrderStatus `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
	Comment string      `json:"comment"`
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&Order{})
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Items").Order("created_at DESC, id DESC").Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// ListForUser retrieves the orders placed by a user
func (s *Service) ListForUser(ctx context.Context, userID uint, page, limit int) (*ListResponse, error) {
	return s.List(ctx, &ListRequest{Page: page, Limit: limit, UserID: &userID})
}

// Get retrieves an order with its items and history
func (s *Service) Get(ctx context.Context, id uint) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

// GetForUser retrieves an order owned by userID. Orders of other users
// are reported as not found.
func (s *Service) GetForUser(ctx context.Context, id, userID uint) (*Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(userID) {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// SetInvoicePath records where the invoice of an order was written
func (s *Service) SetInvoicePath(ctx context.Context, id uint, path string) error {
	result := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("invoice_path", path)
	if result.Error != nil {
		return fmt.Errorf("failed to record invoice path: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdateStatus moves an order along the status workflow. Cancelling
// restores the stock of every line.
func (s *Service) UpdateStatus(ctx context.Context, id uint, req *StatusUpdateRequest, updatedBy *uint) (*Order, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Status == OrderStatusCancelled {
		return s.Cancel(ctx, id, req.Comment, updatedBy)
	}

	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, req.Status) {
		return nil, apperror.Domain(fmt.Sprintf("invalid status transition from %s to %s", order.Status, req.Status))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Order{}).Where("id = ?", order.ID).Update("status", req.Status).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return RecordStatus(tx, order.ID, req.Status, req.Comment, updatedBy)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   req.Status,
	}).Info("order status updated")

	return s.Get(ctx, id)
}

// Cancel cancels a pending or processing order and puts its items back in stock
func (s *Service) Cancel(ctx context.Context, id uint, reason string, cancelledBy *uint) (*Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanBeCancelled() {
		return nil, ErrCannotBeCancelled
	}

	tx := s.db.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// the status guard makes a concurrent double cancel restore stock once
	result := tx.Model(&Order{}).
		Where("id = ? AND status IN ?", id, []OrderStatus{OrderStatusPending, OrderStatusProcessing}).
		Update("status", OrderStatusCancelled)
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to cancel order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, ErrCannotBeCancelled
	}

	ref := inventory.OrderReference(id, cancelledBy)
	for _, item := range order.Items {
		err := inventory.Increment(tx, item.ProductID, item.Quantity, inventory.ReasonCancellation, ref)
		if errors.Is(err, product.ErrProductNotFound) {
			// deleted from the catalogue since the order; nothing to restock
			s.logger.WithFields(logrus.Fields{
				"order_id":   id,
				"product_id": item.ProductID,
			}).Warn("skipping restock of deleted product")
			continue
		}
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	comment := "Order cancelled"
	if reason != "" {
		comment = fmt.Sprintf("Order cancelled: %s", reason)
	}
	if err := RecordStatus(tx, id, OrderStatusCancelled, comment, cancelledBy); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	s.logger.WithField("order_id", id).Info("order cancelled")
	return s.Get(ctx, id)
}

// RecordStatus appends an entry to the status history using tx
func RecordStatus(tx *gorm.DB, orderID uint, status OrderStatus, comment string, createdBy *uint) error {
	entry := OrderStatusHistory{
		OrderID:   orderID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create status history: %w", err)
	}
	return nil
}
