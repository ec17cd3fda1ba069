// internal/domain/product/service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gosimple/slug"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = apperror.NotFound("product not found")
	ErrCategoryNotFound = apperror.NotFound("category not found")
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewService creates a new product service
func NewService(db *gorm.DB, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

// ListRequest represents product list query parameters
type ListRequest struct {
	Page         int    `form:"page,default=1"`
	Limit        int    `form:"limit,default=12"`
	CategorySlug string `form:"category"`
	Search       string `form:"q"`
	Sort         string `form:"sort"` // price_asc, price_desc, newest
	VendorID     *uint  `form:"-"`
	// IncludeUnavailable lists products a vendor has taken off sale
	IncludeUnavailable bool `form:"-"`
}

// CreateRequest represents product creation data
type CreateRequest struct {
	Name         string `json:"name" form:"name" validate:"required,max=200"`
	CategoryID   uint   `json:"category_id" form:"category" validate:"required"`
	Price        int64  `json:"price" form:"price" validate:"required,min=1"`
	RegularPrice int64  `json:"regular_price" form:"regular_price" validate:"min=0"`
	Description  string `json:"description" form:"description" validate:"required"`
	Stock        int    `json:"stock" form:"stock" validate:"min=0"`
	Available    *bool  `json:"available" form:"available"`
	Featured     bool   `json:"featured" form:"featured"`
	VendorID     *uint  `json:"-" form:"-"`
}

// UpdateRequest represents product update data
type UpdateRequest struct {
	Name         *string `json:"name" form:"name" validate:"omitempty,max=200"`
	CategoryID   *uint   `json:"category_id" form:"category"`
	Price        *int64  `json:"price" form:"price" validate:"omitempty,min=1"`
	RegularPrice *int64  `json:"regular_price" form:"regular_price" validate:"omitempty,min=0"`
	Description  *string `json:"description" form:"description"`
	Stock        *int    `json:"stock" form:"stock" validate:"omitempty,min=0"`
	Available    *bool   `json:"available" form:"available"`
	Featured     *bool   `json:"featured" form:"featured"`
}

// ListResponse represents product list response with pagination
type ListResponse struct {
	Products   []Product  `json:"products"`
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

// List retrieves products with filtering and pagination
func (s *Service) List(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 12
	}

	query := s.db.WithContext(ctx).Model(&Product{})

	if !req.IncludeUnavailable {
		query = query.Where("products.available = ?", true)
	}

	if req.VendorID != nil {
		query = query.Where("products.vendor_id = ?", *req.VendorID)
	}

	if req.CategorySlug != "" {
		var category Category
		if err := s.db.WithContext(ctx).Where("slug = ?", req.CategorySlug).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to retrieve category: %w", err)
		}
		query = query.Where("products.category_id = ?", category.ID)
	}

	if req.Search != "" {
		search := "%" + strings.ToLower(req.Search) + "%"
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ?",
				search, search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Category").Order(buildOrderClause(req.Sort)).Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ListResponse{
		Products: products,
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

// Get retrieves a single product by ID
func (s *Service) Get(ctx context.Context, id uint) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).Preload("Category").Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetBySlug retrieves an available product by slug
func (s *Service) GetBySlug(ctx context.Context, productSlug string) (*Product, error) {
	var product Product
	err := s.db.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND available = ?", productSlug, true).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// Related returns other available products of the same category
func (s *Service) Related(ctx context.Context, p *Product, limit int) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND available = ?", p.CategoryID, p.ID, true).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve related products: %w", err)
	}
	return products, nil
}

// Create creates a new product. The slug is derived from the name and
// made unique with a numeric suffix.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Product, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}

	var product Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&Category{}, req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("category", "unknown category")
			}
			return fmt.Errorf("failed to check category: %w", err)
		}

		productSlug, err := UniqueSlug(tx, &Product{}, req.Name)
		if err != nil {
			return err
		}

		regular := req.RegularPrice
		if regular == 0 {
			regular = req.Price
		}
		available := true
		if req.Available != nil {
			available = *req.Available
		}

		product = Product{
			VendorID:     req.VendorID,
			CategoryID:   req.CategoryID,
			Name:         strings.TrimSpace(req.Name),
			Slug:         productSlug,
			Description:  req.Description,
			RegularPrice: regular,
			Price:        req.Price,
			Stock:        req.Stock,
			Available:    available,
			Featured:     req.Featured,
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"product_id": product.ID, "slug": product.Slug}).Info("product created")
	return s.Get(ctx, product.ID)
}

// Update applies the non-nil fields of req
func (s *Service) Update(ctx context.Context, id uint, req *UpdateRequest) (*Product, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil && strings.TrimSpace(*req.Name) != product.Name {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		if err := s.db.WithContext(ctx).First(&Category{}, *req.CategoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Validation("category", "unknown category")
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.RegularPrice != nil {
		updates["regular_price"] = *req.RegularPrice
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}
	if req.Featured != nil {
		updates["featured"] = *req.Featured
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a product
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by name
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category with a unique slug
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("name", "this field is required")
	}

	categorySlug, err := UniqueSlug(s.db.WithContext(ctx), &Category{}, name)
	if err != nil {
		return nil, err
	}

	category := Category{Name: name, Slug: categorySlug, Description: description}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// UniqueSlug derives a slug from name that is not yet used by model's table
func UniqueSlug(db *gorm.DB, model interface{}, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "item"
	}

	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := db.Model(model).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// buildOrderClause maps the public sort keys to an ORDER BY clause
func buildOrderClause(sort string) string {
	switch sort {
	case "price_asc":
		return "products.price ASC"
	case "price_desc":
		return "products.price DESC"
	case "newest":
		return "products.created_at DESC"
	default:
		return "products.name ASC"
	}
}
