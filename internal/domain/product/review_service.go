// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewService handles review business logic
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db: db,
	}
}

// ReviewRequest is the payload of a review submission
type ReviewRequest struct {
	Rating  int    `json:"rating" form:"rating" validate:"min=1,max=5"`
	Title   string `json:"title" form:"title" validate:"required,max=100"`
	Comment string `json:"comment" form:"comment" validate:"required"`
}

// ReviewSummary holds the aggregate rating of a product
type ReviewSummary struct {
	Count         int64   `json:"count"`
	AverageRating float64 `json:"avg_rating"`
}

// UpsertResult is returned after a review was created or updated
type UpsertResult struct {
	Review  Review `json:"review"`
	Created bool   `json:"created"`
	ReviewSummary
}

// Upsert creates the user's review of a product or updates the existing one
func (s *ReviewService) Upsert(ctx context.Context, userID, productID uint, req *ReviewRequest) (*UpsertResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Comment = strings.TrimSpace(req.Comment)
	if err := validateReview(req); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if err := db.First(&Product{}, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}

	result := &UpsertResult{}
	var existing Review
	err := db.Where("product_id = ? AND user_id = ?", productID, userID).First(&existing).Error
	switch {
	case err == nil:
		existing.Rating = req.Rating
		existing.Title = req.Title
		existing.Comment = req.Comment
		if err := db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("failed to update review: %w", err)
		}
		result.Review = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		review := Review{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Title:     req.Title,
			Comment:   req.Comment,
			Active:    true,
		}
		// a concurrent submission for the same pair turns into an update
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "title", "comment", "updated_at"}),
		}).Create(&review).Error
		if err != nil {
			return nil, fmt.Errorf("failed to create review: %w", err)
		}
		result.Review = review
		result.Created = true
	default:
		return nil, fmt.Errorf("failed to retrieve review: %w", err)
	}

	summary, err := s.Summary(ctx, productID)
	if err != nil {
		return nil, err
	}
	result.ReviewSummary = *summary
	return result, nil
}

// ListForProduct returns the active reviews of a product, newest first
func (s *ReviewService) ListForProduct(ctx context.Context, productID uint) ([]Review, error) {
	var reviews []Review
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND active = ?", productID, true).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve reviews: %w", err)
	}
	return reviews, nil
}

// Summary returns the review count and the average rating rounded to one decimal
func (s *ReviewService) Summary(ctx context.Context, productID uint) (*ReviewSummary, error) {
	var row struct {
		Count int64
		Avg   *float64
	}
	err := s.db.WithContext(ctx).Model(&Review{}).
		Select("COUNT(*) AS count, AVG(rating) AS avg").
		Where("product_id = ? AND active = ?", productID, true).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute review summary: %w", err)
	}

	summary := &ReviewSummary{Count: row.Count}
	if row.Avg != nil {
		summary.AverageRating = math.Round(*row.Avg*10) / 10
	}
	return summary, nil
}

func validateReview(req *ReviewRequest) error {
	if req.Rating < 1 || req.Rating > 5 {
		return apperror.Validation("rating", "rating must be between 1 and 5")
	}
	return apperror.ValidateStruct(req)
}
