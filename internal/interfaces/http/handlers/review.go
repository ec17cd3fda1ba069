// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/sirupsen/logrus"
)

// ReviewHandler handles product reviews
type ReviewHandler struct {
	reviews *product.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *product.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// List handles GET /product/:id/reviews/
func (h *ReviewHandler) List(c *gin.Context) {
	productID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	reviews, err := h.reviews.ListForProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	summary, err := h.reviews.Summary(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reviews,
		"summary": summary,
	})
}

// Submit handles POST /product/:id/review/. A second review by the same
// user replaces the first one.
func (h *ReviewHandler) Submit(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	productID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req product.ReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	result, err := h.reviews.Upsert(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	status, message := http.StatusOK, "Your review has been updated"
	if result.Created {
		status, message = http.StatusCreated, "Thank you for your review"
	}
	c.JSON(status, gin.H{
		"success":      true,
		"message":      message,
		"review":       result.Review,
		"review_count": result.Count,
		"avg_rating":   result.AverageRating,
	})
}
