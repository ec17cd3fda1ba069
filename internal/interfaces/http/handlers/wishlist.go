// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/domain/wishlist"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// WishlistHandler handles the saved products of a user
type WishlistHandler struct {
	wishlists *wishlist.Service
	vendors   *vendor.Service
	logger    *logrus.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Service, vendors *vendor.Service, logger *logrus.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlists: wishlists,
		vendors:   vendors,
		logger:    logger,
	}
}

// List handles GET /wishlist/
func (h *WishlistHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response, err := h.wishlists.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Toggle handles POST /wishlist/toggle/:product_id/
func (h *WishlistHandler) Toggle(c *gin.Context) {
	userID, productID, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	result, err := h.wishlists.Toggle(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"action":         result.Action,
		"message":        result.Message,
		"wishlist_count": result.WishlistCount,
	})
}

// Remove handles POST /wishlist/remove/:product_id/
func (h *WishlistHandler) Remove(c *gin.Context) {
	userID, productID, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	count, err := h.wishlists.Remove(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from wishlist", "wishlist_count": count})
}

// Clear handles POST /wishlist/clear/
func (h *WishlistHandler) Clear(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if err := h.wishlists.Clear(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Wishlist cleared", "wishlist_count": 0})
}

// MoveToCart handles POST /wishlist/move-to-cart/:product_id/
func (h *WishlistHandler) MoveToCart(c *gin.Context) {
	userID, productID, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	var req QuantityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, h.logger, bindError(err), "")
			return
		}
	}

	opts, err := buyerOptions(c, h.vendors)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	summary, err := h.wishlists.MoveToCart(c.Request.Context(), userID, productID, middleware.GetSession(c).ID, req.Quantity, opts...)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Product moved to cart",
		"total_items": summary.Count,
		"total_price": money.Format(summary.Total),
	})
}

func (h *WishlistHandler) userAndProduct(c *gin.Context) (uint, uint, bool) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return 0, 0, false
	}
	productID, err := parseID(c, "product_id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return 0, 0, false
	}
	return userID, productID, true
}
