// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	carts   *cart.Service
	vendors *vendor.Service
	logger  *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service, vendors *vendor.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		vendors: vendors,
		logger:  logger,
	}
}

// QuantityRequest is the body of the cart mutations
type QuantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}

// Detail handles GET /cart/
func (h *CartHandler) Detail(c *gin.Context) {
	sess := middleware.GetSession(c)

	summary, err := h.carts.Summary(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"cart":        summary,
		"total_items": summary.Count,
		"total_price": money.Format(summary.Total),
	})
}

// Count handles GET /cart/count/
func (h *CartHandler) Count(c *gin.Context) {
	sess := middleware.GetSession(c)

	count, err := h.carts.Count(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// Add handles POST /cart/add/:product_id/
func (h *CartHandler) Add(c *gin.Context) {
	h.mutate(c, "Product added to cart", func(cartID string, productID uint, quantity int) (*cart.Summary, error) {
		opts, err := buyerOptions(c, h.vendors)
		if err != nil {
			return nil, err
		}
		return h.carts.Add(c.Request.Context(), cartID, productID, quantity, opts...)
	})
}

// Update handles POST /cart/update/:product_id/
func (h *CartHandler) Update(c *gin.Context) {
	h.mutate(c, "Cart updated", func(cartID string, productID uint, quantity int) (*cart.Summary, error) {
		return h.carts.SetQuantity(c.Request.Context(), cartID, productID, quantity)
	})
}

// Remove handles POST /cart/remove/:product_id/
func (h *CartHandler) Remove(c *gin.Context) {
	h.mutate(c, "Product removed from cart", func(cartID string, productID uint, _ int) (*cart.Summary, error) {
		return h.carts.Remove(c.Request.Context(), cartID, productID)
	})
}

// BuyNow handles POST /buy-now/:product_id/: the cart is replaced by the
// product and the buyer continues to checkout.
func (h *CartHandler) BuyNow(c *gin.Context) {
	productID, err := parseID(c, "product_id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req QuantityRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	opts, err := buyerOptions(c, h.vendors)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	sess := middleware.GetSession(c)
	if _, err := h.carts.BuyNow(c.Request.Context(), sess.ID, productID, req.Quantity, opts...); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/checkout/"})
		return
	}
	c.Redirect(http.StatusFound, "/checkout/")
}

func (h *CartHandler) mutate(c *gin.Context, message string, op func(cartID string, productID uint, quantity int) (*cart.Summary, error)) {
	productID, err := parseID(c, "product_id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req QuantityRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, h.logger, bindError(err), "")
			return
		}
	}

	sess := middleware.GetSession(c)
	summary, err := op(sess.ID, productID, req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     message,
		"total_items": summary.Count,
		"total_price": money.Format(summary.Total),
	})
}

// buyerOptions keeps approved vendors from buying their own products
func buyerOptions(c *gin.Context, vendors *vendor.Service) ([]cart.AddOption, error) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return nil, nil
	}

	standing, err := vendors.Standing(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	if standing.Approved() {
		return []cart.AddOption{cart.AsVendor(standing.Vendor.ID)}, nil
	}
	return nil, nil
}
