package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/coupon"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	coupons *coupon.Service
	carts   *cart.Service
	logger  *logrus.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *coupon.Service, carts *cart.Service, logger *logrus.Logger) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		carts:   carts,
		logger:  logger,
	}
}

// CodeRequest carries a coupon code
type CodeRequest struct {
	Code string `json:"coupon_code" form:"coupon_code"`
}

// Apply handles POST /coupon/apply/
func (h *CouponHandler) Apply(c *gin.Context) {
	var req CodeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	sess := middleware.GetSession(c)
	total, err := h.carts.Total(c.Request.Context(), sess.ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	result, err := h.coupons.Apply(c.Request.Context(), sess, req.Code, total)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Coupon " + result.Code + " applied",
		"code":      result.Code,
		"discount":  money.Format(result.Discount),
		"new_total": money.Format(result.NewTotal),
	})
}

// Remove handles POST /coupon/remove/
func (h *CouponHandler) Remove(c *gin.Context) {
	if err := h.coupons.Remove(c.Request.Context(), middleware.GetSession(c)); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Coupon removed"})
}

// Validate handles POST /coupon/validate/. It only answers AJAX calls.
func (h *CouponHandler) Validate(c *gin.Context) {
	if !middleware.IsAJAX(c) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	var req CodeRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	total, err := h.carts.Total(c.Request.Context(), middleware.GetSession(c).ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	result, err := h.coupons.Validate(c.Request.Context(), req.Code, total)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, result)
}

// List handles GET /api/v1/admin/coupons
func (h *CouponHandler) List(c *gin.Context) {
	coupons, err := h.coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": coupons})
}

// Create handles POST /api/v1/admin/coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req coupon.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	created, err := h.coupons.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

// Deactivate handles DELETE /api/v1/admin/coupons/:id
func (h *CouponHandler) Deactivate(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if err := h.coupons.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Coupon deactivated"})
}
