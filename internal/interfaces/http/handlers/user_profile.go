// internal/interfaces/http/handlers/user_profile.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/sirupsen/logrus"
)

// UserProfileHandler handles the account pages of a logged in user
type UserProfileHandler struct {
	users   *user.Service
	vendors *vendor.Service
	orders  *order.Service
	logger  *logrus.Logger
}

// NewUserProfileHandler creates a new user profile handler
func NewUserProfileHandler(users *user.Service, vendors *vendor.Service, orders *order.Service, logger *logrus.Logger) *UserProfileHandler {
	return &UserProfileHandler{
		users:   users,
		vendors: vendors,
		orders:  orders,
		logger:  logger,
	}
}

// GetProfile handles GET /profile/. The warning query set by denied
// vendor operations is echoed back.
func (h *UserProfileHandler) GetProfile(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	standing, err := h.vendors.Standing(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	recent, err := h.orders.ListForUser(c.Request.Context(), userID, 1, 5)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	body := gin.H{
		"success":       true,
		"data":          profile,
		"vendor":        standing.Vendor,
		"is_vendor":     standing.Kind == vendor.IsVendor,
		"vendor_active": standing.Approved(),
		"recent_orders": recent.Orders,
	}
	if warning := c.Query("warning"); warning != "" {
		body["warning"] = warning
	}
	c.JSON(http.StatusOK, body)
}

// UpdateAccount handles POST /profile/account/
func (h *UserProfileHandler) UpdateAccount(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req user.AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	updated, err := h.users.UpdateAccount(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Account updated", "data": updated})
}

// UpdateShipping handles POST /profile/shipping/
func (h *UserProfileHandler) UpdateShipping(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req user.ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	profile, err := h.users.UpdateShipping(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Shipping address updated", "data": profile})
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /profile/password/
func (h *UserProfileHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password changed"})
}

// TwoFactorRequest drives the two-factor flow: enable sends a code, verify
// checks it, disable turns two-factor off.
type TwoFactorRequest struct {
	Action string `json:"action" form:"action" binding:"required,oneof=enable verify disable"`
	Token  string `json:"token" form:"token"`
}

// Toggle2FA handles POST /profile/2fa/
func (h *UserProfileHandler) Toggle2FA(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req TwoFactorRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "enable":
		if err := h.users.RequestTwoFactor(ctx, userID); err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "A verification code was sent to your email address"})
	case "verify":
		if _, err := h.users.VerifyTwoFactor(ctx, userID, req.Token); err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "two_factor_enabled": true})
	case "disable":
		if _, err := h.users.DisableTwoFactor(ctx, userID); err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "two_factor_enabled": false})
	}
}
