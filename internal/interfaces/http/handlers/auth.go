// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login and email confirmation
type AuthHandler struct {
	users  *user.Service
	config *config.Config
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, cfg *config.Config, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		config: cfg,
		logger: logger,
	}
}

// Register handles POST /register/. The account stays inactive until the
// emailed link is followed.
func (h *AuthHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	created, err := h.users.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Account created, please check your email to activate it",
		"data":    created,
	})
}

// ConfirmEmail handles GET /activate/:token/
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	activated, err := h.users.ConfirmEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your account is active", "data": activated})
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath+"?message=activated")
}

// EmailRequest carries a single email address
type EmailRequest struct {
	Email string `json:"email" form:"email"`
}

// ResendConfirmation handles POST /resend-confirmation/
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	if err := h.users.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "A new confirmation email has been sent"})
}

// Login handles POST /login/. Browsers also receive the access token as
// an HTTP-only cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	response, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	h.setTokenCookie(c, response.Tokens.AccessToken)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"data":    response,
	})
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshToken handles POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	response, err := h.users.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	h.setTokenCookie(c, response.Tokens.AccessToken)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Logout handles POST /logout/. Tokens are stateless, so only the cookie
// is cleared.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.config.IsProduction(), true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, int(h.config.JWT.AccessTokenExpiry.Seconds()), "/", "", h.config.IsProduction(), true)
}

// Subscribe handles POST /newsletter/subscribe/
func (h *AuthHandler) Subscribe(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	result, err := h.users.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// Unsubscribe handles POST /newsletter/unsubscribe/
func (h *AuthHandler) Unsubscribe(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	if err := h.users.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "You have been unsubscribed"})
}
