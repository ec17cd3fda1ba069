// internal/interfaces/http/handlers/user_admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/sirupsen/logrus"
)

// UserAdminHandler handles account administration
type UserAdminHandler struct {
	admin  *user.AdminService
	logger *logrus.Logger
}

// NewUserAdminHandler creates a new user admin handler
func NewUserAdminHandler(admin *user.AdminService, logger *logrus.Logger) *UserAdminHandler {
	return &UserAdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// GetUsers handles GET /api/v1/admin/users
func (h *UserAdminHandler) GetUsers(c *gin.Context) {
	var req user.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	response, err := h.admin.GetUsers(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// StatusRequest activates or deactivates an account
type StatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// UpdateUserStatus handles PUT /api/v1/admin/users/:id/status
func (h *UserAdminHandler) UpdateUserStatus(c *gin.Context) {
	adminID, userID, ok := h.adminAndUser(c)
	if !ok {
		return
	}

	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	if err := h.admin.UpdateUserStatus(c.Request.Context(), userID, *req.IsActive, adminID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User status updated"})
}

// AdminRoleRequest grants or revokes admin rights
type AdminRoleRequest struct {
	IsAdmin *bool `json:"is_admin" binding:"required"`
}

// ToggleUserAdmin handles PUT /api/v1/admin/users/:id/admin
func (h *UserAdminHandler) ToggleUserAdmin(c *gin.Context) {
	adminID, userID, ok := h.adminAndUser(c)
	if !ok {
		return
	}

	var req AdminRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	if err := h.admin.ToggleUserAdmin(c.Request.Context(), userID, *req.IsAdmin, adminID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User role updated"})
}

func (h *UserAdminHandler) adminAndUser(c *gin.Context) (uint, uint, bool) {
	adminID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return 0, 0, false
	}
	userID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return 0, 0, false
	}
	return adminID, userID, true
}
