// internal/domain/user/admin_service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AdminService handles admin user management operations
type AdminService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewAdminService creates a new admin user service
func NewAdminService(db *gorm.DB, logger *logrus.Logger) *AdminService {
	return &AdminService{
		db:     db,
		logger: logger,
	}
}

// UserListRequest represents user list query parameters
type UserListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Search    string `form:"search"`
	Status    string `form:"status"` // active, inactive, all
	Role      string `form:"role"`   // admin, vendor, user, all
	SortBy    string `form:"sort_by,default=created_at"`
	SortOrder string `form:"sort_order,default=desc"`
}

// UserListResponse represents user list with pagination
type UserListResponse struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}

var userSortColumns = map[string]bool{
	"created_at": true,
	"username":   true,
	"email":      true,
	"last_login": true,
}

// GetUsers retrieves users with filtering and pagination
func (s *AdminService) GetUsers(ctx context.Context, req *UserListRequest) (*UserListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.WithContext(ctx).Model(&User{})

	if req.Search != "" {
		searchTerm := "%" + strings.ToLower(req.Search) + "%"
		query = query.Where(
			"LOWER(email) LIKE ? OR LOWER(username) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
			searchTerm, searchTerm, searchTerm, searchTerm,
		)
	}

	switch req.Status {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	}

	switch req.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "vendor":
		query = query.Where("id IN (?)", s.db.Model(&Profile{}).Select("user_id").Where("is_vendor = ?", true))
	case "user":
		query = query.Where("is_admin = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	column := req.SortBy
	if column == "last_login" {
		column = "last_login_at"
	} else if !userSortColumns[column] {
		column = "created_at"
	}
	orderClause := column + " ASC"
	if req.SortOrder != "asc" {
		orderClause = column + " DESC"
	}

	var users []User
	offset := (req.Page - 1) * req.Limit
	if err := query.Preload("Profile").Order(orderClause).Offset(offset).Limit(req.Limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}

	return &UserListResponse{
		Users:      users,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: int((total + int64(req.Limit) - 1) / int64(req.Limit)),
	}, nil
}

// UpdateUserStatus activates or deactivates an account
func (s *AdminService) UpdateUserStatus(ctx context.Context, userID uint, isActive bool, adminID uint) error {
	if userID == adminID && !isActive {
		return apperror.Domain("cannot deactivate your own account")
	}
	return s.setFlag(ctx, userID, "is_active", isActive)
}

// ToggleUserAdmin grants or revokes admin rights. The last admin cannot be
// demoted.
func (s *AdminService) ToggleUserAdmin(ctx context.Context, userID uint, isAdmin bool, adminID uint) error {
	if userID == adminID && !isAdmin {
		return apperror.Domain("cannot remove your own admin privileges")
	}

	if !isAdmin {
		var adminCount int64
		if err := s.db.WithContext(ctx).Model(&User{}).Where("is_admin = ? AND id <> ?", true, userID).Count(&adminCount).Error; err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if adminCount == 0 {
			return apperror.Domain("at least one admin must remain")
		}
	}
	return s.setFlag(ctx, userID, "is_admin", isAdmin)
}

func (s *AdminService) setFlag(ctx context.Context, userID uint, column string, value bool) error {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update(column, value).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"user_id": userID, column: value}).Info("user updated by admin")
	return nil
}
