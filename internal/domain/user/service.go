// internal/domain/user/service.go
package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/auth"
	"github.com/hackerz/marketplace/internal/pkg/dberr"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = apperror.NotFound("user not found")
	ErrInvalidCredentials = apperror.New(apperror.KindAuthentication, "invalid username or password")
	ErrAccountInactive    = apperror.Domain("your account is not activated, please confirm your email address")
	ErrInvalidToken       = apperror.NotFound("invalid confirmation link")
	ErrTokenExpired       = apperror.Domain("the confirmation link has expired, please request a new one")
	ErrEmailTaken         = apperror.Conflict("this email is already used by another account")
	ErrUsernameTaken      = apperror.Conflict("this username is already taken")
	ErrNoTwoFactorCode    = apperror.Domain("no verification code was requested, ask for a new one first")
	ErrInvalidTwoFactor   = apperror.Validation("token", "invalid verification code")
)

// CodeMailer delivers the two-factor verification code
type CodeMailer interface {
	SendTwoFactorCode(ctx context.Context, userEmail, userName, code string) error
}

// Service handles user accounts
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	jobs            messaging.Publisher
	mailer          CodeMailer
	logger          *logrus.Logger
	now             func() time.Time
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, jobs messaging.Publisher, mailer CodeMailer, logger *logrus.Logger) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
		jobs:            jobs,
		mailer:          mailer,
		logger:          logger,
		now:             time.Now,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

// LoginRequest accepts a username or an email as identifier
type LoginRequest struct {
	Login    string `json:"login" form:"login" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User   *User           `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

// AccountUpdateRequest changes the personal information of a user
type AccountUpdateRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

// ShippingRequest is the default shipping address of a profile
type ShippingRequest struct {
	Address    string `json:"address" validate:"max=255"`
	City       string `json:"city" validate:"max=100"`
	PostalCode string `json:"postal_code" validate:"max=20"`
	Country    string `json:"country" validate:"max=100"`
}

// Register creates an inactive account with its profile and confirmation
// token, then queues the confirmation email.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, apperror.Validation("confirm_password", "passwords do not match")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation("password", err.Error())
	}

	if err := s.checkUnique(ctx, 0, req.Username, req.Email); err != nil {
		return nil, err
	}

	user := User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	}
	var token EmailConfirmationToken

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		if err := tx.Create(&Profile{UserID: user.ID, Country: DefaultCountry}).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		t, err := issueToken(tx, user.ID)
		if err != nil {
			return err
		}
		token = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user registered")
	s.queueConfirmation(ctx, &user, token.Token)

	return &user, nil
}

// ConfirmEmail activates the account owning token and deletes the token
func (s *Service) ConfirmEmail(ctx context.Context, token string) (*User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrInvalidToken
	}

	var t EmailConfirmationToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to retrieve token: %w", err)
	}
	if !t.IsValid(s.now(), s.config.Checkout.ConfirmationTokenTTL) {
		return nil, ErrTokenExpired
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&User{}).Where("id = ?", t.UserID).Update("is_active", true).Error; err != nil {
			return fmt.Errorf("failed to activate user: %w", err)
		}
		if err := tx.Delete(&EmailConfirmationToken{}, t.ID).Error; err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", t.UserID).Info("email confirmed")
	return s.GetProfile(ctx, t.UserID)
}

// ResendConfirmation replaces the token of an inactive account and queues
// a new email. Unknown or active addresses are ignored so the response does
// not reveal which accounts exist.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperror.Validation("email", "please provide a valid email address")
	}

	var user User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, false).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	var token *EmailConfirmationToken
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&EmailConfirmationToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete token: %w", err)
		}
		token, err = issueToken(tx, user.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.queueConfirmation(ctx, &user, token.Token)
	return nil
}

// Login authenticates an active user by username or email
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}

	login := strings.TrimSpace(req.Login)
	var user User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", user.ID).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	user.LastLoginAt = &now

	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// RefreshToken issues a new token pair from a valid refresh token
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindAuthentication, "invalid refresh token", err)
	}

	var user User
	if err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", claims.UserID, true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.KindAuthentication, "user not found or inactive")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	tokens, err := s.jwtManager.GenerateTokenPair(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: &user, Tokens: tokens}, nil
}

// GetProfile loads a user with its profile, creating the profile when it
// is missing.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	profile, err := EnsureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	user.Profile = profile
	return &user, nil
}

// UpdateAccount changes the personal information of a user
func (s *Service) UpdateAccount(ctx context.Context, userID uint, req *AccountUpdateRequest) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, userID, req.Username, req.Email); err != nil {
		return nil, err
	}

	result := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"username":   req.Username,
		"email":      req.Email,
		"first_name": strings.TrimSpace(req.FirstName),
		"last_name":  strings.TrimSpace(req.LastName),
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetProfile(ctx, userID)
}

// UpdateShipping stores the default shipping address of a user
func (s *Service) UpdateShipping(ctx context.Context, userID uint, req *ShippingRequest) (*Profile, error) {
	if err := apperror.ValidateStruct(req); err != nil {
		return nil, err
	}
	if err := SaveShipping(s.db.WithContext(ctx), userID, req); err != nil {
		return nil, err
	}
	return EnsureProfile(s.db.WithContext(ctx), userID)
}

// ChangePassword changes the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(currentPassword, user.Password); err != nil {
		return apperror.Validation("current_password", "current password is incorrect")
	}

	hashedPassword, err := s.passwordManager.HashPassword(newPassword)
	if err != nil {
		return apperror.Validation("new_password", err.Error())
	}

	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", userID).Update("password", hashedPassword).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestTwoFactor stores a fresh one-time code on the profile and emails
// it to the user. Two-factor stays in its current state until the code is
// verified.
func (s *Service) RequestTwoFactor(ctx context.Context, userID uint) error {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	profile, err := EnsureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return err
	}

	code, err := auth.GenerateTwoFactorCode()
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", profile.ID).Update("two_factor_secret", code).Error; err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	if err := s.mailer.SendTwoFactorCode(ctx, user.Email, user.GetDisplayName(), code); err != nil {
		return apperror.External("could not send the verification code by email", err)
	}

	s.logger.WithField("user_id", userID).Info("two factor code sent")
	return nil
}

// VerifyTwoFactor turns two-factor on when token matches the code sent by
// RequestTwoFactor. The code is kept on the profile afterwards.
func (s *Service) VerifyTwoFactor(ctx context.Context, userID uint, token string) (*Profile, error) {
	profile, err := EnsureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if profile.TwoFactorSecret == "" {
		return nil, ErrNoTwoFactorCode
	}

	token = strings.TrimSpace(token)
	if subtle.ConstantTimeCompare([]byte(token), []byte(profile.TwoFactorSecret)) != 1 {
		return nil, ErrInvalidTwoFactor
	}

	if err := s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", profile.ID).Update("two_factor_enabled", true).Error; err != nil {
		return nil, fmt.Errorf("failed to enable two factor: %w", err)
	}
	profile.TwoFactorEnabled = true

	s.logger.WithField("user_id", userID).Info("two factor enabled")
	return profile, nil
}

// DisableTwoFactor turns two-factor off and forgets the code
func (s *Service) DisableTwoFactor(ctx context.Context, userID uint) (*Profile, error) {
	profile, err := EnsureProfile(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(&Profile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update two factor settings: %w", err)
	}

	profile.TwoFactorEnabled = false
	profile.TwoFactorSecret = ""
	return profile, nil
}

// EnsureProfile returns the profile of a user, creating an empty one when
// the user has none. db may be a transaction.
func EnsureProfile(db *gorm.DB, userID uint) (*Profile, error) {
	profile := Profile{UserID: userID, Country: DefaultCountry}
	if err := db.Where(Profile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve profile: %w", err)
	}
	return &profile, nil
}

// SaveShipping stores a shipping address on the profile of a user using
// db, which may be a transaction.
func SaveShipping(db *gorm.DB, userID uint, req *ShippingRequest) error {
	profile, err := EnsureProfile(db, userID)
	if err != nil {
		return err
	}

	country := strings.TrimSpace(req.Country)
	if country == "" {
		country = DefaultCountry
	}
	err = db.Model(&Profile{}).Where("id = ?", profile.ID).Updates(map[string]interface{}{
		"address":     strings.TrimSpace(req.Address),
		"city":        strings.TrimSpace(req.City),
		"postal_code": strings.TrimSpace(req.PostalCode),
		"country":     country,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to save shipping address: %w", err)
	}
	return nil
}

func (s *Service) checkUnique(ctx context.Context, userID uint, username, email string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Model(&User{}).Where("username = ? AND id <> ?", username, userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return nil
}

func issueToken(tx *gorm.DB, userID uint) (*EmailConfirmationToken, error) {
	token := EmailConfirmationToken{UserID: userID, Token: uuid.NewString()}
	if err := tx.Create(&token).Error; err != nil {
		return nil, fmt.Errorf("failed to create confirmation token: %w", err)
	}
	return &token, nil
}

// queueConfirmation is best effort: the user can always ask for a resend
func (s *Service) queueConfirmation(ctx context.Context, user *User, token string) {
	err := messaging.Publish(ctx, s.jobs, messaging.TypeUserRegistered, strconv.FormatUint(uint64(user.ID), 10), messaging.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.GetDisplayName(),
		Token:  token,
	})
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to queue confirmation email")
	}
}
