// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultCountry is used for profiles without an explicit country
const DefaultCountry = "france"

// User represents the user entity. Accounts stay inactive until the
// email address is confirmed.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"uniqueIndex;not null;size:150" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null;size:254" json:"email"`
	Password    string     `gorm:"not null;size:255" json:"-"`
	FirstName   string     `gorm:"size:150" json:"first_name"`
	LastName    string     `gorm:"size:150" json:"last_name"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	IsAdmin     bool       `gorm:"not null" json:"is_admin"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"profile,omitempty"`
}

// Profile holds the shipping address, vendor flag and 2FA settings
type Profile struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Address          string    `gorm:"size:255" json:"address"`
	City             string    `gorm:"size:100" json:"city"`
	PostalCode       string    `gorm:"size:20" json:"postal_code"`
	Country          string    `gorm:"size:100;not null;default:'france'" json:"country"`
	IsVendor         bool      `gorm:"not null" json:"is_vendor"`
	TwoFactorEnabled bool      `gorm:"not null" json:"two_factor_enabled"`
	TwoFactorSecret  string    `gorm:"size:64" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// EmailConfirmationToken is the single pending confirmation of a user
type EmailConfirmationToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null;size:36" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsletterSubscriber is an email registered for the newsletter
type NewsletterSubscriber struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:254" json:"email"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string                   { return "users" }
func (Profile) TableName() string                { return "profiles" }
func (EmailConfirmationToken) TableName() string { return "email_confirmation_tokens" }
func (NewsletterSubscriber) TableName() string   { return "newsletter_subscribers" }

// BeforeCreate lower-cases the email
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(u.Email)
	return nil
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// GetDisplayName returns the full name, or the username when it is empty
func (u *User) GetDisplayName() string {
	if fullName := u.GetFullName(); fullName != "" {
		return fullName
	}
	return u.Username
}

// IsValid reports whether the token is younger than ttl
func (t *EmailConfirmationToken) IsValid(now time.Time, ttl time.Duration) bool {
	return t.CreatedAt.Add(ttl).After(now)
}

// HasShippingAddress reports whether checkout can prefill the address
func (p *Profile) HasShippingAddress() bool {
	return p.Address != "" && p.City != "" && p.PostalCode != ""
}
