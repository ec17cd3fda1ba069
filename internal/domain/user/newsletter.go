package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/dberr"
	"gorm.io/gorm"
)

// SubscribeResult tells whether the address is new to the newsletter
type SubscribeResult struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// Subscribe registers an email for the newsletter. Subscribing twice is
// not an error; an unsubscribed address is reactivated.
func (s *Service) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); email == "" || err != nil {
		return nil, apperror.Validation("email", "please provide a valid email address")
	}

	var sub NewsletterSubscriber
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&sub).Error
	switch {
	case err == nil:
		if !sub.IsActive {
			if err := s.db.WithContext(ctx).Model(&NewsletterSubscriber{}).Where("id = ?", sub.ID).Update("is_active", true).Error; err != nil {
				return nil, fmt.Errorf("failed to reactivate subscriber: %w", err)
			}
			return &SubscribeResult{Message: "welcome back to our newsletter"}, nil
		}
		return &SubscribeResult{Message: "you are already subscribed to our newsletter"}, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = NewsletterSubscriber{Email: email, IsActive: true}
		if err := s.db.WithContext(ctx).Create(&sub).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				return &SubscribeResult{Message: "you are already subscribed to our newsletter"}, nil
			}
			return nil, fmt.Errorf("failed to create subscriber: %w", err)
		}
		return &SubscribeResult{Created: true, Message: "thank you for subscribing to our newsletter"}, nil
	default:
		return nil, fmt.Errorf("failed to retrieve subscriber: %w", err)
	}
}

// Unsubscribe deactivates an address. Unknown addresses are ignored.
func (s *Service) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Model(&NewsletterSubscriber{}).Where("email = ?", email).Update("is_active", false).Error; err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}
