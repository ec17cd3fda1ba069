// internal/domain/notification/service.go
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/email"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// OrderLoader retrieves orders with their lines
type OrderLoader interface {
	Get(ctx context.Context, id uint) (*order.Order, error)
}

// InvoiceSaver renders and stores the invoice of an order
type InvoiceSaver interface {
	Save(ctx context.Context, o *order.Order) (string, []byte, error)
}

// Mailer sends the transactional emails handled by the worker
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, userEmail, userName, token, expiresIn string) error
	SendOrderConfirmationEmail(ctx context.Context, data email.OrderConfirmationData, attachments ...email.Attachment) error
}

// Service reacts to the jobs published by checkout and registration
type Service struct {
	orders   OrderLoader
	invoices InvoiceSaver
	mailer   Mailer
	pricing  order.Pricing
	tokenTTL time.Duration
	logger   *logrus.Logger
}

// NewService creates a new notification service
func NewService(orders OrderLoader, invoices InvoiceSaver, mailer Mailer, pricing order.Pricing, tokenTTL time.Duration, logger *logrus.Logger) *Service {
	return &Service{
		orders:   orders,
		invoices: invoices,
		mailer:   mailer,
		pricing:  pricing,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

// Handle dispatches a job by type. It matches messaging.Handler.
func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	switch msg.Type {
	case messaging.TypeOrderPlaced:
		var payload messaging.OrderPlaced
		if err := msg.Decode(&payload); err != nil {
			return err
		}
		return s.OrderPlaced(ctx, payload.OrderID)
	case messaging.TypeUserRegistered:
		var payload messaging.UserRegistered
		if err := msg.Decode(&payload); err != nil {
			return err
		}
		return s.UserRegistered(ctx, &payload)
	default:
		s.logger.WithField("type", msg.Type).Warn("ignoring job of unknown type")
		return nil
	}
}

// OrderPlaced writes the invoice of the order and emails the confirmation
// with the invoice attached. A failed invoice does not hold the email back.
func (s *Service) OrderPlaced(ctx context.Context, orderID uint) error {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to load order %d: %w", orderID, err)
	}

	log := s.logger.WithField("order_id", o.ID)

	var attachments []email.Attachment
	path, pdf, err := s.invoices.Save(ctx, o)
	if err != nil {
		log.WithError(err).Error("failed to generate invoice")
	} else {
		log.WithField("path", path).Info("invoice generated")
		attachments = append(attachments, email.Attachment{
			Filename:    o.InvoiceFilename(),
			ContentType: "application/pdf",
			Data:        pdf,
		})
	}

	if err := s.mailer.SendOrderConfirmationEmail(ctx, s.confirmationData(o), attachments...); err != nil {
		return fmt.Errorf("failed to send order confirmation for order %d: %w", o.ID, err)
	}

	log.WithField("email", o.Email).Info("order confirmation sent")
	return nil
}

// UserRegistered sends the account confirmation link
func (s *Service) UserRegistered(ctx context.Context, payload *messaging.UserRegistered) error {
	if err := s.mailer.SendConfirmationEmail(ctx, payload.Email, payload.Name, payload.Token, humanDuration(s.tokenTTL)); err != nil {
		return fmt.Errorf("failed to send confirmation email to user %d: %w", payload.UserID, err)
	}

	s.logger.WithField("user_id", payload.UserID).Info("confirmation email sent")
	return nil
}

func (s *Service) confirmationData(o *order.Order) email.OrderConfirmationData {
	totals := s.pricing.TotalsOf(o)

	data := email.OrderConfirmationData{
		OrderID:  o.ID,
		Subtotal: money.Format(totals.Subtotal),
		Discount: money.Format(totals.Discount),
		Tax:      money.Format(totals.Tax),
		Shipping: money.Format(totals.Shipping),
		Total:    money.Format(totals.Total),
	}
	data.UserName = o.FullName()
	data.UserEmail = o.Email

	for i := range o.Items {
		item := &o.Items[i]
		data.Items = append(data.Items, email.OrderLine{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    money.Format(item.Price),
			Total:    money.Format(item.Cost()),
		})
	}
	return data
}

func humanDuration(d time.Duration) string {
	hours := int(d.Hours())
	switch {
	case hours >= 48 && hours%24 == 0:
		return fmt.Sprintf("%d days", hours/24)
	case hours == 1:
		return "1 hour"
	case hours > 1:
		return fmt.Sprintf("%d hours", hours)
	default:
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
}
