// internal/pkg/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/sirupsen/logrus"
)

// EmailService renders and delivers all outgoing mail
type EmailService struct {
	config    config.EmailConfig
	siteName  string
	siteURL   string
	templates map[EmailType]*template.Template
	logger    *logrus.Logger
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	service := &EmailService{
		config:    cfg.Email,
		siteName:  cfg.Email.FromName,
		siteURL:   strings.TrimRight(cfg.App.BaseURL, "/"),
		templates: make(map[EmailType]*template.Template),
		logger:    logger,
	}

	for name, body := range templateSources {
		service.templates[name] = template.Must(template.New(string(name)).Parse(layoutTemplate + body))
	}

	return service
}

// Send delivers an email using the configured provider
func (s *EmailService) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email %q has no recipients", email.Subject)
	}

	switch s.config.Provider {
	case "smtp":
		return s.sendSMTPEmail(ctx, email)
	case "log":
		return s.logEmail(email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.Provider)
	}
}

// SendConfirmationEmail sends the account activation link
func (s *EmailService) SendConfirmationEmail(ctx context.Context, userEmail, userName, token, expiresIn string) error {
	data := ConfirmationEmailData{
		EmailTemplateData: baseData(s.siteName, s.siteURL, userName, userEmail),
		ConfirmationURL:   fmt.Sprintf("%s/confirm-email/%s/", s.siteURL, token),
		ExpiresIn:         expiresIn,
	}

	htmlContent, err := s.renderTemplate(EmailTypeEmailConfirmation, data)
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:          []string{userEmail},
		Subject:     fmt.Sprintf("Confirm your %s account", s.siteName),
		HTMLContent: htmlContent,
		TextContent: fmt.Sprintf("Hello %s,\n\nConfirm your account: %s\nThe link expires in %s.\n", userName, data.ConfirmationURL, expiresIn),
		Type:        EmailTypeEmailConfirmation,
	})
}

// SendOrderConfirmationEmail sends the order summary with the given attachments
func (s *EmailService) SendOrderConfirmationEmail(ctx context.Context, data OrderConfirmationData, attachments ...Attachment) error {
	data.EmailTemplateData = baseData(s.siteName, s.siteURL, data.UserName, data.UserEmail)

	htmlContent, err := s.renderTemplate(EmailTypeOrderConfirmation, data)
	if err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hello %s,\n\nThank you for your order #%d.\n\n", data.UserName, data.OrderID)
	for _, line := range data.Items {
		fmt.Fprintf(&text, "%d x %s  %s\n", line.Quantity, line.Name, line.Total)
	}
	fmt.Fprintf(&text, "\nSubtotal: %s\nTax: %s\nShipping: %s\nTotal: %s\n", data.Subtotal, data.Tax, data.Shipping, data.Total)

	return s.Send(ctx, &Email{
		To:          []string{data.UserEmail},
		Subject:     fmt.Sprintf("Order confirmation #%d", data.OrderID),
		HTMLContent: htmlContent,
		TextContent: text.String(),
		Attachments: attachments,
		Type:        EmailTypeOrderConfirmation,
	})
}

// SendVendorRequestEmail notifies the operators about a new vendor application
func (s *EmailService) SendVendorRequestEmail(ctx context.Context, shopName, description, applicantEmail string) error {
	data := VendorEmailData{
		EmailTemplateData: baseData(s.siteName, s.siteURL, applicantEmail, applicantEmail),
		ShopName:          shopName,
		Description:       description,
		AdminURL:          s.siteURL + "/admin/vendors/",
	}

	htmlContent, err := s.renderTemplate(EmailTypeVendorRequest, data)
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:          s.config.OperatorEmails,
		Subject:     fmt.Sprintf("New vendor application - %s", shopName),
		HTMLContent: htmlContent,
		TextContent: fmt.Sprintf("%s applied to become a vendor as %q.\nReview: %s\n", applicantEmail, shopName, data.AdminURL),
		Type:        EmailTypeVendorRequest,
	})
}

// SendVendorApprovedEmail tells a vendor their shop was approved
func (s *EmailService) SendVendorApprovedEmail(ctx context.Context, vendorEmail, userName, shopName string) error {
	return s.sendVendorDecision(ctx, EmailTypeVendorApproved, vendorEmail, userName, shopName,
		fmt.Sprintf("Your vendor application was approved - %s", shopName))
}

// SendVendorRejectedEmail tells a vendor their application was declined
func (s *EmailService) SendVendorRejectedEmail(ctx context.Context, vendorEmail, userName, shopName string) error {
	return s.sendVendorDecision(ctx, EmailTypeVendorRejected, vendorEmail, userName, shopName,
		fmt.Sprintf("Update on your vendor application - %s", shopName))
}

// SendTwoFactorCode emails the code that confirms two-factor activation
func (s *EmailService) SendTwoFactorCode(ctx context.Context, userEmail, userName, code string) error {
	data := TwoFactorCodeData{
		EmailTemplateData: baseData(s.siteName, s.siteURL, userName, userEmail),
		Code:              code,
	}

	htmlContent, err := s.renderTemplate(EmailTypeTwoFactorCode, data)
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:          []string{userEmail},
		Subject:     fmt.Sprintf("%s verification code", s.siteName),
		HTMLContent: htmlContent,
		TextContent: fmt.Sprintf("Your %s verification code: %s\n", s.siteName, code),
		Type:        EmailTypeTwoFactorCode,
	})
}

func (s *EmailService) sendVendorDecision(ctx context.Context, kind EmailType, vendorEmail, userName, shopName, subject string) error {
	data := VendorEmailData{
		EmailTemplateData: baseData(s.siteName, s.siteURL, userName, vendorEmail),
		ShopName:          shopName,
	}

	htmlContent, err := s.renderTemplate(kind, data)
	if err != nil {
		return err
	}

	return s.Send(ctx, &Email{
		To:          []string{vendorEmail},
		Subject:     subject,
		HTMLContent: htmlContent,
		Type:        kind,
	})
}

// renderTemplate renders an email template with data
func (s *EmailService) renderTemplate(name EmailType, data interface{}) (string, error) {
	tmpl, exists := s.templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// logEmail is the development provider: nothing leaves the process
func (s *EmailService) logEmail(email *Email) error {
	names := make([]string, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		names = append(names, a.Filename)
	}

	s.logger.WithFields(logrus.Fields{
		"to":          email.To,
		"subject":     email.Subject,
		"type":        email.Type,
		"attachments": names,
	}).Info("email delivered to log")
	return nil
}
