// internal/pkg/email/types.go
package email

import (
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeEmailConfirmation EmailType = "email_confirmation"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypeVendorRequest     EmailType = "vendor_request"
	EmailTypeVendorApproved    EmailType = "vendor_approved"
	EmailTypeVendorRejected    EmailType = "vendor_rejected"
	EmailTypeTwoFactorCode     EmailType = "two_factor_code"
)

// Email represents an email message
type Email struct {
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTMLContent string       `json:"html_content"`
	TextContent string       `json:"text_content,omitempty"`
	Attachments []Attachment `json:"-"`
	Type        EmailType    `json:"type"`
}

// Attachment is a file sent along with an email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// EmailTemplateData contains common data for all email templates
type EmailTemplateData struct {
	SiteName  string
	SiteURL   string
	UserName  string
	UserEmail string
	Year      int
}

// ConfirmationEmailData contains data for the account confirmation email
type ConfirmationEmailData struct {
	EmailTemplateData
	ConfirmationURL string
	ExpiresIn       string
}

// OrderConfirmationData contains data for order confirmation email.
// Amounts are preformatted strings.
type OrderConfirmationData struct {
	EmailTemplateData
	OrderID  uint
	Items    []OrderLine
	Subtotal string
	Discount string
	Tax      string
	Shipping string
	Total    string
}

// OrderLine is one row of the order confirmation
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

// VendorEmailData is shared by the vendor onboarding emails
type VendorEmailData struct {
	EmailTemplateData
	ShopName    string
	Description string
	AdminURL    string
}

// TwoFactorCodeData carries the one-time code that turns on 2FA
type TwoFactorCodeData struct {
	EmailTemplateData
	Code string
}

// baseData returns common template data
func baseData(siteName, siteURL, userName, userEmail string) EmailTemplateData {
	return EmailTemplateData{
		SiteName:  siteName,
		SiteURL:   siteURL,
		UserName:  userName,
		UserEmail: userEmail,
		Year:      time.Now().Year(),
	}
}
