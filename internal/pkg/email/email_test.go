package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogService(t *testing.T) (*EmailService, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&out)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := &config.Config{
		App: config.AppConfig{BaseURL: "http://shop.test/"},
		Email: config.EmailConfig{
			Provider:       "log",
			FromEmail:      "noreply@shop.test",
			FromName:       "Shop",
			OperatorEmails: []string{"ops@shop.test"},
		},
	}
	return NewEmailService(cfg, logger), &out
}

func TestSendRequiresRecipients(t *testing.T) {
	service, _ := newLogService(t)

	err := service.Send(context.Background(), &Email{Subject: "nobody"})
	assert.Error(t, err)
}

func TestOrderConfirmationCarriesAttachment(t *testing.T) {
	service, out := newLogService(t)

	err := service.SendOrderConfirmationEmail(context.Background(), OrderConfirmationData{
		EmailTemplateData: EmailTemplateData{UserName: "ada", UserEmail: "ada@shop.test"},
		OrderID:           42,
		Items:             []OrderLine{{Name: "Keyboard", Quantity: 2, Total: "20.00"}},
		Total:             "29.99",
	}, Attachment{Filename: "facture_42.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Order confirmation #42")
	assert.Contains(t, out.String(), "facture_42.pdf")
}

func TestVendorRequestGoesToOperators(t *testing.T) {
	service, out := newLogService(t)

	require.NoError(t, service.SendVendorRequestEmail(context.Background(), "Bits", "Retro parts", "ada@shop.test"))
	assert.Contains(t, out.String(), "ops@shop.test")
}

func TestRenderTemplateUnknown(t *testing.T) {
	service, _ := newLogService(t)

	_, err := service.renderTemplate("missing", nil)
	assert.Error(t, err)
}

func TestBuildMessageIncludesAllParts(t *testing.T) {
	msg, err := buildMessage("Shop <noreply@shop.test>", &Email{
		To:          []string{"ada@shop.test"},
		Subject:     "Order confirmation #1",
		TextContent: "plain body",
		HTMLContent: "<p>html body</p>",
		Attachments: []Attachment{{Filename: "facture_1.pdf", ContentType: "application/pdf", Data: bytes.Repeat([]byte("x"), 200)}},
	})
	require.NoError(t, err)

	body := string(msg)
	assert.Contains(t, body, "multipart/mixed")
	assert.Contains(t, body, "multipart/alternative")
	assert.Contains(t, body, "plain body")
	assert.Contains(t, body, "<p>html body</p>")
	assert.Contains(t, body, `filename="facture_1.pdf"`)
	assert.Contains(t, body, "Content-Transfer-Encoding: base64")
}

func TestTwoFactorCodeEmail(t *testing.T) {
	service, out := newLogService(t)

	require.NoError(t, service.SendTwoFactorCode(context.Background(), "ada@shop.test", "ada", "aB3-xY9_kLm2"))
	assert.Contains(t, out.String(), "ada@shop.test")
	assert.Contains(t, out.String(), "Shop verification code")
}
