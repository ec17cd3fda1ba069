package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/pkg/email"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Get(ctx context.Context, id uint) (*order.Order, error) {
	args := m.Called(id)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInvoices struct{ mock.Mock }

func (m *mockInvoices) Save(ctx context.Context, o *order.Order) (string, []byte, error) {
	args := m.Called(o.ID)
	pdf, _ := args.Get(1).([]byte)
	return args.String(0), pdf, args.Error(2)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendConfirmationEmail(ctx context.Context, userEmail, userName, token, expiresIn string) error {
	return m.Called(userEmail, userName, token, expiresIn).Error(0)
}

func (m *mockMailer) SendOrderConfirmationEmail(ctx context.Context, data email.OrderConfirmationData, attachments ...email.Attachment) error {
	return m.Called(data, attachments).Error(0)
}

func placedOrder() *order.Order {
	return &order.Order{
		ID:        42,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Subtotal:  10000,
		Discount:  1000,
		Total:     10800,
		Items: []order.OrderItem{
			{ProductName: "Keyboard", Price: 5000, Quantity: 2},
		},
	}
}

func setup() (*Service, *mockOrders, *mockInvoices, *mockMailer) {
	orders, invoices, mailer := &mockOrders{}, &mockInvoices{}, &mockMailer{}
	pricing := order.Pricing{TaxRatePercent: 20, ShippingFee: 599}
	svc := NewService(orders, invoices, mailer, pricing, 24*time.Hour, logger.Discard())
	return svc, orders, invoices, mailer
}

func message(t *testing.T, msgType string, payload interface{}) messaging.Message {
	t.Helper()
	msg, err := messaging.NewMessage(msgType, "key", payload)
	require.NoError(t, err)
	return msg
}

func TestOrderPlacedAttachesInvoice(t *testing.T) {
	svc, orders, invoices, mailer := setup()
	o := placedOrder()

	orders.On("Get", uint(42)).Return(o, nil)
	invoices.On("Save", uint(42)).Return("invoices/facture_42.pdf", []byte("%PDF"), nil)
	mailer.On("SendOrderConfirmationEmail",
		mock.MatchedBy(func(data email.OrderConfirmationData) bool {
			return data.OrderID == 42 &&
				data.UserEmail == "ada@example.com" &&
				data.UserName == "Ada Lovelace" &&
				len(data.Items) == 1 &&
				data.Items[0].Quantity == 2 &&
				data.Discount != "" && data.Total != ""
		}),
		mock.MatchedBy(func(attachments []email.Attachment) bool {
			return len(attachments) == 1 &&
				attachments[0].Filename == "facture_42.pdf" &&
				attachments[0].ContentType == "application/pdf"
		}),
	).Return(nil)

	err := svc.Handle(context.Background(), message(t, messaging.TypeOrderPlaced, messaging.OrderPlaced{OrderID: 42}))
	require.NoError(t, err)

	orders.AssertExpectations(t)
	invoices.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestOrderPlacedSendsEmailWithoutInvoice(t *testing.T) {
	svc, orders, invoices, mailer := setup()

	orders.On("Get", uint(42)).Return(placedOrder(), nil)
	invoices.On("Save", uint(42)).Return("", nil, errors.New("wkhtmltopdf missing"))
	mailer.On("SendOrderConfirmationEmail", mock.Anything,
		mock.MatchedBy(func(attachments []email.Attachment) bool { return len(attachments) == 0 }),
	).Return(nil)

	require.NoError(t, svc.OrderPlaced(context.Background(), 42))
	mailer.AssertExpectations(t)
}

func TestOrderPlacedReportsFailures(t *testing.T) {
	svc, orders, invoices, mailer := setup()

	orders.On("Get", uint(7)).Return(nil, order.ErrOrderNotFound)
	assert.ErrorIs(t, svc.OrderPlaced(context.Background(), 7), order.ErrOrderNotFound)

	orders.On("Get", uint(42)).Return(placedOrder(), nil)
	invoices.On("Save", uint(42)).Return("p", []byte("%PDF"), nil)
	smtpErr := errors.New("smtp down")
	mailer.On("SendOrderConfirmationEmail", mock.Anything, mock.Anything).Return(smtpErr)
	assert.ErrorIs(t, svc.OrderPlaced(context.Background(), 42), smtpErr)
}

func TestUserRegisteredSendsConfirmation(t *testing.T) {
	svc, _, _, mailer := setup()
	mailer.On("SendConfirmationEmail", "ada@example.com", "ada", "tok", "24 hours").Return(nil)

	payload := messaging.UserRegistered{UserID: 1, Email: "ada@example.com", Name: "ada", Token: "tok"}
	require.NoError(t, svc.Handle(context.Background(), message(t, messaging.TypeUserRegistered, payload)))
	mailer.AssertExpectations(t)
}

func TestHandleIgnoresUnknownType(t *testing.T) {
	svc, orders, _, mailer := setup()

	require.NoError(t, svc.Handle(context.Background(), message(t, "something.else", map[string]string{})))
	orders.AssertNotCalled(t, "Get", mock.Anything)
	mailer.AssertNotCalled(t, "SendConfirmationEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "1 hour", humanDuration(time.Hour))
	assert.Equal(t, "24 hours", humanDuration(24*time.Hour))
	assert.Equal(t, "3 days", humanDuration(72*time.Hour))
	assert.Equal(t, "30 minutes", humanDuration(30*time.Minute))
}
