package invoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/infrastructure/storage"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	args := m.Called(ctx, html)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) SetInvoicePath(ctx context.Context, id uint, path string) error {
	return m.Called(ctx, id, path).Error(0)
}

func sampleOrder() *order.Order {
	return &order.Order{
		ID:         42,
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		Address:    "1 rue de Rivoli",
		PostalCode: "75001",
		City:       "Paris",
		Subtotal:   5000,
		Discount:   1000,
		Total:      4800,
		CouponCode: "SAVE10",
		CreatedAt:  time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Items: []order.OrderItem{
			{ProductID: 1, ProductName: "Keyboard", Price: 2000, Quantity: 2},
			{ProductID: 2, ProductName: "Mouse", Price: 1000, Quantity: 1},
		},
	}
}

func newGenerator(t *testing.T, r Renderer, rec PathRecorder) (*Generator, string) {
	root := t.TempDir()
	g := NewGenerator(r, storage.NewLocal(root), rec,
		order.Pricing{TaxRatePercent: 20, ShippingFee: 599},
		CompanyInfo{Name: "Hackerz", Email: "shop@example.com"},
		logger.Discard())
	g.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }
	return g, root
}

func TestHTMLContainsBreakdown(t *testing.T) {
	g, _ := newGenerator(t, &mockRenderer{}, &mockRecorder{})

	html, err := g.HTML(sampleOrder())
	require.NoError(t, err)

	assert.Contains(t, html, "INV-42-20260314")
	assert.Contains(t, html, "15/03/2026")
	assert.Contains(t, html, "Keyboard")
	assert.Contains(t, html, "50.00")  // subtotal
	assert.Contains(t, html, "-10.00") // discount
	assert.Contains(t, html, "8.00")   // tax on 40.00
	assert.Contains(t, html, "5.99")
	assert.Contains(t, html, "53.99")
	assert.Contains(t, html, "SAVE10")
}

func TestHTMLOmitsDiscountRowWithoutDiscount(t *testing.T) {
	g, _ := newGenerator(t, &mockRenderer{}, &mockRecorder{})
	o := sampleOrder()
	o.Discount = 0
	o.CouponCode = ""

	html, err := g.HTML(o)
	require.NoError(t, err)
	assert.NotContains(t, html, "Discount")
	assert.Contains(t, html, "65.99")
}

func TestSaveWritesFileAndRecordsPath(t *testing.T) {
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.AnythingOfType("string")).Return([]byte("%PDF-1.4 fake"), nil)
	recorder := &mockRecorder{}
	recorder.On("SetInvoicePath", mock.Anything, uint(42), "invoices/invoice_42.pdf").Return(nil)

	g, root := newGenerator(t, renderer, recorder)

	path, pdf, err := g.Save(context.Background(), sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "invoices/invoice_42.pdf", path)
	assert.Equal(t, []byte("%PDF-1.4 fake"), pdf)

	written, err := os.ReadFile(filepath.Join(root, "invoices", "invoice_42.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdf, written)

	// a second save overwrites in place
	_, _, err = g.Save(context.Background(), sampleOrder())
	require.NoError(t, err)

	renderer.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestRendererFailureIsWrapped(t *testing.T) {
	renderer := &mockRenderer{}
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil, errors.New("wkhtmltopdf not found"))
	recorder := &mockRecorder{}

	g, root := newGenerator(t, renderer, recorder)

	_, _, err := g.Save(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvoiceRender)
	assert.Equal(t, apperror.KindExternal, apperror.KindOf(err))

	_, statErr := os.Stat(filepath.Join(root, "invoices", "invoice_42.pdf"))
	assert.True(t, os.IsNotExist(statErr))
	recorder.AssertNotCalled(t, "SetInvoicePath", mock.Anything, mock.Anything, mock.Anything)
}
