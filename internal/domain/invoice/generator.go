// internal/domain/invoice/generator.go
package invoice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/pkg/apperror"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// ErrInvoiceRender is returned when the PDF could not be produced
var ErrInvoiceRender = errors.New("invoice rendering failed")

// Renderer turns an HTML document into PDF bytes
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// FileStore persists generated documents below the media root
type FileStore interface {
	Put(ctx context.Context, relPath string, r io.Reader) (string, error)
}

// PathRecorder records where the invoice of an order lives
type PathRecorder interface {
	SetInvoicePath(ctx context.Context, id uint, path string) error
}

// CompanyInfo is printed in the invoice header
type CompanyInfo struct {
	Name    string
	Email   string
	Website string
}

// Generator renders and stores order invoices
type Generator struct {
	renderer Renderer
	files    FileStore
	orders   PathRecorder
	pricing  order.Pricing
	company  CompanyInfo
	logger   *logrus.Logger
	now      func() time.Time
}

// NewGenerator creates a new invoice generator
func NewGenerator(renderer Renderer, files FileStore, orders PathRecorder, pricing order.Pricing, company CompanyInfo, logger *logrus.Logger) *Generator {
	return &Generator{
		renderer: renderer,
		files:    files,
		orders:   orders,
		pricing:  pricing,
		company:  company,
		logger:   logger,
		now:      time.Now,
	}
}

// Data is what the invoice template receives
type Data struct {
	InvoiceNumber string
	InvoiceDate   string
	Company       CompanyInfo
	Order         *order.Order
	Lines         []Line
	Subtotal      string
	Discount      string
	HasDiscount   bool
	Tax           string
	TaxRate       int64
	Shipping      string
	Total         string
}

// Line is one formatted invoice row
type Line struct {
	Name     string
	Quantity int
	Price    string
	Total    string
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceTemplate))

// Path is the media-relative location of an order's invoice
func Path(orderID uint) string {
	return fmt.Sprintf("invoices/invoice_%d.pdf", orderID)
}

// HTML builds the invoice document of an order. Items must be loaded.
func (g *Generator) HTML(o *order.Order) (string, error) {
	totals := g.pricing.Compute(o.ItemsTotal(), o.Discount)

	data := Data{
		InvoiceNumber: o.InvoiceNumber(),
		InvoiceDate:   g.now().Format("02/01/2006"),
		Company:       g.company,
		Order:         o,
		Subtotal:      money.Format(totals.Subtotal),
		Discount:      money.Format(totals.Discount),
		HasDiscount:   totals.Discount > 0,
		Tax:           money.Format(totals.Tax),
		TaxRate:       g.pricing.TaxRatePercent,
		Shipping:      money.Format(totals.Shipping),
		Total:         money.Format(totals.Total),
	}
	for i := range o.Items {
		item := &o.Items[i]
		data.Lines = append(data.Lines, Line{
			Name:     item.ProductName,
			Quantity: item.Quantity,
			Price:    money.Format(item.Price),
			Total:    money.Format(item.Cost()),
		})
	}

	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders the invoice of an order as PDF
func (g *Generator) Generate(ctx context.Context, o *order.Order) ([]byte, error) {
	html, err := g.HTML(o)
	if err != nil {
		return nil, renderError(err)
	}

	pdf, err := g.renderer.Render(ctx, html)
	if err != nil {
		g.logger.WithError(err).WithField("order_id", o.ID).Error("invoice rendering failed")
		return nil, renderError(err)
	}
	return pdf, nil
}

func renderError(err error) error {
	return apperror.External("the invoice could not be generated", fmt.Errorf("%w: %v", ErrInvoiceRender, err))
}

// Save generates the invoice, writes it under invoices/ replacing any
// previous file and records the path on the order.
func (g *Generator) Save(ctx context.Context, o *order.Order) (string, []byte, error) {
	pdf, err := g.Generate(ctx, o)
	if err != nil {
		return "", nil, err
	}

	path, err := g.files.Put(ctx, Path(o.ID), bytes.NewReader(pdf))
	if err != nil {
		return "", nil, fmt.Errorf("failed to store invoice: %w", err)
	}
	if err := g.orders.SetInvoicePath(ctx, o.ID, path); err != nil {
		return "", nil, err
	}

	g.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"path":     path,
	}).Info("invoice saved")
	return path, pdf, nil
}
