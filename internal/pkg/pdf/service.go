// internal/pkg/pdf/service.go
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Options control the page setup of generated documents
type Options struct {
	Dpi        uint
	Zoom       float64
	FooterPage bool
}

// DefaultOptions are used for invoices
var DefaultOptions = Options{Dpi: 300, Zoom: 0.95, FooterPage: true}

// Service converts HTML documents to PDF through wkhtmltopdf
type Service struct {
	options Options
}

// NewService creates a new PDF service
func NewService(options Options) *Service {
	return &Service{options: options}
}

// Render converts an HTML document into PDF bytes
func (s *Service) Render(ctx context.Context, html string) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(s.options.Dpi)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Grayscale.Set(false)

	page := wkhtmltopdf.NewPageReader(strings.NewReader(html))
	page.EnableLocalFileAccess.Set(false)
	if s.options.FooterPage {
		page.FooterRight.Set("[page]")
		page.FooterFontSize.Set(9)
	}
	if s.options.Zoom > 0 {
		page.Zoom.Set(s.options.Zoom)
	}
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return pdfg.Bytes(), nil
}
