// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// InvoiceGenerator renders the PDF invoice of an order
type InvoiceGenerator interface {
	Generate(ctx context.Context, o *order.Order) ([]byte, error)
}

// InvoiceHandler serves invoice downloads
type InvoiceHandler struct {
	orders   *order.Service
	invoices InvoiceGenerator
	logger   *logrus.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(orders *order.Service, invoices InvoiceGenerator, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		orders:   orders,
		invoices: invoices,
		logger:   logger,
	}
}

// Download handles GET /order/:id/invoice/. Orders of other users are
// reported as missing; admins may download any invoice.
func (h *InvoiceHandler) Download(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var o *order.Order
	if middleware.IsAdminFromContext(c) {
		o, err = h.orders.Get(c.Request.Context(), id)
	} else {
		o, err = h.orders.GetForUser(c.Request.Context(), id, userID)
	}
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	pdf, err := h.invoices.Generate(c.Request.Context(), o)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, o.InvoiceFilename()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
