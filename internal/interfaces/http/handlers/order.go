// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles order history and the admin order desk
type OrderHandler struct {
	orders  *order.Service
	pricing order.Pricing
	logger  *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service, pricing order.Pricing, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		pricing: pricing,
		logger:  logger,
	}
}

// List handles GET /orders/
func (h *OrderHandler) List(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	response, err := h.orders.ListForUser(c.Request.Context(), userID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Get handles GET /order/:id/. Orders of other users are reported as
// missing.
func (h *OrderHandler) Get(c *gin.Context) {
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

	o, err := h.orders.GetForUser(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.respondOrder(c, http.StatusOK, o)
}

// CancelRequest carries the optional reason of a cancellation
type CancelRequest struct {
	Reason string `json:"reason" form:"reason"`
}

// Cancel handles POST /order/:id/cancel/
func (h *OrderHandler) Cancel(c *gin.Context) {
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

	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			respondError(c, h.logger, bindError(err), "")
			return
		}
	}

	if _, err := h.orders.GetForUser(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	o, err := h.orders.Cancel(c.Request.Context(), id, req.Reason, &userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.respondOrder(c, http.StatusOK, o)
}

// AdminList handles GET /api/v1/admin/orders?status=pending
func (h *OrderHandler) AdminList(c *gin.Context) {
	var req order.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	response, err := h.orders.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// AdminGet handles GET /api/v1/admin/orders/:id
func (h *OrderHandler) AdminGet(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.respondOrder(c, http.StatusOK, o)
}

// AdminUpdateStatus handles PUT /api/v1/admin/orders/:id/status
func (h *OrderHandler) AdminUpdateStatus(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req order.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	var updatedBy *uint
	if adminID, ok := middleware.GetUserIDFromContext(c); ok {
		updatedBy = &adminID
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), id, &req, updatedBy)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.respondOrder(c, http.StatusOK, o)
}

func (h *OrderHandler) respondOrder(c *gin.Context, status int, o *order.Order) {
	totals := h.pricing.TotalsOf(o)
	c.JSON(status, gin.H{
		"success": true,
		"data":    o,
		"totals": gin.H{
			"subtotal": money.Format(totals.Subtotal),
			"discount": money.Format(totals.Discount),
			"tax":      money.Format(totals.Tax),
			"shipping": money.Format(totals.Shipping),
			"total":    money.Format(totals.Total),
		},
	})
}
