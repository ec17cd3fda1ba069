// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/sirupsen/logrus"
)

const defaultLowStockThreshold = 5

// InventoryHandler handles stock corrections and the stock ledger
type InventoryHandler struct {
	inventory *inventory.Service
	vendors   *vendor.Service
	logger    *logrus.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, vendors *vendor.Service, logger *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventory: inventoryService,
		vendors:   vendors,
		logger:    logger,
	}
}

// Adjust handles POST /api/v1/admin/inventory/:id/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	adminID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	productID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req inventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	movement, err := h.inventory.Adjust(c.Request.Context(), productID, &req, adminID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": movement})
}

// History handles GET /api/v1/admin/inventory/:id/movements
func (h *InventoryHandler) History(c *gin.Context) {
	productID, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	movements, err := h.inventory.History(c.Request.Context(), productID, queryInt(c, "limit", 50))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": movements})
}

// LowStock handles GET /api/v1/admin/inventory/low-stock?threshold=5
func (h *InventoryHandler) LowStock(c *gin.Context) {
	products, err := h.inventory.LowStock(c.Request.Context(), queryInt(c, "threshold", defaultLowStockThreshold), nil)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}

// VendorLowStock handles GET /vendor/low-stock/ for the vendor's own shop
func (h *InventoryHandler) VendorLowStock(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	v, err := h.vendors.RequireApproved(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	products, err := h.inventory.LowStock(c.Request.Context(), queryInt(c, "threshold", defaultLowStockThreshold), &v.ID)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": products})
}
