package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

// VendorHandler handles vendor onboarding and the vendor back office
type VendorHandler struct {
	vendors  *vendor.Service
	products *vendor.ProductService
	logger   *logrus.Logger
}

// NewVendorHandler creates a new vendor handler
func NewVendorHandler(vendors *vendor.Service, products *vendor.ProductService, logger *logrus.Logger) *VendorHandler {
	return &VendorHandler{
		vendors:  vendors,
		products: products,
		logger:   logger,
	}
}

// BecomeVendor handles POST /become-vendor/ (multipart form with the
// identity_document file)
func (h *VendorHandler) BecomeVendor(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	var req vendor.SubmitRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), ProfilePath)
		return
	}

	if header, err := c.FormFile("identity_document"); err == nil {
		file, err := header.Open()
		if err != nil {
			respondError(c, h.logger, fmt.Errorf("failed to open upload: %w", err), ProfilePath)
			return
		}
		defer file.Close()
		req.Document = &vendor.Document{Filename: header.Filename, Reader: file, Size: header.Size}
	}

	v, err := h.vendors.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	const message = "Your vendor application has been submitted and is awaiting review"
	if middleware.IsAJAX(c) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": message, "vendor": v})
		return
	}
	c.Redirect(http.StatusFound, ProfilePath+"?message=submitted")
}

// Products handles GET /vendor/products/
func (h *VendorHandler) Products(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	overview, err := h.products.List(c.Request.Context(), userID, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}

// AddProduct handles POST /vendor/product/add/
func (h *VendorHandler) AddProduct(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	var req product.CreateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), ProfilePath)
		return
	}

	p, err := h.products.Add(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Product added", "data": p})
		return
	}
	c.Redirect(http.StatusFound, "/vendor/products/")
}

// ProductDetail handles GET /vendor/product/:id/
func (h *VendorHandler) ProductDetail(c *gin.Context) {
	userID, id, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	detail, err := h.products.Detail(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": detail})
}

// EditProduct handles POST /vendor/product/:id/edit/
func (h *VendorHandler) EditProduct(c *gin.Context) {
	userID, id, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	var req product.UpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		respondError(c, h.logger, bindError(err), ProfilePath)
		return
	}

	p, err := h.products.Edit(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product updated", "data": p})
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/vendor/product/%d/", p.ID))
}

// DeleteProduct handles POST /vendor/product/:id/delete/
func (h *VendorHandler) DeleteProduct(c *gin.Context) {
	userID, id, ok := h.userAndProduct(c)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
		return
	}
	c.Redirect(http.StatusFound, "/vendor/products/")
}

func (h *VendorHandler) userAndProduct(c *gin.Context) (uint, uint, bool) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return 0, 0, false
	}
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, ProfilePath)
		return 0, 0, false
	}
	return userID, id, true
}

// DecisionRequest selects the vendors of a bulk approval or rejection
type DecisionRequest struct {
	IDs []uint `json:"ids"`
}

// AdminList handles GET /api/v1/admin/vendors?status=pending
func (h *VendorHandler) AdminList(c *gin.Context) {
	vendors, err := h.vendors.List(c.Request.Context(), vendor.Status(c.Query("status")))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": vendors})
}

// AdminGet handles GET /api/v1/admin/vendors/:id
func (h *VendorHandler) AdminGet(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	v, err := h.vendors.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
}

// Approve handles POST /api/v1/admin/vendors/approve and
// POST /api/v1/admin/vendors/:id/approve
func (h *VendorHandler) Approve(c *gin.Context) {
	h.decide(c, h.vendors.Approve)
}

// Reject handles POST /api/v1/admin/vendors/reject and
// POST /api/v1/admin/vendors/:id/reject
func (h *VendorHandler) Reject(c *gin.Context) {
	h.decide(c, h.vendors.Reject)
}

func (h *VendorHandler) decide(c *gin.Context, decide func(ctx context.Context, ids ...uint) (*vendor.DecisionResult, error)) {
	var ids []uint
	if c.Param("id") != "" {
		id, err := parseID(c, "id")
		if err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		ids = []uint{id}
	} else {
		var req DecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, h.logger, bindError(err), "")
			return
		}
		ids = req.IDs
	}

	result, err := decide(c.Request.Context(), ids...)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	body := gin.H{"success": true, "data": result}
	if len(result.EmailFailures) > 0 {
		body["warning"] = fmt.Sprintf("%d vendor(s) updated but could not be emailed", len(result.EmailFailures))
	}
	c.JSON(http.StatusOK, body)
}
