// internal/interfaces/http/handlers/product.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/wishlist"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/sirupsen/logrus"
)

const relatedProducts = 4

// ProductHandler handles the catalogue endpoints
type ProductHandler struct {
	products  *product.Service
	reviews   *product.ReviewService
	wishlists *wishlist.Service
	logger    *logrus.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service, reviews *product.ReviewService, wishlists *wishlist.Service, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		products:  products,
		reviews:   reviews,
		wishlists: wishlists,
		logger:    logger,
	}
}

// List handles GET /products/ and GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	response, err := h.products.List(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": response})
}

// Detail handles GET /product/:id/ where the id may also be a slug
func (h *ProductHandler) Detail(c *gin.Context) {
	ctx := c.Request.Context()
	ref := c.Param("id")

	var (
		p   *product.Product
		err error
	)
	if id, convErr := strconv.ParseUint(ref, 10, 32); convErr == nil {
		p, err = h.products.Get(ctx, uint(id))
	} else {
		p, err = h.products.GetBySlug(ctx, ref)
	}
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	related, err := h.products.Related(ctx, p, relatedProducts)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	summary, err := h.reviews.Summary(ctx, p.ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	body := gin.H{
		"success": true,
		"data":    p,
		"related": related,
		"reviews": summary,
	}
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		wished, err := h.wishlists.Contains(ctx, userID, p.ID)
		if err != nil {
			respondError(c, h.logger, err, "")
			return
		}
		body["in_wishlist"] = wished
	}
	c.JSON(http.StatusOK, body)
}

// Categories handles GET /categories/
func (h *ProductHandler) Categories(c *gin.Context) {
	categories, err := h.products.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// CategoryRequest is the payload of a new category
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCategory handles POST /api/v1/admin/categories
func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	category, err := h.products.CreateCategory(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": category})
}

// Create handles POST /api/v1/admin/products. Admin products have no vendor.
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}
	req.VendorID = nil

	p, err := h.products.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
}

// Update handles PUT /api/v1/admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	var req product.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
}

// Delete handles DELETE /api/v1/admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted"})
}
