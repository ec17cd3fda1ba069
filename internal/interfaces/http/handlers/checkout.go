// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/checkout"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles the checkout flow
type CheckoutHandler struct {
	checkout *checkout.Service
	users    *user.Service
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, users *user.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		users:    users,
		logger:   logger,
	}
}

// Summary handles GET /checkout/. The shipping form is prefilled from the
// profile of the buyer.
func (h *CheckoutHandler) Summary(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	summary, err := h.checkout.Summary(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	buyer, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"summary": summary,
		"display": gin.H{
			"subtotal": money.Format(summary.Totals.Subtotal),
			"discount": money.Format(summary.Totals.Discount),
			"tax":      money.Format(summary.Totals.Tax),
			"shipping": money.Format(summary.Totals.Shipping),
			"total":    money.Format(summary.Totals.Total),
		},
		"shipping": checkout.ShippingDetails{
			FirstName:  buyer.FirstName,
			LastName:   buyer.LastName,
			Email:      buyer.Email,
			Address:    buyer.Profile.Address,
			PostalCode: buyer.Profile.PostalCode,
			City:       buyer.Profile.City,
		},
	})
}

// ProcessPayment handles POST /process_payment/. Payment is simulated:
// the order is created paid.
func (h *CheckoutHandler) ProcessPayment(c *gin.Context) {
	var actor *checkout.Actor
	if userID, ok := middleware.GetUserIDFromContext(c); ok {
		email, _ := middleware.GetUserEmailFromContext(c)
		actor = &checkout.Actor{UserID: userID, Email: email}
	}

	var details checkout.ShippingDetails
	if err := c.ShouldBind(&details); err != nil {
		respondError(c, h.logger, bindError(err), "")
		return
	}

	o, err := h.checkout.PlaceOrder(c.Request.Context(), actor, middleware.GetSession(c), &details)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if middleware.IsAJAX(c) {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"order_id": o.ID,
			"redirect": "/payment/success/",
		})
		return
	}
	c.Redirect(http.StatusFound, "/payment/success/")
}

// PaymentSuccess handles GET /payment/success/. The completion marker is
// shown once; later visits go back to the home page.
func (h *CheckoutHandler) PaymentSuccess(c *gin.Context) {
	completion, err := h.checkout.ConsumeCompletion(c.Request.Context(), middleware.GetSession(c))
	if errors.Is(err, checkout.ErrNoCompletion) && !middleware.IsAJAX(c) {
		c.Redirect(http.StatusFound, "/")
		return
	}
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": completion.OrderID,
		"total":    money.Format(completion.Total),
		"email":    completion.Email,
	})
}
