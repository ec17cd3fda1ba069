// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/domain/analytics"
	"github.com/hackerz/marketplace/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// AnalyticsHandler serves the admin dashboard
type AnalyticsHandler struct {
	analytics *analytics.Service
	logger    *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService *analytics.Service, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analyticsService,
		logger:    logger,
	}
}

// Dashboard handles GET /api/v1/admin/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	stats, err := h.analytics.GetDashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
		"formatted": gin.H{
			"total_revenue":      money.Format(stats.TotalRevenue),
			"revenue_today":      money.Format(stats.RevenueToday),
			"revenue_this_month": money.Format(stats.RevenueThisMonth),
			"avg_order_value":    money.Format(stats.AvgOrderValue),
		},
	})
}

// Sales handles GET /api/v1/admin/analytics/sales?days=30
func (h *AnalyticsHandler) Sales(c *gin.Context) {
	days := queryInt(c, "days", 30)
	if days > 365 {
		days = 365
	}

	sales, err := h.analytics.GetSalesAnalytics(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sales, "days": days})
}
