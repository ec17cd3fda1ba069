// Package app wires the domain services shared by the API and the worker.
package app

import (
	"fmt"

	"github.com/hackerz/marketplace/internal/config"
	"github.com/hackerz/marketplace/internal/domain/analytics"
	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/checkout"
	"github.com/hackerz/marketplace/internal/domain/coupon"
	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/invoice"
	"github.com/hackerz/marketplace/internal/domain/notification"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/domain/wishlist"
	"github.com/hackerz/marketplace/internal/infrastructure/messaging"
	"github.com/hackerz/marketplace/internal/infrastructure/storage"
	"github.com/hackerz/marketplace/internal/interfaces/http/handlers"
	"github.com/hackerz/marketplace/internal/interfaces/http/routes"
	"github.com/hackerz/marketplace/internal/pkg/email"
	"github.com/hackerz/marketplace/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Services holds every domain service of the marketplace
type Services struct {
	Pricing order.Pricing

	Users          *user.Service
	UserAdmin      *user.AdminService
	Products       *product.Service
	Reviews        *product.ReviewService
	Wishlists      *wishlist.Service
	Carts          *cart.Service
	Coupons        *coupon.Service
	Checkout       *checkout.Service
	Orders         *order.Service
	Inventory      *inventory.Service
	Analytics      *analytics.Service
	Vendors        *vendor.Service
	VendorProducts *vendor.ProductService
	Invoices       *invoice.Generator
	Notifications  *notification.Service
}

// Option customizes NewServices
type Option func(*options)

type options struct {
	renderer invoice.Renderer
	mailer   *email.EmailService
}

// WithRenderer replaces the wkhtmltopdf renderer
func WithRenderer(r invoice.Renderer) Option {
	return func(o *options) { o.renderer = r }
}

// NewServices builds the services over db. jobs receives the post-commit
// notifications.
func NewServices(cfg *config.Config, db *gorm.DB, jobs messaging.Publisher, logger *logrus.Logger, opts ...Option) (*Services, error) {
	o := options{
		renderer: pdf.NewService(pdf.DefaultOptions),
		mailer:   email.NewEmailService(cfg, logger),
	}
	for _, opt := range opts {
		opt(&o)
	}

	documents, err := storage.NewDocumentStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create document store: %w", err)
	}

	s := &Services{Pricing: order.NewPricing(cfg.Checkout)}

	s.Users = user.NewService(db, cfg, jobs, o.mailer, logger)
	s.UserAdmin = user.NewAdminService(db, logger)
	s.Products = product.NewService(db, logger)
	s.Reviews = product.NewReviewService(db)
	s.Carts = cart.NewService(db, logger)
	s.Wishlists = wishlist.NewService(db, s.Carts, logger)
	s.Coupons = coupon.NewService(db, logger)
	s.Checkout = checkout.NewService(db, cfg, s.Carts, s.Coupons, jobs, logger)
	s.Orders = order.NewService(db, logger)
	s.Inventory = inventory.NewService(db, logger)
	s.Analytics = analytics.NewService(db)
	s.Vendors = vendor.NewService(db, documents, o.mailer, logger)
	s.VendorProducts = vendor.NewProductService(s.Vendors, s.Products, s.Reviews, logger)

	s.Invoices = invoice.NewGenerator(
		o.renderer,
		storage.NewLocal(cfg.Storage.MediaRoot),
		s.Orders,
		s.Pricing,
		invoice.CompanyInfo{
			Name:    cfg.App.Name,
			Email:   cfg.Email.FromEmail,
			Website: cfg.App.BaseURL,
		},
		logger,
	)
	s.Notifications = notification.NewService(s.Orders, s.Invoices, o.mailer, s.Pricing, cfg.Checkout.ConfirmationTokenTTL, logger)

	return s, nil
}

// Handlers builds the HTTP handlers over the services
func (s *Services) Handlers(cfg *config.Config, logger *logrus.Logger) *routes.Handlers {
	return &routes.Handlers{
		Auth:      handlers.NewAuthHandler(s.Users, cfg, logger),
		Profile:   handlers.NewUserProfileHandler(s.Users, s.Vendors, s.Orders, logger),
		Product:   handlers.NewProductHandler(s.Products, s.Reviews, s.Wishlists, logger),
		Review:    handlers.NewReviewHandler(s.Reviews, logger),
		Wishlist:  handlers.NewWishlistHandler(s.Wishlists, s.Vendors, logger),
		Cart:      handlers.NewCartHandler(s.Carts, s.Vendors, logger),
		Coupon:    handlers.NewCouponHandler(s.Coupons, s.Carts, logger),
		Checkout:  handlers.NewCheckoutHandler(s.Checkout, s.Users, logger),
		Order:     handlers.NewOrderHandler(s.Orders, s.Pricing, logger),
		Invoice:   handlers.NewInvoiceHandler(s.Orders, s.Invoices, logger),
		Vendor:    handlers.NewVendorHandler(s.Vendors, s.VendorProducts, logger),
		Inventory: handlers.NewInventoryHandler(s.Inventory, s.Vendors, logger),
		Analytics: handlers.NewAnalyticsHandler(s.Analytics, logger),
		UserAdmin: handlers.NewUserAdminHandler(s.UserAdmin, logger),
	}
}
