// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/hackerz/marketplace/internal/interfaces/http/handlers"
	"github.com/hackerz/marketplace/internal/interfaces/http/middleware"
)

// Handlers groups every HTTP handler of the application
type Handlers struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.UserProfileHandler
	Product   *handlers.ProductHandler
	Review    *handlers.ReviewHandler
	Wishlist  *handlers.WishlistHandler
	Cart      *handlers.CartHandler
	Coupon    *handlers.CouponHandler
	Checkout  *handlers.CheckoutHandler
	Order     *handlers.OrderHandler
	Invoice   *handlers.InvoiceHandler
	Vendor    *handlers.VendorHandler
	Inventory *handlers.InventoryHandler
	Analytics *handlers.AnalyticsHandler
	UserAdmin *handlers.UserAdminHandler
	Docs      *handlers.DocsHandler
}

// Setup registers the storefront routes and the /api/v1 mirror
func Setup(r *gin.Engine, h *Handlers) {
	SetupWebRoutes(r, h)
	SetupAPIRoutes(r.Group("/api/v1", middleware.JSONOnly()), h)
}

// SetupWebRoutes sets up the storefront routes. Browsers are redirected on
// authentication and authorization failures.
func SetupWebRoutes(r *gin.Engine, h *Handlers) {
	r.POST("/register/", h.Auth.Register)
	r.GET("/activate/:token/", h.Auth.ConfirmEmail)
	r.POST("/resend-confirmation/", h.Auth.ResendConfirmation)
	r.POST("/login/", h.Auth.Login)
	r.POST("/logout/", h.Auth.Logout)
	r.POST("/newsletter/subscribe/", h.Auth.Subscribe)
	r.POST("/newsletter/unsubscribe/", h.Auth.Unsubscribe)

	r.GET("/products/", h.Product.List)
	r.GET("/categories/", h.Product.Categories)
	r.GET("/product/:id/", h.Product.Detail)
	r.GET("/product/:id/reviews/", h.Review.List)

	// the cart belongs to the session, so reading it needs no login
	r.GET("/cart/", h.Cart.Detail)
	r.GET("/cart/count/", h.Cart.Count)

	authed := r.Group("", middleware.RequireAuth())
	{
		authed.POST("/cart/add/:product_id/", h.Cart.Add)
		authed.POST("/cart/update/:product_id/", h.Cart.Update)
		authed.POST("/cart/remove/:product_id/", h.Cart.Remove)
		authed.POST("/buy-now/:product_id/", h.Cart.BuyNow)

		authed.POST("/coupon/apply/", h.Coupon.Apply)
		authed.POST("/coupon/remove/", h.Coupon.Remove)
		authed.POST("/coupon/validate/", h.Coupon.Validate)

		authed.GET("/checkout/", h.Checkout.Summary)
		authed.POST("/process_payment/", h.Checkout.ProcessPayment)
		authed.GET("/payment/success/", h.Checkout.PaymentSuccess)

		authed.GET("/orders/", h.Order.List)
		authed.GET("/order/:id/", h.Order.Get)
		authed.POST("/order/:id/cancel/", h.Order.Cancel)
		authed.GET("/order/:id/invoice/", h.Invoice.Download)

		authed.POST("/product/:id/review/", h.Review.Submit)

		authed.GET("/wishlist/", h.Wishlist.List)
		authed.POST("/wishlist/toggle/:product_id/", h.Wishlist.Toggle)
		authed.POST("/wishlist/remove/:product_id/", h.Wishlist.Remove)
		authed.POST("/wishlist/clear/", h.Wishlist.Clear)
		authed.POST("/wishlist/move-to-cart/:product_id/", h.Wishlist.MoveToCart)

		authed.GET("/profile/", h.Profile.GetProfile)
		authed.POST("/profile/account/", h.Profile.UpdateAccount)
		authed.POST("/profile/shipping/", h.Profile.UpdateShipping)
		authed.POST("/profile/password/", h.Profile.ChangePassword)
		authed.POST("/profile/2fa/", h.Profile.Toggle2FA)

		authed.POST("/become-vendor/", h.Vendor.BecomeVendor)
		authed.GET("/vendor/products/", h.Vendor.Products)
		authed.POST("/vendor/product/add/", h.Vendor.AddProduct)
		authed.GET("/vendor/product/:id/", h.Vendor.ProductDetail)
		authed.POST("/vendor/product/:id/edit/", h.Vendor.EditProduct)
		authed.POST("/vendor/product/:id/delete/", h.Vendor.DeleteProduct)
		authed.GET("/vendor/low-stock/", h.Inventory.VendorLowStock)
	}
}

// SetupAPIRoutes sets up the JSON API. Every failure is answered with JSON.
func SetupAPIRoutes(api *gin.RouterGroup, h *Handlers) {
	api.GET("/docs", h.Docs.List)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.Detail)
		products.GET("/:id/reviews", h.Review.List)
		products.POST("/:id/reviews", middleware.RequireAuth(), h.Review.Submit)
	}
	api.GET("/categories", h.Product.Categories)

	orders := api.Group("/orders", middleware.RequireAuth())
	{
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.GET("/:id/invoice", h.Invoice.Download)
	}

	SetupAdminRoutes(api.Group("/admin", middleware.RequireAuth(), middleware.AdminOnly()), h)
}

// SetupAdminRoutes sets up the back office endpoints
func SetupAdminRoutes(admin *gin.RouterGroup, h *Handlers) {
	vendors := admin.Group("/vendors")
	{
		vendors.GET("", h.Vendor.AdminList)
		vendors.GET("/:id", h.Vendor.AdminGet)
		vendors.POST("/approve", h.Vendor.Approve)
		vendors.POST("/reject", h.Vendor.Reject)
		vendors.POST("/:id/approve", h.Vendor.Approve)
		vendors.POST("/:id/reject", h.Vendor.Reject)
	}

	orders := admin.Group("/orders")
	{
		orders.GET("", h.Order.AdminList)
		orders.GET("/:id", h.Order.AdminGet)
		orders.PUT("/:id/status", h.Order.AdminUpdateStatus)
	}

	coupons := admin.Group("/coupons")
	{
		coupons.GET("", h.Coupon.List)
		coupons.POST("", h.Coupon.Create)
		coupons.DELETE("/:id", h.Coupon.Deactivate)
	}

	products := admin.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
	admin.POST("/categories", h.Product.CreateCategory)

	inventory := admin.Group("/inventory")
	{
		inventory.GET("/low-stock", h.Inventory.LowStock)
		inventory.GET("/:id/movements", h.Inventory.History)
		inventory.POST("/:id/adjust", h.Inventory.Adjust)
	}

	analytics := admin.Group("/analytics")
	{
		analytics.GET("/dashboard", h.Analytics.Dashboard)
		analytics.GET("/sales", h.Analytics.Sales)
	}

	users := admin.Group("/users")
	{
		users.GET("", h.UserAdmin.GetUsers)
		users.PUT("/:id/status", h.UserAdmin.UpdateUserStatus)
		users.PUT("/:id/admin", h.UserAdmin.ToggleUserAdmin)
	}
}
