// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/hackerz/marketplace/internal/domain/cart"
	"github.com/hackerz/marketplace/internal/domain/coupon"
	"github.com/hackerz/marketplace/internal/domain/inventory"
	"github.com/hackerz/marketplace/internal/domain/order"
	"github.com/hackerz/marketplace/internal/domain/product"
	"github.com/hackerz/marketplace/internal/domain/user"
	"github.com/hackerz/marketplace/internal/domain/vendor"
	"github.com/hackerz/marketplace/internal/domain/wishlist"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Models lists every persisted entity in dependency order
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Profile{},
		&user.EmailConfirmationToken{},
		&user.NewsletterSubscriber{},
		&vendor.Vendor{},

		&product.Category{},
		&product.Product{},
		&product.Review{},
		&inventory.Movement{},

		&cart.Cart{},
		&cart.CartItem{},
		&coupon.Coupon{},

		&order.Order{},
		&order.OrderItem{},
		&order.OrderStatusHistory{},

		&wishlist.WishlistItem{},
	}
}

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations creates the tables from the gorm models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("running database auto-migrations")

	for _, model := range Models() {
		m.logger.Debugf("migrating model %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// RunSQLMigrations applies the versioned SQL files on top of the tables
// created by RunAutoMigrations. They hold the CHECK constraints and the
// composite indexes gorm tags cannot express.
func (m *Migration) RunSQLMigrations(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	goose.SetBaseFS(migrationFS)
	goose.SetLogger(m.logger)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("failed to apply sql migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err == nil {
		m.logger.WithField("version", version).Info("sql migrations applied")
	}
	return nil
}

// SeedInitialData inserts the demo catalogue and the admin account
func (m *Migration) SeedInitialData(adminPassword string) error {
	m.logger.Info("seeding initial data")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if err := m.seedAdminUser(adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedProducts(); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	m.logger.Info("initial data seeded")
	return nil
}

var seedCategories = []product.Category{
	{Name: "Laptops", Slug: "laptops", Description: "Portable computers for work and play"},
	{Name: "Peripherals", Slug: "peripherals", Description: "Keyboards, mice and headsets"},
	{Name: "Components", Slug: "components", Description: "Parts for building and upgrading a PC"},
	{Name: "Books", Slug: "books", Description: "Programming and security books"},
}

func (m *Migration) seedCategories() error {
	for _, category := range seedCategories {
		category := category
		var existing product.Category
		err := m.db.Where("slug = ?", category.Slug).First(&existing).Error
		if err == nil {
			m.logger.Debugf("category %s already exists", category.Slug)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := m.db.Create(&category).Error; err != nil {
			return err
		}
		m.logger.WithField("slug", category.Slug).Info("created category")
	}
	return nil
}

func (m *Migration) seedAdminUser(password string) error {
	var existing user.User
	err := m.db.Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		m.logger.WithField("user_id", existing.ID).Debug("admin user already exists")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		admin := user.User{
			Username:  "admin",
			Email:     "admin@hackerz.shop",
			Password:  string(hashed),
			FirstName: "Admin",
			LastName:  "Hackerz",
			IsActive:  true,
			IsAdmin:   true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		if err := tx.Create(&user.Profile{UserID: admin.ID, Country: user.DefaultCountry}).Error; err != nil {
			return err
		}
		m.logger.WithField("user_id", admin.ID).Info("created admin user")
		return nil
	})
}

type seedProduct struct {
	category string
	product  product.Product
}

var seedProducts = []seedProduct{
	{"laptops", product.Product{Name: "ThinkPad X1 Carbon", Slug: "thinkpad-x1-carbon", Description: "14 inch ultrabook", RegularPrice: 189900, Price: 169900, Stock: 8, Available: true, Featured: true}},
	{"peripherals", product.Product{Name: "Mechanical Keyboard", Slug: "mechanical-keyboard", Description: "Hot swappable switches", RegularPrice: 12900, Price: 12900, Stock: 40, Available: true}},
	{"peripherals", product.Product{Name: "Wireless Mouse", Slug: "wireless-mouse", Description: "Ergonomic, 3 devices", RegularPrice: 5900, Price: 4900, Stock: 3, Available: true}},
	{"components", product.Product{Name: "NVMe SSD 2TB", Slug: "nvme-ssd-2tb", Description: "PCIe 4.0", RegularPrice: 15900, Price: 13900, Stock: 25, Available: true, Featured: true}},
	{"books", product.Product{Name: "The Go Programming Language", Slug: "the-go-programming-language", Description: "Donovan and Kernighan", RegularPrice: 4500, Price: 4500, Stock: 12, Available: true}},
}

func (m *Migration) seedProducts() error {
	var count int64
	if err := m.db.Model(&product.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		m.logger.Debug("products already exist")
		return nil
	}

	for _, seed := range seedProducts {
		var category product.Category
		if err := m.db.Where("slug = ?", seed.category).First(&category).Error; err != nil {
			return err
		}
		p := seed.product
		p.CategoryID = category.ID
		if err := m.db.Create(&p).Error; err != nil {
			return err
		}
		m.logger.WithField("slug", p.Slug).Info("created product")
	}
	return nil
}

func (m *Migration) seedCoupons() error {
	var existing coupon.Coupon
	err := m.db.Where("code = ?", "WELCOME10").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now()
	return m.db.Create(&coupon.Coupon{
		Code:          "WELCOME10",
		DiscountType:  coupon.DiscountPercentage,
		DiscountValue: decimal.NewFromInt(10),
		MinPurchase:   2000,
		ValidFrom:     now,
		ValidTo:       now.AddDate(1, 0, 0),
		Active:        true,
	}).Error
}
