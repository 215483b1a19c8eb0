// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/premiumdrop/storefront/internal/config"
	"github.com/premiumdrop/storefront/internal/domain/analytics"
	"github.com/premiumdrop/storefront/internal/domain/cart"
	"github.com/premiumdrop/storefront/internal/domain/checkout"
	"github.com/premiumdrop/storefront/internal/domain/comment"
	"github.com/premiumdrop/storefront/internal/domain/location"
	"github.com/premiumdrop/storefront/internal/domain/order"
	"github.com/premiumdrop/storefront/internal/domain/product"
	"github.com/premiumdrop/storefront/internal/infrastructure/database/postgres"
	"github.com/premiumdrop/storefront/internal/infrastructure/database/redis"
	httpserver "github.com/premiumdrop/storefront/internal/interfaces/http"
	"github.com/premiumdrop/storefront/internal/interfaces/http/handlers"
	"github.com/premiumdrop/storefront/internal/interfaces/http/routes"
	"github.com/premiumdrop/storefront/internal/pkg/auth"
	"github.com/premiumdrop/storefront/internal/pkg/logger"
	"github.com/premiumdrop/storefront/internal/pkg/pdf"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	checks := map[string]httpserver.HealthChecker{"redis": redisClient}

	// The order log is optional; checkout works without it
	var (
		orderService     *order.Service
		orderRecorder    checkout.OrderRecorder
		analyticsService *analytics.Service
	)
	if cfg.Database.Enabled {
		db, err := postgres.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		migration := postgres.NewMigration(db.GetDB(), log)
		if err := migration.RunAutoMigrations(); err != nil {
			log.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			log.WithError(err).Warn("Index creation failed")
		}

		orderService = order.NewService(db.GetDB())
		orderRecorder = orderService
		analyticsService = analytics.NewService(db.GetDB(), cfg.Location())
		checks["postgres"] = db
	} else {
		log.Warn("Order log disabled, checkouts will not be recorded")
	}

	// Shipping table and holiday calendar
	table := location.DefaultTable()
	if cfg.Store.RegionsFile != "" {
		if table, err = location.LoadTableFile(cfg.Store.RegionsFile); err != nil {
			log.Fatalf("Failed to load regions file: %v", err)
		}
	}

	var calendar location.HolidayCalendar = location.DefaultCalendar()
	if cfg.Store.HolidaysFile != "" {
		if calendar, err = location.LoadCalendarFile(cfg.Store.HolidaysFile); err != nil {
			log.Fatalf("Failed to load holidays file: %v", err)
		}
	}

	estimator := location.NewEstimator(calendar, cfg.Location(), log)
	lookupClient := &http.Client{Timeout: cfg.External.LookupTimeout}
	detector := location.NewDetector(table, lookupClient, cfg.External.IPLookupURL, cfg.External.ReverseGeocodeURL, cfg.External.LookupTimeout, log)

	// Catalog. A failed initial load leaves the store empty until an admin reload.
	catalogClient := &http.Client{Timeout: 30 * time.Second}
	products := product.NewService(product.NewSource(cfg.Store.CatalogSource, catalogClient), cfg.Store.ProductsPerPage, log)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := products.Load(loadCtx); err != nil {
		log.WithError(err).Error("Initial catalog load failed, serving an empty catalog")
	}
	cancelLoad()

	carts := cart.NewService(cart.NewRedisStorage(redisClient.GetClient(), cfg.Store.CartTTL), products, table, cfg.Store.FreeShippingThreshold, log)
	carts.OnChange(func(_ context.Context, change cart.Change) {
		log.WithFields(logrus.Fields{
			"session_id": change.SessionID,
			"action":     change.Action,
			"key":        change.Key,
			"quantity":   change.Cart.TotalQuantity(),
		}).Debug("Cart updated")
	})

	checkoutService := checkout.NewService(carts, products, table, estimator, orderRecorder, cfg.Store.WhatsAppPhone, log)
	comments := comment.NewService(redisClient.GetClient(), log)
	jwtManager := auth.NewJWTManager(cfg)

	h := &routes.Handlers{
		Product:  handlers.NewProductHandler(products),
		Comment:  handlers.NewCommentHandler(comments, products, log),
		Location: handlers.NewLocationHandler(table, estimator, detector, location.NewTracker(cfg.Store.CartTTL), cfg, log),
		Cart:     handlers.NewCartHandler(carts, products, cfg, log),
		Checkout: handlers.NewCheckoutHandler(checkoutService, cfg, log),
		Admin:    handlers.NewAdminHandler(products, orderService, analyticsService, pdf.NewService(cfg), jwtManager, cfg, log),
	}

	server := httpserver.NewServer(cfg, httpserver.Dependencies{
		Handlers:    h,
		JWTManager:  jwtManager,
		RedisClient: redisClient.GetClient(),
		Checks:      checks,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
