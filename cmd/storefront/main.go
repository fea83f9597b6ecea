package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/candleworks/storefront/config"
	"github.com/candleworks/storefront/internal/auth"
	"github.com/candleworks/storefront/internal/gateway"
	handler "github.com/candleworks/storefront/internal/handler/http"
	"github.com/candleworks/storefront/internal/logger"
	"github.com/candleworks/storefront/internal/metrics"
	"github.com/candleworks/storefront/internal/middleware"
	"github.com/candleworks/storefront/internal/repository"
	"github.com/candleworks/storefront/internal/repository/postgres"
	"github.com/candleworks/storefront/internal/service"
	"github.com/candleworks/storefront/internal/worker"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const authTokenKey = "9f2d4f6a1c0b8e3d5a7c9e1f3b5d7a92"

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	tokenKey, err := hex.DecodeString(authTokenKey)
	if err != nil {
		logger.Log.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	gatewayClient := gateway.NewClient(cfg.GatewayAddr, cfg.GatewayKeyID, cfg.GatewayKeySecret)

	// dependency injection
	// catalog
	productRepo := repository.NewProductRepository(db)
	catalogService := service.NewCatalogService(productRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	// orders
	orderRepo := repository.NewOrderRepository(db)
	orderService := service.NewOrderService(orderRepo, productRepo, gatewayClient, cfg.GatewayKeySecret, cfg.Currency)
	orderHandler := handler.NewOrderHandler(orderService, cfg.GatewayKeyID)
	webhookHandler := handler.NewWebhookHandler(orderService, cfg.WebhookSecret)

	// customers
	customerRepo := repository.NewCustomerRepository(db)
	customerService := service.NewCustomerService(customerRepo, token)
	adminService := service.NewAdminService(cfg.AdminEmail, cfg.AdminPassword, token)
	customerHandler := handler.NewCustomerHandler(customerService, adminService)

	// reviews
	reviewRepo := repository.NewReviewRepository(db)
	reviewService := service.NewReviewService(reviewRepo, productRepo)
	reviewHandler := handler.NewReviewHandler(reviewService)

	// analytics
	analyticsRepo := repository.NewAnalyticsRepository(db)
	analyticsService := service.NewAnalyticsService(analyticsRepo)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	router := chi.NewRouter()

	router.Use(middleware.Logging(logger.Log))
	router.Use(metrics.Middleware)

	router.Get("/metrics", metrics.Handler().ServeHTTP)

	router.Get("/api/products", catalogHandler.ListProducts())
	router.Get("/api/products/{id}", catalogHandler.GetProduct())
	router.Get("/api/products/{id}/reviews", reviewHandler.ListReviews())

	router.Post("/api/customer/register", customerHandler.Register())
	router.Post("/api/customer/login", customerHandler.Login())
	router.Post("/api/admin/login", customerHandler.AdminLogin())

	router.Group(func(group chi.Router) {
		group.Use(middleware.RateLimit(20, 40))
		group.Post("/api/orders", orderHandler.CreateOrder())
		group.Post("/api/orders/verify", orderHandler.VerifyPayment())
		group.Post("/api/events", analyticsHandler.TrackEvent())
		group.Post("/api/newsletter", analyticsHandler.Subscribe())
	})

	router.Get("/api/orders/{id}", orderHandler.GetOrder())
	router.Post("/api/webhook/gateway", webhookHandler.GatewayWebhook())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token))
		group.Get("/api/customer/me", customerHandler.Profile())
		group.Get("/api/customer/orders", orderHandler.ListCustomerOrders())
		group.Post("/api/products/{id}/reviews", reviewHandler.CreateReview())
	})

	// admin routes
	router.Group(func(group chi.Router) {
		group.Use(middleware.Auth(token), middleware.AdminOnly)
		group.Post("/api/admin/products", catalogHandler.CreateProduct())
		group.Put("/api/admin/products/{id}", catalogHandler.UpdateProduct())
		group.Delete("/api/admin/products/{id}", catalogHandler.DeleteProduct())
		group.Get("/api/admin/orders", orderHandler.ListOrders())
		group.Delete("/api/admin/reviews/{id}", reviewHandler.DeleteReview())
	})

	server := &http.Server{Addr: cfg.ServerAddr, Handler: router}

	reconciler := worker.NewOrderReconciler(orderService, cfg.ReconcileInterval, cfg.ReconcileCutoff)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("Running server", zap.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		reconciler.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		logger.Log.Fatal("Error running server", zap.Error(err))
	}
}
