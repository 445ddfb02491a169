package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"terra-offset/credit-exchange-backend/internal/auth"
	"terra-offset/credit-exchange-backend/internal/config"
	"terra-offset/credit-exchange-backend/internal/holdings"
	"terra-offset/credit-exchange-backend/internal/inventory"
	"terra-offset/credit-exchange-backend/internal/ledger"
	"terra-offset/credit-exchange-backend/internal/notifications"
	"terra-offset/credit-exchange-backend/internal/reconcile"
	"terra-offset/credit-exchange-backend/internal/registry"
	"terra-offset/credit-exchange-backend/pkg/certificates"
)

func main() {
	// Load .env for local development; ignored when absent
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&registry.Project{},
		&inventory.Listing{},
		&holdings.CartItem{},
		&holdings.PortfolioItem{},
		&holdings.ClaimRecord{},
		&ledger.Entry{},
		&notifications.Notification{},
	); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Wire services
	notificationService := notifications.NewService(db, logger)
	notificationHandler := notifications.NewHandler(notificationService, logger)

	ledgerService := ledger.NewService(ledger.NewRepository(db), logger)
	ledgerHandler := ledger.NewHandler(ledgerService, logger)

	inventoryService := inventory.NewService(inventory.NewRepository(db), logger)
	inventoryHandler := inventory.NewHandler(inventoryService, logger)

	registryService := registry.NewService(
		registry.NewRepository(db),
		inventoryService,
		ledgerService,
		notificationService,
		logger,
	)
	registryHandler := registry.NewHandler(registryService, logger)

	certGenerator := certificates.NewGenerator(cfg.Certificates.OutputDir)
	holdingsService := holdings.NewService(
		holdings.NewRepository(db),
		inventoryService,
		ledgerService,
		certGenerator,
		notificationService,
		logger,
	)
	holdingsHandler := holdings.NewHandler(holdingsService, logger)

	// Reconciliation job
	reconciler := reconcile.NewReconciler(holdingsService, ledgerService, logger)
	scheduler := reconcile.NewScheduler(reconciler, logger)
	if err := scheduler.Start(cfg.Reconcile.Schedule); err != nil {
		logger.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	// Setup router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// The ledger is a public audit trail
	api := router.Group("/api/v1")
	ledgerHandler.RegisterRoutes(api)

	// Everything else requires a valid token
	authed := api.Group("")
	authed.Use(auth.Middleware(cfg.Security.JWTSecret))

	admin := authed.Group("")
	admin.Use(auth.RequireRole(auth.RoleAdmin))

	registryHandler.RegisterRoutes(authed, admin)
	inventoryHandler.RegisterRoutes(authed, admin)
	holdingsHandler.RegisterRoutes(authed)
	notificationHandler.RegisterRoutes(authed)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", srv.Addr))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func newLogger(level string) *zap.Logger {
	if level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
