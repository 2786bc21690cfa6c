package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "rental-backend/internal/api/grpc"
	httpapi "rental-backend/internal/api/http"
	"rental-backend/internal/config"
	"rental-backend/internal/events"
	"rental-backend/internal/logger"
	"rental-backend/internal/repository/postgres"
	"rental-backend/internal/repository/rediscart"
	"rental-backend/internal/security"
	"rental-backend/internal/service"
	"rental-backend/internal/storage"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Environment overrides may come from a local .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Error("Failed to apply schema", "error", err)
		log.Fatalf("Failed to apply schema: %v", err)
	}

	// Initialize Cart Store
	redisClient, err := rediscart.Connect(ctx, cfg.Redis.URL)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Event Publisher
	publisher, err := events.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer publisher.Close()

	// Initialize Photo Storage
	photos, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize photo storage", "error", err)
		log.Fatalf("Failed to initialize photo storage: %v", err)
	}

	// Initialize Repositories
	store := postgres.NewStore(db)
	repos := store.Repos()
	carts := rediscart.NewCartRepository(redisClient, cfg.CartTTL())

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	if len(cfg.Staff) == 0 {
		logger.Warn("No staff accounts configured, back office is unreachable")
	}

	// Initialize Services
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
		cfg.SMTP.StaffNotify,
	)
	ledgerSvc := service.NewLedgerService(store)
	catalogSvc := service.NewCatalogService(repos.Items, photos)
	cartSvc := service.NewCartService(carts, repos.Items)
	checkoutSvc := service.NewCheckoutService(ledgerSvc, carts, repos.Items, repos.Rentals, repos.Lines, emailSvc, publisher)
	adminSvc := service.NewAdminService(ledgerSvc, repos, photos, publisher)
	reportSvc := service.NewReportService(store.ReportRepository, repos)
	authSvc := service.NewAuthService(repos.Customers, tokenManager, cfg.StaffAccounts())

	// Initialize HTTP handlers
	router := httpapi.NewRouter(httpapi.Handlers{
		Catalog:  httpapi.NewCatalogHandler(catalogSvc),
		Cart:     httpapi.NewCartHandler(cartSvc, cfg.CartTTL()),
		Checkout: httpapi.NewCheckoutHandler(checkoutSvc),
		Auth:     httpapi.NewAuthHandler(authSvc),
		Admin:    httpapi.NewAdminHandler(adminSvc),
		Reports:  httpapi.NewReportHandler(reportSvc),
		Photos:   httpapi.NewPhotoHandler(adminSvc, photos, cfg.MaxUploadBytes()),
	}, tokenManager, cfg.Server.AllowedOrigins)

	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Set up gRPC health server
	var healthServer *grpcapi.HealthServer
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		healthServer = grpcapi.NewHealthServer(map[string]grpcapi.CheckFunc{
			"postgres": store.Ping,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		go healthServer.Watch(ctx, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := healthServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if healthServer != nil {
		healthServer.Stop()
	}
	logger.Info("Server stopped. Goodbye!")
}
