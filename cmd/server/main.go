package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"google.golang.org/grpc"

	grpcapi "toolshed-backend/internal/api/grpc"
	httpapi "toolshed-backend/internal/api/http"
	"toolshed-backend/internal/config"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository/postgres"
	"toolshed-backend/internal/security"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if cfg.Log.File != "" {
		closer := logger.InitializeWithFile(cfg.Log.Level, cfg.Log.Format, logger.FileOutput{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
		defer closer.Close()
	} else {
		logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	}
	logger.Info("Starting Toolshed backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_port", cfg.Server.GRPCPort, "timezone", cfg.Server.Timezone)
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)
	repos := store.Repositories()
	clock := utils.NewSystemClock(loc)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL())

	// Initialize Services
	rentalSvc := service.NewRentalService(repos, store, clock)
	userSvc := service.NewUserService(repos, store, clock)
	services := httpapi.Services{
		Auth:        service.NewAuthService(store.UserRepository, tokenManager),
		Category:    service.NewCategoryService(store.CategoryRepository),
		Tool:        service.NewToolService(repos, store, clock),
		User:        userSvc,
		Rental:      rentalSvc,
		Transaction: service.NewTransactionService(repos, store, clock),
		Dashboard:   service.NewDashboardService(repos, rentalSvc, userSvc, clock),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// gRPC health endpoint
	var grpcServer *grpc.Server
	if cfg.Server.GRPCPort != 0 {
		lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
			log.Fatalf("Failed to listen: %v", err)
		}
		grpcServer = grpc.NewServer()
		health := grpcapi.NewHealthServer(store, 15*time.Second)
		health.Register(grpcServer)
		go health.Run(ctx)
		go func() {
			logger.Info("gRPC health server listening", "address", cfg.GetGRPCAddress())
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server error", "error", err)
			}
		}()
	}

	// HTTP API
	api := httpapi.NewServer(services, tokenManager, cfg.RateLimit, store)
	httpServer := &http.Server{
		Addr:         cfg.GetHTTPAddress(),
		Handler:      api.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Minute,
		ErrorLog:     slog.NewLogLogger(logger.Get().Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		logger.Error("HTTP server error", "error", err)
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	logger.Info("Server stopped. Goodbye!")
}
