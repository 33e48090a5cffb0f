package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/jobs"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository/postgres"
	"toolshed-backend/internal/scheduler"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a single job once and exit (MarkLateRentals, SendLateReminders, SendMembershipReminders or all)")
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
	logger.Info("Starting Toolshed cronjob runner...", "log_level", cfg.Log.Level)

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	store := postgres.NewStore(db)
	repos := store.Repositories()
	clock := utils.NewSystemClock(loc)

	// Distributed lock so only one replica runs each job
	var locker jobs.Locker
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Error("Failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		logger.Info("Redis job lock enabled", "addr", cfg.Redis.Addr)
		locker = jobs.NewRedisLocker(client)
	} else {
		logger.Warn("Redis not configured, jobs run without a distributed lock")
	}

	// Email is optional; reminder jobs are skipped without it
	var notifier service.NotificationSender
	if cfg.SendGrid.APIKey != "" {
		notifier = service.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("SendGrid not configured, reminder emails are disabled")
	}

	jobServices := &jobs.Services{
		Rental:   service.NewRentalService(repos, store, clock),
		User:     service.NewUserService(repos, store, clock),
		Tool:     service.NewToolService(repos, store, clock),
		Notifier: notifier,
	}
	jobRunner := jobs.NewJobRunner(jobServices, cfg, locker, clock)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if *runOnce == "all" {
			jobRunner.RunAll()
		} else if err := jobRunner.RunJob(*runOnce); err != nil {
			logger.Error("Unknown job name", "job", *runOnce)
			fmt.Fprintf(os.Stderr, "Available jobs: %s, all\n", strings.Join(jobRunner.JobNames(), ", "))
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner, loc)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}
