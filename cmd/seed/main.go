package main

import (
	"context"
	"database/sql"
	"flag"
	"log"

	_ "github.com/lib/pq"

	"toolshed-backend/internal/config"
	"toolshed-backend/internal/logger"
	"toolshed-backend/internal/repository/postgres"
	"toolshed-backend/internal/seed"
	"toolshed-backend/internal/service"
	"toolshed-backend/internal/utils"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	seedPath := flag.String("file", "config/seed.example.yaml", "Path to the seed data file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	data, err := seed.Load(*seedPath)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database", "host", cfg.Database.Host, "database", cfg.Database.Database)

	store := postgres.NewStore(db)
	repos := store.Repositories()
	clock := utils.NewSystemClock(loc)

	seeder := seed.NewSeeder(
		service.NewCategoryService(store.CategoryRepository),
		service.NewUserService(repos, store, clock),
		service.NewToolService(repos, store, clock),
	)
	res, err := seeder.Run(context.Background(), data)
	if err != nil {
		logger.Error("Seeding failed", "error", err, "progress", res)
		log.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("Seed data loaded",
		"categories_created", res.CategoriesCreated,
		"users_created", res.UsersCreated,
		"users_skipped", res.UsersSkipped,
		"tools_created", res.ToolsCreated,
		"tools_skipped", res.ToolsSkipped,
	)
}
