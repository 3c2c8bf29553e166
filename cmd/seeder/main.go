package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/config"
	"github.com/meteora/weather-history/internal/database"
	"github.com/meteora/weather-history/internal/geo"
	"github.com/meteora/weather-history/internal/repository"
	"github.com/meteora/weather-history/internal/seeder"
	"github.com/meteora/weather-history/internal/service"
	"github.com/meteora/weather-history/internal/upstream"
	"github.com/meteora/weather-history/internal/weather"
)

func main() {
	file := flag.String("file", "", "History file to import (defaults to SEEDER_FILE)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	path := cfg.Seeder.File
	if *file != "" {
		path = *file
	}
	if path == "" {
		logger.Fatal("No history file given; pass -file or set SEEDER_FILE")
	}
	if cfg.DB.IsMemory() {
		logger.Warn("Importing into an in-memory database; the data is lost when the import exits")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB, cfg.DB.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))
	logger.Info("Starting history import...", zap.String("file", path))

	resolver := geo.NewResolver(
		geo.NewClient(cfg.Geocoding.BaseURL, upstream.New("geocoding", cfg.Geocoding.Timeout, upstream.WithLogger(logger))),
		logger,
	)
	fetcher := weather.NewFetcher(
		cfg.Weather.ForecastURL,
		cfg.Weather.AirQualityURL,
		upstream.New("forecast", cfg.Weather.Timeout, upstream.WithLogger(logger)),
		upstream.New("air-quality", cfg.Weather.Timeout, upstream.WithLogger(logger)),
		logger,
	)
	svc := service.NewService(repository.NewRepositories(db, cfg.DB.Type), resolver, fetcher,
		service.WithLogger(logger),
		service.WithLimits(cfg.Limits),
	)

	importer := seeder.NewImporter(seeder.NewParser(cfg.Seeder.BatchSize), svc, logger)
	summary, err := importer.Import(ctx, path)
	if err != nil {
		logger.Fatal("History import failed", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("created", summary.Created),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
	)
}
