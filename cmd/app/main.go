package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meteora/weather-history/internal/api"
	"github.com/meteora/weather-history/internal/config"
	"github.com/meteora/weather-history/internal/database"
	"github.com/meteora/weather-history/internal/geo"
	"github.com/meteora/weather-history/internal/observability"
	"github.com/meteora/weather-history/internal/repository"
	"github.com/meteora/weather-history/internal/seeder"
	"github.com/meteora/weather-history/internal/service"
	"github.com/meteora/weather-history/internal/stats"
	"github.com/meteora/weather-history/internal/upstream"
	"github.com/meteora/weather-history/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, cfg.DB.MigrationsDir); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	newUpstream := func(name string, timeout time.Duration) *upstream.Client {
		return upstream.New(name, timeout,
			upstream.WithMetrics(metrics),
			upstream.WithLogger(logger),
		)
	}

	geocoder := geo.NewClient(cfg.Geocoding.BaseURL, newUpstream("geocoding", cfg.Geocoding.Timeout))
	resolver := geo.NewResolver(geocoder, logger)
	fetcher := weather.NewFetcher(
		cfg.Weather.ForecastURL,
		cfg.Weather.AirQualityURL,
		newUpstream("forecast", cfg.Weather.Timeout),
		newUpstream("air-quality", cfg.Weather.Timeout),
		logger,
	)

	repos := repository.NewRepositories(db, cfg.DB.Type)
	svc := service.NewService(repos, resolver, fetcher,
		service.WithClock(clockwork.NewRealClock()),
		service.WithLogger(logger),
		service.WithMetrics(metrics),
		service.WithLimits(cfg.Limits),
	)
	if cfg.Seeder.File != "" {
		if err := autoSeedHistory(ctx, db, svc, cfg, logger); err != nil {
			logger.Fatal("Failed to auto-seed history", zap.Error(err))
		}
	}

	statsCollector := stats.NewCollector(db, cfg.DB)
	router := api.NewRouter(svc, statsCollector, prometheus.DefaultGatherer, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// autoSeedHistory imports the configured history file into an empty store.
func autoSeedHistory(ctx context.Context, db *sqlx.DB, svc *service.Service, cfg *config.Config, logger *zap.Logger) error {
	isEmpty, err := repository.IsHistoryEmpty(ctx, db)
	if err != nil {
		return err
	}
	if !isEmpty {
		logger.Info("History already present, skipping seed")
		return nil
	}

	logger.Info("History is empty, auto-seeding...", zap.String("file", cfg.Seeder.File))
	importer := seeder.NewImporter(seeder.NewParser(cfg.Seeder.BatchSize), svc, logger)
	if _, err := importer.Import(ctx, cfg.Seeder.File); err != nil {
		return fmt.Errorf("failed to import %s: %w", cfg.Seeder.File, err)
	}
	return nil
}

// newLogger builds a production logger at the configured level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
