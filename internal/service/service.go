package service

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/config"
	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/observability"
	"github.com/meteora/weather-history/internal/repository"
	"github.com/meteora/weather-history/internal/weather"
)

// LocationResolver turns user input or coordinates into a named location
type LocationResolver interface {
	Resolve(ctx context.Context, input string) (model.ResolvedLocation, error)
	ResolveCoordinates(ctx context.Context, lat, lon float64) model.ResolvedLocation
}

// WeatherFetcher retrieves the weather bundle for coordinates
type WeatherFetcher interface {
	Fetch(ctx context.Context, lat, lon float64) (*weather.Bundle, error)
}

// Service provides business logic for the API
type Service struct {
	locations repository.LocationRepository
	snapshots repository.SnapshotRepository
	requests  repository.RequestRepository
	resolver  LocationResolver
	fetcher   WeatherFetcher

	clock       clockwork.Clock
	logger      *zap.Logger
	metrics     *observability.Metrics
	listLimit   int
	exportLimit int
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the clock used for timestamps
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables lifecycle metrics
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLimits sets the list and export caps
func WithLimits(l config.LimitsConfig) Option {
	return func(s *Service) {
		if l.List > 0 {
			s.listLimit = l.List
		}
		if l.Export > 0 && l.Export <= config.MaxExportRows {
			s.exportLimit = l.Export
		}
	}
}

// NewService creates a new service instance
func NewService(
	repos *repository.Container,
	resolver LocationResolver,
	fetcher WeatherFetcher,
	opts ...Option,
) *Service {
	s := &Service{
		locations:   repos.Location,
		snapshots:   repos.Snapshot,
		requests:    repos.Request,
		resolver:    resolver,
		fetcher:     fetcher,
		clock:       clockwork.NewRealClock(),
		logger:      zap.NewNop(),
		listLimit:   100,
		exportLimit: config.MaxExportRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
