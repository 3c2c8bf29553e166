package service

import (
	"context"

	"github.com/meteora/weather-history/internal/export"
	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/weather"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ResolveLocation(ctx context.Context, input string) (model.ResolvedLocation, error)
	ReverseLocation(ctx context.Context, lat, lon float64) (model.ResolvedLocation, error)
	FetchWeather(ctx context.Context, lat, lon float64) (*weather.Bundle, error)

	CreateRequest(ctx context.Context, in model.CreateRequestInput) (*model.WeatherRequest, error)
	GetRequest(ctx context.Context, id string) (*model.WeatherRequest, error)
	ListRequests(ctx context.Context) ([]model.WeatherRequest, error)
	UpdateRequest(ctx context.Context, id string, in model.UpdateRequestInput) (*model.WeatherRequest, error)
	DeleteRequest(ctx context.Context, id string) error

	ExportRequests(ctx context.Context, format string, ids []string, opts export.Options) (*export.Document, error)
}

var _ ServiceInterface = (*Service)(nil)
