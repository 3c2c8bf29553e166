package service

import (
	"context"

	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/weather"
)

// ResolveLocation resolves free-form input without persisting anything
func (s *Service) ResolveLocation(ctx context.Context, input string) (model.ResolvedLocation, error) {
	return s.resolver.Resolve(ctx, input)
}

// ReverseLocation names a coordinate pair
func (s *Service) ReverseLocation(ctx context.Context, lat, lon float64) (model.ResolvedLocation, error) {
	errs := fieldErrors{}
	checkCoordinates(errs, &lat, &lon)
	if err := errs.err(); err != nil {
		return model.ResolvedLocation{}, err
	}
	return s.resolver.ResolveCoordinates(ctx, lat, lon), nil
}

// FetchWeather fetches the weather bundle without persisting it
func (s *Service) FetchWeather(ctx context.Context, lat, lon float64) (*weather.Bundle, error) {
	errs := fieldErrors{}
	checkCoordinates(errs, &lat, &lon)
	if err := errs.err(); err != nil {
		return nil, err
	}
	return s.fetcher.Fetch(ctx, lat, lon)
}
