// Package weather fetches forecasts and air quality from Open-Meteo.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/upstream"
)

// ErrFetch is returned when the forecast cannot be retrieved.
var ErrFetch = errors.New("weather fetch failed")

const (
	currentVars  = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m,surface_pressure"
	hourlyVars   = "temperature_2m,precipitation_probability,wind_speed_10m"
	dailyVars    = "temperature_2m_max,temperature_2m_min,precipitation_probability_max,sunrise,sunset,uv_index_max"
	airVars      = "pm10,pm2_5,us_aqi"
	forecastDays = 7
)

// JSONGetter performs a JSON GET request against an upstream.
type JSONGetter interface {
	GetJSON(ctx context.Context, endpoint string, params url.Values, dest any) error
}

var _ JSONGetter = (*upstream.Client)(nil)

// Fetcher retrieves a Bundle for a coordinate pair.
type Fetcher struct {
	forecastURL   string
	airQualityURL string
	forecast      JSONGetter
	air           JSONGetter
	logger        *zap.Logger
}

// NewFetcher creates a Fetcher. Forecast and air quality use separate
// upstream clients so that each has its own circuit breaker.
func NewFetcher(forecastURL, airQualityURL string, forecast, air JSONGetter, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		forecastURL:   forecastURL,
		airQualityURL: airQualityURL,
		forecast:      forecast,
		air:           air,
		logger:        logger,
	}
}

// Fetch issues the forecast and air-quality requests concurrently.
// A failed air-quality request leaves Bundle.Air nil.
func (f *Fetcher) Fetch(ctx context.Context, lat, lon float64) (*Bundle, error) {
	var (
		wg          sync.WaitGroup
		forecast    forecastResponse
		air         airQualityResponse
		forecastErr error
		airErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		forecastErr = f.forecast.GetJSON(ctx, f.forecastURL, forecastParams(lat, lon), &forecast)
	}()
	go func() {
		defer wg.Done()
		airErr = f.air.GetJSON(ctx, f.airQualityURL, airParams(lat, lon), &air)
	}()
	wg.Wait()

	if forecastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, forecastErr)
	}

	bundle := &Bundle{
		Latitude:  forecast.Latitude,
		Longitude: forecast.Longitude,
		Timezone:  forecast.Timezone,
		Current:   forecast.Current,
		Hourly:    forecast.Hourly,
		Daily:     forecast.Daily,
		Units:     forecast.CurrentUnits,
	}

	if airErr != nil {
		f.logger.Warn("Air quality fetch failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(airErr),
		)
	} else {
		bundle.Air = air.Hourly
	}

	return bundle, nil
}

func forecastParams(lat, lon float64) url.Values {
	return url.Values{
		"latitude":      {formatCoord(lat)},
		"longitude":     {formatCoord(lon)},
		"current":       {currentVars},
		"hourly":        {hourlyVars},
		"daily":         {dailyVars},
		"timezone":      {"auto"},
		"forecast_days": {strconv.Itoa(forecastDays)},
	}
}

func airParams(lat, lon float64) url.Values {
	return url.Values{
		"latitude":  {formatCoord(lat)},
		"longitude": {formatCoord(lon)},
		"hourly":    {airVars},
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
