// Package geo turns free-form location input into coordinates.
package geo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/model"
)

// SearchCount is the number of forward-geocoding candidates requested.
const SearchCount = 5

// NoMatchMessage is shown to users when nothing matched their input.
const NoMatchMessage = "No matching location found. Try being more specific."

var (
	// ErrEmptyInput is returned for blank input.
	ErrEmptyInput = errors.New("location input is required")
	// ErrNoMatch is returned when forward geocoding yields no candidates.
	ErrNoMatch = errors.New("no matching location found")
	// ErrResolution wraps geocoding provider failures.
	ErrResolution = errors.New("location resolution failed")
)

var latLonPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

// Geocoder looks up places by name or coordinates.
type Geocoder interface {
	Search(ctx context.Context, name string, count int) ([]Candidate, error)
	Reverse(ctx context.Context, lat, lon float64) (*Candidate, error)
}

// Resolver applies the resolution precedence: coordinate literal, then
// forward geocoding. Reverse geocoding is only reached through ResolveCoordinates.
type Resolver struct {
	geocoder Geocoder
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
func NewResolver(geocoder Geocoder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve resolves free-form input to a named coordinate pair.
func (r *Resolver) Resolve(ctx context.Context, input string) (model.ResolvedLocation, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.ResolvedLocation{}, ErrEmptyInput
	}

	if lat, lon, ok := ParseLatLon(input); ok {
		return model.ResolvedLocation{
			Name:      fmt.Sprintf("%.4f, %.4f", lat, lon),
			Latitude:  lat,
			Longitude: lon,
			Source:    model.SourceCoordinateLiteral,
		}, nil
	}

	candidates, err := r.geocoder.Search(ctx, input, SearchCount)
	if err != nil {
		return model.ResolvedLocation{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if len(candidates) == 0 {
		return model.ResolvedLocation{}, ErrNoMatch
	}

	best := candidates[0]
	return model.ResolvedLocation{
		Name:      best.DisplayName(),
		Latitude:  best.Latitude,
		Longitude: best.Longitude,
		Source:    model.SourceForwardGeocode,
	}, nil
}

// ResolveCoordinates names known coordinates via reverse geocoding.
// It never fails: without a match the name is the coordinate pair itself.
// Callers validate the coordinate range beforehand.
func (r *Resolver) ResolveCoordinates(ctx context.Context, lat, lon float64) model.ResolvedLocation {
	loc := model.ResolvedLocation{
		Name:      formatCoord(lat) + ", " + formatCoord(lon),
		Latitude:  lat,
		Longitude: lon,
		Source:    model.SourceReverseGeocode,
	}

	match, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("Reverse geocoding failed, using coordinates as name",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err),
		)
		return loc
	}
	if match == nil {
		return loc
	}
	if name := match.DisplayName(); name != "" {
		loc.Name = name
	}
	return loc
}

// ParseLatLon parses "lat, lon" literals. Both values must be finite and in range.
func ParseLatLon(input string) (lat, lon float64, ok bool) {
	m := latLonPattern.FindStringSubmatch(input)
	if m == nil {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	if !ValidCoordinates(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// ValidCoordinates reports whether lat/lon are finite and within range.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return false
	}
	return math.Abs(lat) <= 90 && math.Abs(lon) <= 180
}
