package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/repository"
)

// CreateRequest runs the full pipeline: validate, resolve, fetch, then
// persist location, snapshot and request in that order.
func (s *Service) CreateRequest(ctx context.Context, in model.CreateRequestInput) (*model.WeatherRequest, error) {
	errs := fieldErrors{}
	start := checkDate(errs, "dateStart", in.DateStart)
	end := checkDate(errs, "dateEnd", in.DateEnd)
	checkRange(errs, start, end)
	checkCoordinates(errs, in.Latitude, in.Longitude)
	input := strings.TrimSpace(in.Input)
	if input == "" && in.Latitude == nil && in.Longitude == nil {
		errs.add("input", "location input or coordinates are required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	resolved, err := s.resolve(ctx, input, in.Latitude, in.Longitude)
	if err != nil {
		return nil, err
	}

	now := s.now()
	loc, snap, err := s.captureWeather(ctx, userInput(input, resolved), resolved, now)
	if err != nil {
		return nil, err
	}

	req := &model.WeatherRequest{
		ID:         uuid.NewString(),
		LocationID: loc.ID,
		DateStart:  start,
		DateEnd:    end,
		Provider:   model.DefaultProvider,
		SnapshotID: snap.ID,
		Notes:      normalizeNotes(in.Notes),
		CreatedAt:  now,
		FetchedAt:  now,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RequestsCreated.Inc()
	}
	s.logger.Info("Weather request created",
		zap.String("id", req.ID),
		zap.String("location", loc.Name),
		zap.String("source", string(loc.Source)),
	)

	return s.GetRequest(ctx, req.ID)
}

// UpdateRequest applies a partial update. A new location input forces a fresh
// resolve and fetch with a new snapshot; otherwise the snapshot is kept.
func (s *Service) UpdateRequest(ctx context.Context, id string, in model.UpdateRequestInput) (*model.WeatherRequest, error) {
	errs := fieldErrors{}
	var start, end *time.Time
	if in.DateStart != nil {
		t := checkDate(errs, "dateStart", *in.DateStart)
		start = &t
	}
	if in.DateEnd != nil {
		t := checkDate(errs, "dateEnd", *in.DateEnd)
		end = &t
	}
	hasCoords := checkCoordinates(errs, in.Latitude, in.Longitude)
	if err := errs.err(); err != nil {
		return nil, err
	}

	existing, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if start != nil {
		updated.DateStart = *start
	}
	if end != nil {
		updated.DateEnd = *end
	}
	checkRange(errs, updated.DateStart, updated.DateEnd)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if in.Notes != nil {
		updated.Notes = normalizeNotes(in.Notes)
	}

	input := ""
	if in.Input != nil {
		input = strings.TrimSpace(*in.Input)
	}
	refetch := input != "" || hasCoords

	if refetch {
		resolved, err := s.resolve(ctx, input, in.Latitude, in.Longitude)
		if err != nil {
			return nil, err
		}

		now := s.now()
		loc, snap, err := s.captureWeather(ctx, userInput(input, resolved), resolved, now)
		if err != nil {
			return nil, err
		}
		updated.LocationID = loc.ID
		updated.SnapshotID = snap.ID
		updated.FetchedAt = now
	}

	if err := s.requests.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RequestsUpdated.WithLabelValues(strconv.FormatBool(refetch)).Inc()
	}
	s.logger.Info("Weather request updated", zap.String("id", id), zap.Bool("refetched", refetch))

	return s.GetRequest(ctx, id)
}

// DeleteRequest removes a request. Its location and snapshot are kept.
func (s *Service) DeleteRequest(ctx context.Context, id string) error {
	if err := s.requests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RequestsDeleted.Inc()
	}
	s.logger.Info("Weather request deleted", zap.String("id", id))
	return nil
}

// GetRequest returns one request with its location and snapshot
func (s *Service) GetRequest(ctx context.Context, id string) (*model.WeatherRequest, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return req, nil
}

// ListRequests returns the most recent requests, newest first
func (s *Service) ListRequests(ctx context.Context) ([]model.WeatherRequest, error) {
	reqs, err := s.requests.List(ctx, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	return reqs, nil
}

// resolve prefers text input and falls back to reverse geocoding coordinates
func (s *Service) resolve(ctx context.Context, input string, lat, lon *float64) (model.ResolvedLocation, error) {
	if input != "" {
		return s.resolver.Resolve(ctx, input)
	}
	return s.resolver.ResolveCoordinates(ctx, *lat, *lon), nil
}

// captureWeather fetches weather for resolved and persists the location and a
// new snapshot. Nothing is written when the fetch fails.
func (s *Service) captureWeather(ctx context.Context, input string, resolved model.ResolvedLocation, now time.Time) (*model.Location, *model.WeatherSnapshot, error) {
	bundle, err := s.fetcher.Fetch(ctx, resolved.Latitude, resolved.Longitude)
	if err != nil {
		return nil, nil, err
	}
	payload, err := model.NewPayload(bundle)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode weather bundle: %w", err)
	}

	loc, err := s.locations.FindOrCreate(ctx, &model.Location{
		ID:        uuid.NewString(),
		UserInput: input,
		Name:      resolved.Name,
		Latitude:  resolved.Latitude,
		Longitude: resolved.Longitude,
		Source:    resolved.Source,
		CreatedAt: now,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to store location: %w", err)
	}

	snap := &model.WeatherSnapshot{
		ID:         uuid.NewString(),
		RawPayload: payload,
		CapturedAt: now,
	}
	if err := s.snapshots.Create(ctx, snap); err != nil {
		return nil, nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	if s.metrics != nil {
		s.metrics.SnapshotsCreated.Inc()
	}

	return loc, snap, nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

func userInput(input string, resolved model.ResolvedLocation) string {
	if input != "" {
		return input
	}
	return strconv.FormatFloat(resolved.Latitude, 'f', -1, 64) + ", " + strconv.FormatFloat(resolved.Longitude, 'f', -1, 64)
}
