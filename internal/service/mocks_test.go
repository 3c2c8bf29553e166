package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/meteora/weather-history/internal/model"
	"github.com/meteora/weather-history/internal/weather"
)

// MockResolver implements LocationResolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, input string) (model.ResolvedLocation, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(model.ResolvedLocation), args.Error(1)
}

func (m *MockResolver) ResolveCoordinates(ctx context.Context, lat, lon float64) model.ResolvedLocation {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(model.ResolvedLocation)
}

// MockFetcher implements WeatherFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, lat, lon float64) (*weather.Bundle, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*weather.Bundle), args.Error(1)
}

// MockLocationRepository implements repository.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) FindOrCreate(ctx context.Context, loc *model.Location) (*model.Location, error) {
	args := m.Called(ctx, loc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id string) (*model.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Location), args.Error(1)
}

// MockSnapshotRepository implements repository.SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snap *model.WeatherSnapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id string) (*model.WeatherSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherSnapshot), args.Error(1)
}

// MockRequestRepository implements repository.RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, req *model.WeatherRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) GetByID(ctx context.Context, id string) (*model.WeatherRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeatherRequest), args.Error(1)
}

func (m *MockRequestRepository) List(ctx context.Context, limit int) ([]model.WeatherRequest, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WeatherRequest), args.Error(1)
}

func (m *MockRequestRepository) ListByIDs(ctx context.Context, ids []string, limit int) ([]model.WeatherRequest, error) {
	args := m.Called(ctx, ids, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WeatherRequest), args.Error(1)
}

func (m *MockRequestRepository) Update(ctx context.Context, req *model.WeatherRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRequestRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
