package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meteora/weather-history/internal/config"
	"github.com/meteora/weather-history/internal/model"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// LocationRepository defines operations for locations
type LocationRepository interface {
	// FindOrCreate returns the stored location with the same name and
	// coordinates, inserting loc only when none exists.
	FindOrCreate(ctx context.Context, loc *model.Location) (*model.Location, error)
	GetByID(ctx context.Context, id string) (*model.Location, error)
}

// SnapshotRepository defines operations for weather snapshots
type SnapshotRepository interface {
	Create(ctx context.Context, snap *model.WeatherSnapshot) error
	GetByID(ctx context.Context, id string) (*model.WeatherSnapshot, error)
}

// RequestRepository defines operations for weather requests.
// Reads include the related location and snapshot.
type RequestRepository interface {
	Create(ctx context.Context, req *model.WeatherRequest) error
	GetByID(ctx context.Context, id string) (*model.WeatherRequest, error)
	List(ctx context.Context, limit int) ([]model.WeatherRequest, error)
	ListByIDs(ctx context.Context, ids []string, limit int) ([]model.WeatherRequest, error)
	Update(ctx context.Context, req *model.WeatherRequest) error
	Delete(ctx context.Context, id string) error
}

// Container holds all repositories
type Container struct {
	Location LocationRepository
	Snapshot SnapshotRepository
	Request  RequestRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			Location: &pgLocationRepository{db: db},
			Snapshot: &pgSnapshotRepository{db: db},
			Request:  &requestRepository{db: db, payloadColumn: "s.raw_payload::text"},
		}
	}

	// Default to SQLite
	return &Container{
		Location: &sqliteLocationRepository{db: db},
		Snapshot: &sqliteSnapshotRepository{db: db},
		Request:  &requestRepository{db: db, payloadColumn: "s.raw_payload"},
	}
}

// IsHistoryEmpty reports whether no weather request has been stored yet
func IsHistoryEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM weather_requests"); err != nil {
		return false, fmt.Errorf("failed to count requests: %w", err)
	}
	return count == 0, nil
}
