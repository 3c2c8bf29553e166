package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meteora/weather-history/internal/model"
)

type sqliteLocationRepository struct {
	db *sqlx.DB
}

func (r *sqliteLocationRepository) FindOrCreate(ctx context.Context, loc *model.Location) (*model.Location, error) {
	q := `
		INSERT OR IGNORE INTO locations (id, user_input, name, latitude, longitude, source, created_at)
		VALUES (:id, :user_input, :name, :latitude, :longitude, :source, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, q, loc); err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	var stored model.Location
	err := r.db.GetContext(ctx, &stored, `
		SELECT * FROM locations WHERE name = ? AND latitude = ? AND longitude = ?
	`, loc.Name, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()
	return &stored, nil
}

func (r *sqliteLocationRepository) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	err := r.db.GetContext(ctx, &loc, "SELECT * FROM locations WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	loc.CreatedAt = loc.CreatedAt.UTC()
	return &loc, nil
}

type sqliteSnapshotRepository struct {
	db *sqlx.DB
}

func (r *sqliteSnapshotRepository) Create(ctx context.Context, snap *model.WeatherSnapshot) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO weather_snapshots (id, raw_payload, captured_at)
		VALUES (:id, :raw_payload, :captured_at)
	`, snap)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (r *sqliteSnapshotRepository) GetByID(ctx context.Context, id string) (*model.WeatherSnapshot, error) {
	var snap model.WeatherSnapshot
	err := r.db.GetContext(ctx, &snap, "SELECT * FROM weather_snapshots WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	snap.CapturedAt = snap.CapturedAt.UTC()
	return &snap, nil
}
