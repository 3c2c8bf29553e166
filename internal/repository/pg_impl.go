package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meteora/weather-history/internal/model"
)

// --- PostgreSQL Implementation ---

type pgLocationRepository struct {
	db *sqlx.DB
}

func (r *pgLocationRepository) FindOrCreate(ctx context.Context, loc *model.Location) (*model.Location, error) {
	q := `
		INSERT INTO locations (id, user_input, name, latitude, longitude, source, created_at)
		VALUES (:id, :user_input, :name, :latitude, :longitude, :source, :created_at)
		ON CONFLICT (name, latitude, longitude) DO NOTHING
	`
	if _, err := r.db.NamedExecContext(ctx, q, loc); err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	var stored model.Location
	err := r.db.GetContext(ctx, &stored, `
		SELECT * FROM locations WHERE name = $1 AND latitude = $2 AND longitude = $3
	`, loc.Name, loc.Latitude, loc.Longitude)
	if err != nil {
		return nil, fmt.Errorf("failed to load location: %w", err)
	}
	stored.CreatedAt = stored.CreatedAt.UTC()
	return &stored, nil
}

func (r *pgLocationRepository) GetByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	err := r.db.GetContext(ctx, &loc, "SELECT * FROM locations WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	loc.CreatedAt = loc.CreatedAt.UTC()
	return &loc, nil
}

type pgSnapshotRepository struct {
	db *sqlx.DB
}

func (r *pgSnapshotRepository) Create(ctx context.Context, snap *model.WeatherSnapshot) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO weather_snapshots (id, raw_payload, captured_at)
		VALUES (:id, CAST(:raw_payload AS JSONB), :captured_at)
	`, snap)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (r *pgSnapshotRepository) GetByID(ctx context.Context, id string) (*model.WeatherSnapshot, error) {
	var snap model.WeatherSnapshot
	err := r.db.GetContext(ctx, &snap, `
		SELECT id, raw_payload::text AS raw_payload, captured_at FROM weather_snapshots WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	snap.CapturedAt = snap.CapturedAt.UTC()
	return &snap, nil
}
