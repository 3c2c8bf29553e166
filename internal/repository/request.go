package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meteora/weather-history/internal/model"
)

// requestRepository is shared by both dialects; queries are written with
// ? placeholders and rebound for the driver.
type requestRepository struct {
	db            *sqlx.DB
	payloadColumn string
}

// requestRow carries a request joined with its location and snapshot.
type requestRow struct {
	model.WeatherRequest
	Loc  model.Location        `db:"location"`
	Snap model.WeatherSnapshot `db:"snapshot"`
}

func (row requestRow) toModel() model.WeatherRequest {
	req := row.WeatherRequest
	req.DateStart = req.DateStart.UTC()
	req.DateEnd = req.DateEnd.UTC()
	req.CreatedAt = req.CreatedAt.UTC()
	req.FetchedAt = req.FetchedAt.UTC()

	loc := row.Loc
	loc.CreatedAt = loc.CreatedAt.UTC()
	snap := row.Snap
	snap.CapturedAt = snap.CapturedAt.UTC()

	req.Location = &loc
	req.Snapshot = &snap
	return req
}

func (r *requestRepository) selectQuery() string {
	return `
		SELECT
			r.id, r.location_id, r.date_start, r.date_end, r.provider,
			r.snapshot_id, r.notes, r.created_at, r.fetched_at,
			l.id AS "location.id",
			l.user_input AS "location.user_input",
			l.name AS "location.name",
			l.latitude AS "location.latitude",
			l.longitude AS "location.longitude",
			l.source AS "location.source",
			l.created_at AS "location.created_at",
			s.id AS "snapshot.id",
			` + r.payloadColumn + ` AS "snapshot.raw_payload",
			s.captured_at AS "snapshot.captured_at"
		FROM weather_requests r
		JOIN locations l ON l.id = r.location_id
		JOIN weather_snapshots s ON s.id = r.snapshot_id
	`
}

func (r *requestRepository) Create(ctx context.Context, req *model.WeatherRequest) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO weather_requests (
			id, location_id, date_start, date_end, provider,
			snapshot_id, notes, created_at, fetched_at
		) VALUES (
			:id, :location_id, :date_start, :date_end, :provider,
			:snapshot_id, :notes, :created_at, :fetched_at
		)
	`, req)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*model.WeatherRequest, error) {
	var row requestRow
	q := r.db.Rebind(r.selectQuery() + " WHERE r.id = ?")
	err := r.db.GetContext(ctx, &row, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	req := row.toModel()
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, limit int) ([]model.WeatherRequest, error) {
	q := r.db.Rebind(r.selectQuery() + " ORDER BY r.created_at DESC, r.id DESC LIMIT ?")
	return r.selectRows(ctx, q, limit)
}

func (r *requestRepository) ListByIDs(ctx context.Context, ids []string, limit int) ([]model.WeatherRequest, error) {
	if len(ids) == 0 {
		return []model.WeatherRequest{}, nil
	}

	q, args, err := sqlx.In(r.selectQuery()+" WHERE r.id IN (?) ORDER BY r.created_at DESC, r.id DESC LIMIT ?", ids, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return r.selectRows(ctx, r.db.Rebind(q), args...)
}

func (r *requestRepository) selectRows(ctx context.Context, q string, args ...any) ([]model.WeatherRequest, error) {
	var rows []requestRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}

	out := make([]model.WeatherRequest, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.WeatherRequest) error {
	res, err := r.db.NamedExecContext(ctx, `
		UPDATE weather_requests SET
			location_id = :location_id,
			date_start = :date_start,
			date_end = :date_end,
			snapshot_id = :snapshot_id,
			notes = :notes,
			fetched_at = :fetched_at
		WHERE id = :id
	`, req)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	return expectAffected(res)
}

func (r *requestRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM weather_requests WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
