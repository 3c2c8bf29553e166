package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteora/weather-history/internal/config"
)

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "file://migrations/sqlite", SourceURL(config.DBConfig{Type: config.DBTypeMemory}, "migrations"))
	assert.Equal(t, "file://../../migrations/postgres", SourceURL(config.DBConfig{Type: config.DBTypePostgreSQL}, "../../migrations"))
}

func TestMigrateDSN(t *testing.T) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "x"}
	assert.Equal(t, "sqlite3://file:x?mode=memory&cache=shared", migrateDSN(cfg))

	pg := config.DBConfig{Type: config.DBTypePostgreSQL, Host: "h", Port: "5432", User: "u", Password: "p", Name: "d", SSLMode: "disable"}
	assert.Equal(t, pg.DSN(), migrateDSN(pg))
}

func TestConnectAndMigrate(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "db_" + uuid.NewString()}

	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, cfg, "../../migrations"))
	// A second run is a no-op.
	require.NoError(t, Migrate(db, cfg, "../../migrations"))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'schema_migrations' ORDER BY name"))
	assert.Equal(t, []string{"locations", "weather_requests", "weather_snapshots"}, tables)

	var fk int
	require.NoError(t, db.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)

	_, err = db.ExecContext(ctx, `INSERT INTO weather_requests
		(id, location_id, date_start, date_end, provider, snapshot_id, created_at, fetched_at)
		VALUES ('r', 'missing', '2024-05-01', '2024-05-01', 'open-meteo', 'missing', '2024-05-01', '2024-05-01')`)
	assert.Error(t, err, "foreign keys are enforced")
}

func TestMigrate_MissingDirectory(t *testing.T) {
	ctx := context.Background()
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "db_" + uuid.NewString()}

	db, err := Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.Error(t, Migrate(db, cfg, t.TempDir()))
}
