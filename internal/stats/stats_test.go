package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteora/weather-history/internal/config"
	"github.com/meteora/weather-history/internal/database"
)

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "stats_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return db, cfg
}

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	ctx := context.Background()

	first := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	last := first.Add(2 * time.Hour)

	_, err := db.ExecContext(ctx, `INSERT INTO locations (id, user_input, name, latitude, longitude, source, created_at)
		VALUES ('l1', 'Berlin', 'Berlin, Germany', 52.52, 13.41, 'forward-geocode', ?),
		       ('l2', '1,2', '1.0000, 2.0000', 1, 2, 'coordinate-literal', ?)`, first, first)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO weather_snapshots (id, raw_payload, captured_at)
		VALUES ('s1', '{}', ?), ('s2', '{}', ?), ('s3', '{}', ?)`, first, first, last)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO weather_requests
		(id, location_id, date_start, date_end, provider, snapshot_id, created_at, fetched_at)
		VALUES ('r1', 'l1', ?, ?, 'open-meteo', 's1', ?, ?),
		       ('r2', 'l2', ?, ?, 'open-meteo', 's3', ?, ?)`,
		first, first, first, first, last, last, last, last)
	require.NoError(t, err)

	collector := NewCollector(db, cfg)
	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Database.Type)
	assert.Equal(t, int64(7), stats.Database.TotalRecords)

	counts := map[string]int64{}
	for _, ts := range stats.Database.TableStats {
		counts[ts.Name] = ts.RowCount
	}
	assert.Equal(t, map[string]int64{"locations": 2, "weather_snapshots": 3, "weather_requests": 2}, counts)

	assert.Equal(t, int64(1), stats.History.OrphanedSnapshots)
	assert.Equal(t, map[string]int64{"forward-geocode": 1, "coordinate-literal": 1}, stats.History.LocationsBySource)
	require.NotNil(t, stats.History.OldestRequest)
	require.NotNil(t, stats.History.NewestRequest)
	assert.True(t, first.Equal(*stats.History.OldestRequest))
	assert.True(t, last.Equal(*stats.History.NewestRequest))

	assert.Greater(t, stats.Memory.Alloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.NumGoroutines, 1)

	stats2, err := collector.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats.Memory.Alloc, stats2.Memory.Alloc)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)

	stats, err := NewCollector(db, cfg).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Database.TotalRecords)
	assert.Equal(t, int64(0), stats.History.OrphanedSnapshots)
	assert.Empty(t, stats.History.LocationsBySource)
	assert.Nil(t, stats.History.OldestRequest)
}
