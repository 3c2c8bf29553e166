// Package stats reports database, history and runtime statistics.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/meteora/weather-history/internal/config"
)

// Tables holds the tables covered by the statistics.
var Tables = []string{"locations", "weather_snapshots", "weather_requests"}

type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	History   HistoryStats  `json:"history"`
	Runtime   RuntimeStats  `json:"runtime"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// HistoryStats summarizes the stored request history.
type HistoryStats struct {
	// OrphanedSnapshots counts snapshots no request references any more.
	OrphanedSnapshots int64            `json:"orphaned_snapshots"`
	LocationsBySource map[string]int64 `json:"locations_by_source"`
	OldestRequest     *time.Time       `json:"oldest_request,omitempty"`
	NewestRequest     *time.Time       `json:"newest_request,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

type Collector struct {
	db         *sqlx.DB
	config     config.DBConfig
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.Mutex
}

var memStatsCacheDuration = 5 * time.Second

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	history, err := c.collectHistoryStats(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Timestamp: time.Now().UTC(),
		Memory:    c.collectMemoryStats(),
		Database:  *dbStats,
		History:   *history,
		Runtime:   c.collectRuntimeStats(),
	}, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		return *c.cachedMem
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
	}
	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type: string(c.config.Type),
	}

	if totalSize, err := c.getDatabaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	for _, table := range Tables {
		stat, err := c.getTableStat(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats.TableStats = append(stats.TableStats, *stat)
		stats.TotalRecords += stat.RowCount
	}

	return stats, nil
}

func (c *Collector) getDatabaseSize(ctx context.Context) (int64, error) {
	var size int64
	var err error

	if c.config.Type == config.DBTypePostgreSQL {
		err = c.db.GetContext(ctx, &size, "SELECT pg_database_size(current_database())")
	} else {
		err = c.db.GetContext(ctx, &size, "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	}
	return size, err
}

func (c *Collector) getTableStat(ctx context.Context, tableName string) (*TableStat, error) {
	stat := &TableStat{Name: tableName}

	if err := c.db.GetContext(ctx, &stat.RowCount, "SELECT COUNT(*) FROM "+tableName); err != nil {
		return nil, err
	}

	if c.config.Type == config.DBTypePostgreSQL {
		var size int64
		if err := c.db.GetContext(ctx, &size, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, tableName); err == nil {
			stat.SizeBytes = size
		}
	}

	return stat, nil
}

func (c *Collector) collectHistoryStats(ctx context.Context) (*HistoryStats, error) {
	history := &HistoryStats{LocationsBySource: map[string]int64{}}

	err := c.db.GetContext(ctx, &history.OrphanedSnapshots, `
		SELECT COUNT(*) FROM weather_snapshots s
		WHERE NOT EXISTS (SELECT 1 FROM weather_requests r WHERE r.snapshot_id = s.id)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphaned snapshots: %w", err)
	}

	var sources []struct {
		Source string `db:"source"`
		Count  int64  `db:"count"`
	}
	if err := c.db.SelectContext(ctx, &sources, "SELECT source, COUNT(*) AS count FROM locations GROUP BY source"); err != nil {
		return nil, fmt.Errorf("failed to group locations: %w", err)
	}
	for _, s := range sources {
		history.LocationsBySource[s.Source] = s.Count
	}

	oldest, err := c.requestBound(ctx, "ASC")
	if err != nil {
		return nil, err
	}
	newest, err := c.requestBound(ctx, "DESC")
	if err != nil {
		return nil, err
	}
	history.OldestRequest = oldest
	history.NewestRequest = newest

	return history, nil
}

// requestBound returns the first request creation time in the given order, or nil.
func (c *Collector) requestBound(ctx context.Context, order string) (*time.Time, error) {
	var t time.Time
	err := c.db.GetContext(ctx, &t, "SELECT created_at FROM weather_requests ORDER BY created_at "+order+" LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request bounds: %w", err)
	}
	t = t.UTC()
	return &t, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
