package driven

import (
	"context"
	"time"
)

// EngineStats is a point-in-time snapshot of the storage engine's
// internals, used by diagnostics surfaces.
type EngineStats struct {
	// Pool occupancy.
	LiveConnections int
	IdleConnections int
	MaxConnections  int

	// Query cache occupancy.
	CacheEntries        int
	CacheExpiredEntries int

	// Recent query telemetry.
	RecordedQueries int
	SlowQueries     []SlowQuery
}

// SlowQuery describes one slow statement captured by the performance
// monitor.
type SlowQuery struct {
	Query    string
	Duration time.Duration
	Rows     int64
	At       time.Time
}

// Maintenance is the operational surface of the storage engine.
type Maintenance interface {
	// Backup writes an engine-consistent copy of the database to path.
	// Fails with a validation error for in-memory databases.
	Backup(ctx context.Context, path string) error

	// Optimize refreshes planner statistics and compacts the database
	// file. Safe concurrently with pooled reads; never runs inside an
	// open transaction.
	Optimize(ctx context.Context) error

	// RebuildSearchIndex repopulates the full-text index from the base
	// tables and compacts it.
	RebuildSearchIndex(ctx context.Context) error

	// Stats returns a snapshot of pool, cache, and query telemetry.
	Stats() EngineStats
}
