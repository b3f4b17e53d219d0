package driving

import (
	"context"

	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
)

// MaintenanceService exposes engine maintenance to operators.
type MaintenanceService interface {
	// Backup writes a consistent database copy and returns the resolved
	// destination path. An empty path picks a timestamped default next
	// to the database.
	Backup(ctx context.Context, path string) (string, error)

	// Optimize refreshes planner statistics and compacts the database.
	Optimize(ctx context.Context) error

	// RebuildSearchIndex repopulates the full-text index from the base
	// tables.
	RebuildSearchIndex(ctx context.Context) error

	// Stats returns a snapshot of engine telemetry.
	Stats() driven.EngineStats
}
