package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/ports/driven"
	"github.com/custodia-labs/lorevault/internal/core/ports/driving"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService exposes engine maintenance to operators.
type MaintenanceService struct {
	engine driven.Maintenance
	dbPath string
}

// NewMaintenanceService creates a new maintenance service. dbPath is
// used to derive default backup destinations.
func NewMaintenanceService(engine driven.Maintenance, dbPath string) *MaintenanceService {
	return &MaintenanceService{engine: engine, dbPath: dbPath}
}

// Backup writes a consistent database copy. An empty path picks a
// timestamped file next to the database.
func (s *MaintenanceService) Backup(ctx context.Context, path string) (string, error) {
	if path == "" {
		stamp := time.Now().UTC().Format("20060102-150405")
		base := strings.TrimSuffix(filepath.Base(s.dbPath), filepath.Ext(s.dbPath))
		path = filepath.Join(filepath.Dir(s.dbPath), fmt.Sprintf("%s-%s.backup.db", base, stamp))
	}
	if err := s.engine.Backup(ctx, path); err != nil {
		return "", err
	}
	return path, nil
}

// Optimize refreshes planner statistics and compacts the database.
func (s *MaintenanceService) Optimize(ctx context.Context) error {
	return s.engine.Optimize(ctx)
}

// RebuildSearchIndex repopulates the full-text index from the base
// tables.
func (s *MaintenanceService) RebuildSearchIndex(ctx context.Context) error {
	return s.engine.RebuildSearchIndex(ctx)
}

// Stats returns a snapshot of engine telemetry.
func (s *MaintenanceService) Stats() driven.EngineStats {
	return s.engine.Stats()
}
