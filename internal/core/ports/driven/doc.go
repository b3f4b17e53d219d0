// Package driven defines the interfaces the core services depend on:
// the entity stores backed by the encrypted SQLite engine and the
// maintenance surface (backup, optimize, telemetry).
//
// Adapters under internal/adapters/driven implement these interfaces.
package driven
