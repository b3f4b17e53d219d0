// Package sqlite implements the persistence engine on an encrypted
// SQLite database (SQLCipher).
//
// The package provides a managed connection pool, a transaction
// coordinator with savepoint support, a TTL-based query cache, a
// batched write path, and query performance telemetry. Entity stores
// defined under internal/core/ports/driven are exposed as wrapper
// types over a shared Store.
package sqlite
