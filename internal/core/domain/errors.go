package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Storage Engine Errors.

	// ErrPoolExhausted indicates every pooled connection was busy for the
	// whole acquisition window. Transient; callers may retry with backoff.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrAcquireTimeout indicates the caller's deadline expired while
	// waiting for a pooled connection. Transient; callers may retry.
	ErrAcquireTimeout = errors.New("connection acquire timeout")

	// ErrPoolClosed indicates the pool has been shut down.
	ErrPoolClosed = errors.New("connection pool closed")

	// ErrTxConflict indicates the engine detected a write conflict
	// (another writer holds the lock). Transient; callers may retry.
	ErrTxConflict = errors.New("transaction conflict")

	// ErrTxFinished indicates an operation was issued against a
	// transaction that already committed or rolled back. This is a
	// programming error, not a runtime condition.
	ErrTxFinished = errors.New("transaction already finished")

	// ErrSavepoint indicates misuse of the savepoint stack: a duplicate
	// name, an invalid identifier, or a release that does not target the
	// top of the stack.
	ErrSavepoint = errors.New("savepoint misuse")

	// ErrSchema indicates schema bootstrap failed. Fatal at startup.
	ErrSchema = errors.New("schema error")

	// ErrEncryptionKey indicates the at-rest encryption key is invalid or
	// does not match the database file. Fatal at startup; the engine never
	// falls back to unencrypted storage.
	ErrEncryptionKey = errors.New("encryption key error")

	// ErrCacheCorrupt indicates a cached query result could not be
	// decoded. Non-fatal; the read proceeds as a cache miss.
	ErrCacheCorrupt = errors.New("cache entry corrupt")
)

// IsRetryable reports whether err is a transient storage error that a
// caller may retry with backoff.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPoolExhausted) ||
		errors.Is(err, ErrAcquireTimeout) ||
		errors.Is(err, ErrTxConflict)
}
