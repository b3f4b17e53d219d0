package sqlite

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/custodia-labs/lorevault/internal/core/domain"
)

// driverName is the name go-sqlcipher registers with database/sql.
const driverName = "sqlite3"

// keyPattern restricts encryption keys to characters that need no
// escaping in a connection string.
var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// dsn builds the connection string for cfg. All engine settings travel
// as connection parameters so every pooled connection is configured
// identically, including the encryption key.
func dsn(cfg Config) string {
	q := url.Values{}
	q.Set("_foreign_keys", "on")
	q.Set("_busy_timeout", strconv.Itoa(int(cfg.BusyTimeout.Milliseconds())))
	q.Set("_synchronous", cfg.Synchronous)
	q.Set("_cache_size", strconv.Itoa(cfg.CacheSizePages))
	q.Set("_temp_store", "MEMORY")
	if cfg.SecureDelete {
		q.Set("_secure_delete", "on")
	}
	if cfg.Key != "" {
		q.Set("_pragma_key", cfg.Key)
	}

	if cfg.InMemory {
		q.Set("mode", "memory")
		q.Set("cache", "shared")
		return fmt.Sprintf("file:%s?%s", cfg.Path, q.Encode())
	}

	q.Set("_journal_mode", "WAL")
	return fmt.Sprintf("file:%s?%s", cfg.Path, q.Encode())
}

// mapSQLiteErr translates low-level driver errors into the domain
// error taxonomy so callers can match with errors.Is.
func mapSQLiteErr(err error) error {
	if err == nil {
		return nil
	}
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%v: %w", err, domain.ErrTxConflict)
	case sqlite3.ErrNotADB:
		// SQLCipher reports a wrong key as an unreadable database.
		return fmt.Errorf("%v: %w", err, domain.ErrEncryptionKey)
	case sqlite3.ErrConstraint:
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%v: %w", err, domain.ErrAlreadyExists)
		default:
			return fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
		}
	default:
		return err
	}
}
