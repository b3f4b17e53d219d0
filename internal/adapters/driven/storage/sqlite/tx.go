package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/logger"
)

type txState int

const (
	txOpen txState = iota
	txCommitted
	txRolledBack
)

// savepointPattern restricts savepoint names to plain identifiers,
// since they are spliced into statements verbatim.
var savepointPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Tx is an open transaction pinned to one pooled session. Statements
// inside a transaction bypass the query cache; the tables they touch
// are invalidated when the transaction commits.
//
// A Tx is not safe for concurrent use.
type Tx struct {
	store      *Store
	h          *handle
	state      txState
	savepoints []string
	touched    map[string]struct{}
}

// WithTransaction runs fn inside an immediate transaction. The
// transaction commits when fn returns nil and rolls back otherwise,
// including on panic. Either way the Tx reaches a terminal state and
// its session returns to the pool.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	h, err := s.pool.acquire(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer s.pool.release(h)

	// Immediate mode takes the write lock up front, surfacing
	// conflicts at BEGIN instead of mid-transaction.
	if _, err := h.conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("beginning transaction: %w", mapSQLiteErr(err))
	}

	tx := &Tx{store: s, h: h, touched: make(map[string]struct{})}
	defer func() {
		if tx.state == txOpen {
			tx.rollback()
		}
	}()

	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return tx.commit(ctx)
}

// Exec runs a write statement inside the transaction.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if t.state != txOpen {
		return nil, domain.ErrTxFinished
	}
	start := time.Now()
	res, err := t.h.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	rows, _ := res.RowsAffected()
	t.store.monitor.Record(query, time.Since(start), rows)
	return res, nil
}

// Query runs a read statement inside the transaction, seeing the
// transaction's own uncommitted writes.
func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if t.state != txOpen {
		return nil, domain.ErrTxFinished
	}
	start := time.Now()
	rows, err := t.h.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	t.store.monitor.Record(query, time.Since(start), 0)
	return rows, nil
}

// QueryRow runs a single-row read inside the transaction. Must not be
// called after the transaction finishes.
func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.h.conn.QueryRowContext(ctx, query, args...)
}

// Touch marks tables as modified so their cached reads are invalidated
// at commit.
func (t *Tx) Touch(tables ...string) {
	for _, table := range tables {
		t.touched[table] = struct{}{}
	}
}

// Savepoint runs fn inside a named savepoint. On success the savepoint
// is released into the enclosing transaction; on failure its work is
// rolled back while the enclosing transaction stays open. Savepoints
// nest; names must be unique among currently open savepoints.
func (t *Tx) Savepoint(ctx context.Context, name string, fn func() error) error {
	if t.state != txOpen {
		return domain.ErrTxFinished
	}
	if !savepointPattern.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q: %w", name, domain.ErrSavepoint)
	}
	for _, sp := range t.savepoints {
		if sp == name {
			return fmt.Errorf("savepoint %q already open: %w", name, domain.ErrSavepoint)
		}
	}

	if _, err := t.h.conn.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("creating savepoint %q: %w", name, mapSQLiteErr(err))
	}
	t.savepoints = append(t.savepoints, name)

	err := fn()

	t.savepoints = t.savepoints[:len(t.savepoints)-1]
	if err != nil {
		// Undo the savepoint's work without touching the enclosing
		// transaction. Uses a fresh context so cleanup still runs when
		// the caller's context is already done.
		bg := context.Background()
		if _, rerr := t.h.conn.ExecContext(bg, "ROLLBACK TO "+name); rerr != nil {
			return fmt.Errorf("rolling back savepoint %q after %v: %w", name, err, mapSQLiteErr(rerr))
		}
		if _, rerr := t.h.conn.ExecContext(bg, "RELEASE "+name); rerr != nil {
			return fmt.Errorf("releasing savepoint %q after %v: %w", name, err, mapSQLiteErr(rerr))
		}
		return err
	}

	if _, err := t.h.conn.ExecContext(ctx, "RELEASE "+name); err != nil {
		return fmt.Errorf("releasing savepoint %q: %w", name, mapSQLiteErr(err))
	}
	return nil
}

func (t *Tx) commit(ctx context.Context) error {
	tables := make([]string, 0, len(t.touched))
	for table := range t.touched {
		tables = append(tables, table)
	}
	// Invalidate before the commit lands so a read issued right after
	// WithTransaction returns cannot be served stale data.
	t.store.cache.InvalidateTables(tables...)

	if _, err := t.h.conn.ExecContext(ctx, "COMMIT"); err != nil {
		t.rollback()
		return fmt.Errorf("committing transaction: %w", mapSQLiteErr(err))
	}
	t.state = txCommitted
	return nil
}

// rollback drives the transaction to a terminal state. It runs on a
// fresh context so an expired caller context cannot leave the session
// with an open transaction.
func (t *Tx) rollback() {
	if t.state != txOpen {
		return
	}
	if _, err := t.h.conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		logger.Warn("transaction rollback failed: %v", err)
	}
	t.state = txRolledBack
	t.savepoints = nil
}
