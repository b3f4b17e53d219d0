package sqlite

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/logger"
)

// FlushPolicy controls when a BatchWriter writes buffered rows.
type FlushPolicy int

const (
	// FlushBySize flushes automatically whenever the buffer reaches the
	// configured size.
	FlushBySize FlushPolicy = iota

	// FlushAtBoundary only flushes when the caller says so, letting the
	// caller align flushes with logical boundaries such as the end of
	// an AI response.
	FlushAtBoundary
)

// BatchRow is one buffered write.
type BatchRow struct {
	// Table the statement writes to, used for cache invalidation.
	Table string

	Query string
	Args  []any
}

// BatchWriter buffers writes and applies them in a single transaction.
// A failed flush keeps the buffer intact so the caller can retry.
type BatchWriter struct {
	store  *Store
	size   int
	policy FlushPolicy

	mu   sync.Mutex
	rows []BatchRow
}

// NewBatchWriter creates a writer that buffers up to size rows.
func (s *Store) NewBatchWriter(size int, policy FlushPolicy) (*BatchWriter, error) {
	if size < 1 {
		return nil, fmt.Errorf("batch size must be at least 1: %w", domain.ErrInvalidInput)
	}
	return &BatchWriter{store: s, size: size, policy: policy}, nil
}

// Add buffers one row. Under FlushBySize, reaching the configured size
// triggers a flush; the returned count is the number of rows written by
// that flush, zero otherwise.
func (b *BatchWriter) Add(ctx context.Context, row BatchRow) (int, error) {
	b.mu.Lock()
	b.rows = append(b.rows, row)
	full := len(b.rows) >= b.size
	b.mu.Unlock()

	if b.policy == FlushBySize && full {
		return b.Flush(ctx)
	}
	return 0, nil
}

// Flush writes all buffered rows in one transaction and returns the
// number written. Each flush takes ownership of the rows buffered at
// that moment, so concurrent flushes never write a row twice. On
// failure the rows return to the front of the buffer and the count
// reports how many the attempt covered.
func (b *BatchWriter) Flush(ctx context.Context) (int, error) {
	b.mu.Lock()
	pending := b.rows
	b.rows = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return 0, nil
	}

	err := b.store.WithTransaction(ctx, func(tx *Tx) error {
		for _, row := range pending {
			if _, err := tx.Exec(ctx, row.Query, row.Args...); err != nil {
				return fmt.Errorf("batch row on %s: %w", row.Table, err)
			}
			tx.Touch(row.Table)
		}
		return nil
	})
	if err != nil {
		b.mu.Lock()
		b.rows = append(pending, b.rows...)
		b.mu.Unlock()
		return len(pending), err
	}

	logger.Debug("batch flushed %d rows", len(pending))
	return len(pending), nil
}

// Len returns the number of buffered rows.
func (b *BatchWriter) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}
