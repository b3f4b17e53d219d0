package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/lorevault/internal/core/domain"
	"github.com/custodia-labs/lorevault/internal/logger"
)

// handle is a pooled database session. It pins one physical connection
// so transaction state and session settings survive across statements.
type handle struct {
	conn     *sql.Conn
	lastUsed time.Time
}

// pool manages a bounded set of database sessions. A buffered channel
// of tokens caps concurrency; idle sessions are kept in a LIFO stack so
// the warmest session is reused first.
type pool struct {
	db  *sql.DB
	cfg PoolConfig

	tokens chan struct{}

	mu     sync.Mutex
	idle   []*handle
	leased int
	closed bool
}

// newPool creates a pool over db and pre-warms cfg.MinIdle sessions.
func newPool(ctx context.Context, db *sql.DB, cfg PoolConfig) (*pool, error) {
	p := &pool{
		db:     db,
		cfg:    cfg,
		tokens: make(chan struct{}, cfg.MaxSize),
	}
	for i := 0; i < cfg.MaxSize; i++ {
		p.tokens <- struct{}{}
	}

	for i := 0; i < cfg.MinIdle; i++ {
		h, err := p.dial(ctx)
		if err != nil {
			p.close()
			return nil, fmt.Errorf("warming pool: %w", err)
		}
		p.idle = append(p.idle, h)
	}
	logger.Debug("pool ready: max=%d warm=%d", cfg.MaxSize, cfg.MinIdle)
	return p, nil
}

func (p *pool) dial(ctx context.Context) (*handle, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, mapSQLiteErr(err)
	}
	return &handle{conn: conn, lastUsed: time.Now()}, nil
}

// acquire returns a session, waiting up to cfg.AcquireTimeout for one
// to free up. A saturated pool fails with ErrPoolExhausted; a canceled
// context fails with ErrAcquireTimeout.
func (p *pool) acquire(ctx context.Context) (*handle, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, domain.ErrPoolClosed
	}
	p.mu.Unlock()

	start := time.Now()
	timer := time.NewTimer(p.cfg.AcquireTimeout)
	defer timer.Stop()

	select {
	case <-p.tokens:
	case <-timer.C:
		return nil, fmt.Errorf("no connection available after %s (max %d): %w",
			time.Since(start).Round(time.Millisecond), p.cfg.MaxSize, domain.ErrPoolExhausted)
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire canceled after %s: %w",
			time.Since(start).Round(time.Millisecond), domain.ErrAcquireTimeout)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.tokens <- struct{}{}
		return nil, domain.ErrPoolClosed
	}
	var h *handle
	if n := len(p.idle); n > 0 {
		h = p.idle[n-1]
		p.idle = p.idle[:n-1]
	}
	p.leased++
	p.mu.Unlock()

	if h != nil {
		// A session may have died while idle; verify before reuse.
		if err := h.conn.PingContext(ctx); err != nil {
			logger.Debug("discarding dead pooled connection: %v", err)
			h.conn.Close()
			h = nil
		}
	}
	if h == nil {
		nh, err := p.dial(ctx)
		if err != nil {
			p.mu.Lock()
			p.leased--
			p.mu.Unlock()
			p.tokens <- struct{}{}
			return nil, err
		}
		h = nh
	}
	return h, nil
}

// release returns a session to the idle stack and trims sessions that
// have sat idle beyond cfg.IdleTimeout, keeping cfg.MinIdle warm.
func (p *pool) release(h *handle) {
	h.lastUsed = time.Now()

	p.mu.Lock()
	if p.closed {
		p.leased--
		p.mu.Unlock()
		h.conn.Close()
		return
	}
	p.idle = append(p.idle, h)
	p.leased--

	var stale []*handle
	if p.cfg.IdleTimeout > 0 {
		cutoff := time.Now().Add(-p.cfg.IdleTimeout)
		for len(p.idle) > p.cfg.MinIdle && p.idle[0].lastUsed.Before(cutoff) {
			stale = append(stale, p.idle[0])
			p.idle = p.idle[1:]
		}
	}
	p.mu.Unlock()

	for _, s := range stale {
		s.conn.Close()
	}
	p.tokens <- struct{}{}
}

// stats reports current occupancy.
func (p *pool) stats() (leased, idle, max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leased, len(p.idle), p.cfg.MaxSize
}

// close shuts the pool down and closes idle sessions. Leased sessions
// are closed as they are released.
func (p *pool) close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, h := range idle {
		if err := h.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
