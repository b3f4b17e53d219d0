package sqlite

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lorevault/internal/logger"
)

// QueryMetric is one recorded statement execution.
type QueryMetric struct {
	Query    string
	Duration time.Duration
	Rows     int64
	At       time.Time
}

// Monitor keeps a bounded history of query executions in a ring
// buffer. When full, the oldest entry is overwritten.
type Monitor struct {
	mu      sync.Mutex
	ring    []QueryMetric
	head    int
	count   int
	slowCut time.Duration
}

// NewMonitor creates a monitor holding at most capacity metrics.
// Queries at or above slowThreshold are logged; zero disables that.
func NewMonitor(capacity int, slowThreshold time.Duration) *Monitor {
	if capacity < 1 {
		capacity = 1
	}
	return &Monitor{
		ring:    make([]QueryMetric, capacity),
		slowCut: slowThreshold,
	}
}

// Record adds one execution to the history.
func (m *Monitor) Record(query string, d time.Duration, rows int64) {
	m.mu.Lock()
	m.ring[m.head] = QueryMetric{Query: query, Duration: d, Rows: rows, At: time.Now()}
	m.head = (m.head + 1) % len(m.ring)
	if m.count < len(m.ring) {
		m.count++
	}
	slow := m.slowCut > 0 && d >= m.slowCut
	m.mu.Unlock()

	if slow {
		logger.Warn("slow query (%s, %d rows): %s", d.Round(time.Microsecond), rows, query)
	}
}

// AverageTime returns the mean duration of recorded queries whose text
// contains pattern. The second return is false when nothing matched.
func (m *Monitor) AverageTime(pattern string) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total time.Duration
	var n int
	m.each(func(qm QueryMetric) {
		if strings.Contains(qm.Query, pattern) {
			total += qm.Duration
			n++
		}
	})
	if n == 0 {
		return 0, false
	}
	return total / time.Duration(n), true
}

// Slowest returns up to n recorded queries ordered by descending
// duration. A non-positive n yields nil.
func (m *Monitor) Slowest(n int) []QueryMetric {
	if n < 1 {
		return nil
	}
	snap := m.Snapshot()
	sort.Slice(snap, func(i, j int) bool { return snap[i].Duration > snap[j].Duration })
	if n < len(snap) {
		snap = snap[:n]
	}
	return snap
}

// Snapshot returns a copy of the history, oldest first.
func (m *Monitor) Snapshot() []QueryMetric {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]QueryMetric, 0, m.count)
	m.each(func(qm QueryMetric) { out = append(out, qm) })
	return out
}

// Len returns the number of recorded metrics.
func (m *Monitor) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Clear discards all recorded metrics.
func (m *Monitor) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = 0
	m.count = 0
}

// each visits recorded metrics oldest first. Callers hold m.mu.
func (m *Monitor) each(fn func(QueryMetric)) {
	start := m.head - m.count
	if start < 0 {
		start += len(m.ring)
	}
	for i := 0; i < m.count; i++ {
		fn(m.ring[(start+i)%len(m.ring)])
	}
}
