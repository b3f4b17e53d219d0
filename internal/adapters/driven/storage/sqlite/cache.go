package sqlite

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TTLClass selects how long a cached result stays fresh.
type TTLClass int

const (
	// TTLDefault uses the cache's configured default lifetime.
	TTLDefault TTLClass = iota

	// TTLVolatile is for results that change with nearly every write,
	// such as message listings of an active conversation.
	TTLVolatile

	// TTLStatic is for rarely-changing reference data such as personas
	// and provider configurations.
	TTLStatic
)

const (
	volatileTTL = 30 * time.Second
	staticTTL   = time.Hour
)

type cacheEntry struct {
	payload   []byte
	tables    []string
	expiresAt time.Time
}

// Cache is a TTL-bounded cache of serialized query results, keyed by a
// fingerprint of the statement and its arguments. Entries are tagged
// with the tables they derive from so writes can invalidate them.
// Expired entries are collected lazily on access.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	defaultTTL time.Duration
	expired    int
}

// NewCache creates a cache whose TTLDefault entries live for defaultTTL.
func NewCache(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]cacheEntry),
		defaultTTL: defaultTTL,
	}
}

// Fingerprint derives a stable cache key from a statement and its
// arguments. Whitespace differences in the statement do not change the
// key.
func Fingerprint(query string, args ...any) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(strings.Fields(query), " ")))
	for _, a := range args {
		fmt.Fprintf(h, "|%v", a)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) ttl(class TTLClass) time.Duration {
	switch class {
	case TTLVolatile:
		return volatileTTL
	case TTLStatic:
		return staticTTL
	default:
		return c.defaultTTL
	}
}

// Get returns the cached payload for key, or false when absent or
// expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		c.expired++
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under key, tagged with the tables it derives from.
func (c *Cache) Put(key string, payload []byte, tables []string, class TTLClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		payload:   payload,
		tables:    append([]string(nil), tables...),
		expiresAt: time.Now().Add(c.ttl(class)),
	}
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateTables drops every entry derived from any of the given
// tables.
func (c *Cache) InvalidateTables(tables ...string) {
	if len(tables) == 0 {
		return
	}
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		for _, t := range e.tables {
			if _, hit := set[t]; hit {
				delete(c.entries, key)
				break
			}
		}
	}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Stats reports the live entry count and how many entries have been
// collected after expiring.
func (c *Cache) Stats() (entries, expired int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), c.expired
}
