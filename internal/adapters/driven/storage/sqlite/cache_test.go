package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprint_NormalizesWhitespace(t *testing.T) {
	a := Fingerprint("SELECT id FROM conversations WHERE id = ?", 1)
	b := Fingerprint("SELECT  id\n\tFROM conversations\n\tWHERE id = ?", 1)
	assert.Equal(t, a, b)
}

func TestFingerprint_DistinguishesArgs(t *testing.T) {
	a := Fingerprint("SELECT id FROM conversations WHERE id = ?", 1)
	b := Fingerprint("SELECT id FROM conversations WHERE id = ?", 2)
	assert.NotEqual(t, a, b)

	c := Fingerprint("SELECT id FROM messages WHERE id = ?", 1)
	assert.NotEqual(t, a, c)
}

func TestCache_PutGet(t *testing.T) {
	c := NewCache(time.Minute)

	key := Fingerprint("SELECT 1")
	c.Put(key, []byte(`[1]`), []string{"conversations"}, TTLDefault)

	payload, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte(`[1]`), payload)

	_, ok = c.Get(Fingerprint("SELECT 2"))
	assert.False(t, ok)
}

func TestCache_ExpiresLazily(t *testing.T) {
	c := NewCache(5 * time.Millisecond)

	key := Fingerprint("SELECT 1")
	c.Put(key, []byte(`[1]`), nil, TTLDefault)

	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get(key)
	assert.False(t, ok)

	entries, expired := c.Stats()
	assert.Equal(t, 0, entries)
	assert.Equal(t, 1, expired)
}

func TestCache_TTLClassOverridesDefault(t *testing.T) {
	// A short default must not shorten the lifetime of static entries.
	c := NewCache(5 * time.Millisecond)

	key := Fingerprint("SELECT name FROM personas")
	c.Put(key, []byte(`["sage"]`), []string{"personas"}, TTLStatic)

	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestCache_InvalidateTables(t *testing.T) {
	c := NewCache(time.Minute)

	convKey := Fingerprint("SELECT * FROM conversations")
	msgKey := Fingerprint("SELECT * FROM messages")
	joinKey := Fingerprint("SELECT * FROM conversations JOIN messages")
	c.Put(convKey, []byte(`[]`), []string{"conversations"}, TTLDefault)
	c.Put(msgKey, []byte(`[]`), []string{"messages"}, TTLVolatile)
	c.Put(joinKey, []byte(`[]`), []string{"conversations", "messages"}, TTLDefault)

	c.InvalidateTables("messages")

	_, ok := c.Get(convKey)
	assert.True(t, ok)
	_, ok = c.Get(msgKey)
	assert.False(t, ok)
	_, ok = c.Get(joinKey)
	assert.False(t, ok)
}

func TestCache_InvalidateNothing(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put(Fingerprint("SELECT 1"), []byte(`[1]`), []string{"projects"}, TTLDefault)

	c.InvalidateTables()
	c.InvalidateTables("personas")

	entries, _ := c.Stats()
	assert.Equal(t, 1, entries)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(time.Minute)
	c.Put(Fingerprint("SELECT 1"), []byte(`[1]`), nil, TTLDefault)
	c.Put(Fingerprint("SELECT 2"), []byte(`[2]`), nil, TTLStatic)

	c.Clear()

	entries, _ := c.Stats()
	assert.Equal(t, 0, entries)
}
