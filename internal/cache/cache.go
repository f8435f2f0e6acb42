// Package cache provides a time-boxed response cache for external API data.
//
// The cache is an explicit object with an injected clock - never ambient
// global state - so TTL behavior is testable and each owner controls its own
// lifetime. Entries are opaque byte payloads keyed by request parameters.
// Snapshots can be persisted with msgpack so a warm cache survives restarts.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// Clock returns the current time. Injected for tests.
type Clock func() time.Time

// Entry is one cached payload with its storage timestamp.
type Entry struct {
	Data     []byte    `msgpack:"data"`
	StoredAt time.Time `msgpack:"stored_at"`
}

// Cache is a thread-safe TTL cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	clock   Clock
	path    string // snapshot file; empty disables persistence
	log     zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock (for tests).
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithSnapshotPath enables msgpack snapshot persistence at the given path.
func WithSnapshotPath(path string) Option {
	return func(c *Cache) { c.path = path }
}

// New creates a cache with the given TTL.
func New(ttl time.Duration, log zerolog.Logger, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		clock:   time.Now,
		log:     log.With().Str("component", "cache").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached payload for key if it is still fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock().Sub(entry.StoredAt) >= c.ttl {
		return nil, false
	}
	return entry.Data, true
}

// GetStale returns the cached payload for key even when expired. Used as a
// fallback when a refresh fetch fails: stale rankings beat no rankings.
func (c *Cache) GetStale(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Data, true
}

// Set stores a payload under key, stamped with the current clock time.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: data, StoredAt: c.clock()}
	c.mu.Unlock()
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Prune removes expired entries.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.clock()
	for key, entry := range c.entries {
		if now.Sub(entry.StoredAt) >= c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// snapshot is the msgpack persistence envelope.
type snapshot struct {
	SavedAt time.Time        `msgpack:"saved_at"`
	Entries map[string]Entry `msgpack:"entries"`
}

// Save writes the cache contents to the snapshot path. Writes go through a
// temp file and rename so a crash never leaves a torn snapshot.
func (c *Cache) Save() error {
	if c.path == "" {
		return nil
	}

	c.mu.RLock()
	snap := snapshot{SavedAt: c.clock(), Entries: make(map[string]Entry, len(c.entries))}
	for k, v := range c.entries {
		snap.Entries[k] = v
	}
	c.mu.RUnlock()

	data, err := msgpack.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal cache snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache snapshot: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache snapshot: %w", err)
	}

	c.log.Debug().Int("entries", len(snap.Entries)).Str("path", c.path).Msg("Cache snapshot saved")
	return nil
}

// Load restores cache contents from the snapshot path. A missing snapshot
// is not an error; a corrupt one is discarded.
func (c *Cache) Load() error {
	if c.path == "" {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache snapshot: %w", err)
	}

	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		c.log.Warn().Err(err).Msg("Discarding corrupt cache snapshot")
		return nil
	}

	c.mu.Lock()
	for k, v := range snap.Entries {
		c.entries[k] = v
	}
	c.mu.Unlock()

	c.log.Info().Int("entries", len(snap.Entries)).Msg("Cache snapshot restored")
	return nil
}
