package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(t *testing.T, ttl time.Duration, opts ...Option) (*Cache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)}
	opts = append(opts, WithClock(clock.Now))
	return New(ttl, zerolog.Nop(), opts...), clock
}

func TestGet_FreshEntry(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("rankings:2025:dynasty", []byte(`{"rank":1}`))
	clock.Advance(30 * time.Minute)

	data, ok := c.Get("rankings:2025:dynasty")
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"rank":1}`), data)
}

func TestGet_ExpiredEntry(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("players", []byte("payload"))
	clock.Advance(time.Hour)

	_, ok := c.Get("players")
	assert.False(t, ok, "entry at exactly TTL age should be expired")
}

func TestGet_MissingKey(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	_, ok := c.Get("nope")
	assert.False(t, ok)
}

func TestGetStale_ReturnsExpiredEntry(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("rankings", []byte("old"))
	clock.Advance(48 * time.Hour)

	_, ok := c.Get("rankings")
	require.False(t, ok)

	data, ok := c.GetStale("rankings")
	assert.True(t, ok)
	assert.Equal(t, []byte("old"), data)
}

func TestSet_OverwriteRefreshesTimestamp(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("key", []byte("v1"))
	clock.Advance(50 * time.Minute)
	c.Set("key", []byte("v2"))
	clock.Advance(50 * time.Minute)

	data, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), data)
}

func TestPrune_RemovesOnlyExpired(t *testing.T) {
	c, clock := newTestCache(t, time.Hour)

	c.Set("old", []byte("a"))
	clock.Advance(2 * time.Hour)
	c.Set("fresh", []byte("b"))

	removed := c.Prune()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.GetStale("old")
	assert.False(t, ok)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.msgpack")

	c, clock := newTestCache(t, time.Hour, WithSnapshotPath(path))
	c.Set("rankings:2025", []byte(`[{"name":"Justin Jefferson"}]`))
	c.Set("players:all", []byte("roster"))
	require.NoError(t, c.Save())

	restored := New(time.Hour, zerolog.Nop(), WithClock(clock.Now), WithSnapshotPath(path))
	require.NoError(t, restored.Load())

	data, ok := restored.Get("rankings:2025")
	assert.True(t, ok)
	assert.Equal(t, []byte(`[{"name":"Justin Jefferson"}]`), data)
	assert.Equal(t, 2, restored.Len())
}

func TestLoad_MissingSnapshotIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never-written.msgpack")
	c := New(time.Hour, zerolog.Nop(), WithSnapshotPath(path))

	assert.NoError(t, c.Load())
	assert.Equal(t, 0, c.Len())
}

func TestSave_NoPathIsNoop(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	c.Set("key", []byte("v"))
	assert.NoError(t, c.Save())
}
