// Package cache keeps short-lived batches of raw rows per source key so the
// backing store is not hit on every request.
//
// Entries expire lazily: staleness is checked on read, there is no sweeper.
// A failed refresh never touches the stored entry, so a caller that wants
// stale-on-error semantics can fall back to Peek.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sw33tLie/roomdesk/pkg/records"
)

// DefaultTTL is how long a batch stays fresh unless configured otherwise.
const DefaultTTL = 5 * time.Minute

// ErrFetchFailed wraps a failed refresh of a cache entry.
var ErrFetchFailed = errors.New("cache: fetch failed")

// FetchFunc loads the rows for a key from the backing store.
type FetchFunc func(ctx context.Context) ([]records.RawRow, error)

type entry struct {
	rows      []records.RawRow
	expiresAt time.Time
}

// Cache holds at most one entry per source key. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   clockwork.Clock
	ttl     time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the clock used for expiry. Tests pass a fake clock.
func WithClock(c clockwork.Clock) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.clock = c
		}
	}
}

// New creates a cache whose Fetch and Refresh store entries for ttl. A
// non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		entries: make(map[string]entry),
		clock:   clockwork.NewRealClock(),
		ttl:     ttl,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the default time-to-live of the cache.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns a copy of the rows stored under key if the entry has not expired.
func (c *Cache) Get(key string) ([]records.RawRow, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock.Now().After(e.expiresAt) {
		return nil, false
	}
	return cloneRows(e.rows), true
}

// Peek returns the stored entry even if it has expired, together with its
// expiry time.
func (c *Cache) Peek(key string) ([]records.RawRow, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return cloneRows(e.rows), e.expiresAt, true
}

// Put replaces the entry for key. A non-positive ttl uses the cache default.
func (c *Cache) Put(key string, rows []records.RawRow, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	e := entry{
		rows:      cloneRows(rows),
		expiresAt: c.clock.Now().Add(ttl),
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Invalidate drops the entry for key. Dropping an absent key is a no-op.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch is a read-through Get: on a miss it calls fetch and stores the result.
// The bool reports whether the rows came from the cache.
func (c *Cache) Fetch(ctx context.Context, key string, fetch FetchFunc) ([]records.RawRow, bool, error) {
	if rows, ok := c.Get(key); ok {
		return rows, true, nil
	}
	rows, err := c.Refresh(ctx, key, fetch)
	return rows, false, err
}

// Refresh always calls fetch. On success the entry is replaced; on failure the
// previous entry, if any, is left as it was and ErrFetchFailed is returned
// wrapping the cause.
func (c *Cache) Refresh(ctx context.Context, key string, fetch FetchFunc) ([]records.RawRow, error) {
	rows, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, key, err)
	}
	c.Put(key, rows, c.ttl)
	return cloneRows(rows), nil
}

func cloneRows(rows []records.RawRow) []records.RawRow {
	if rows == nil {
		return nil
	}
	out := make([]records.RawRow, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
