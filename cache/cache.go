// Package cache provides an optional memoizing wrapper around single-object
// field reads.
//
// The cache key is (object id, field id) only — deliberately excluding the
// handler instance. A handler is permanently bound to one dataset and object
// ids are dataset-scoped, so keying on the instance would fragment the cache
// without benefit.
//
// Caching is disabled by default: New with capacity 0 returns nil, and a nil
// *Cache is safe to pass around (GetOrLoad falls through to the loader).
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fieldline/simio/field"
	"github.com/fieldline/simio/internal/options"
)

// Key identifies one cached read.
type Key struct {
	ObjectID int64
	FieldID  uint64
}

// Policy is a pluggable bounded eviction policy.
//
// Implementations decide which entries to discard when the capacity is
// reached. The default policy is least-recently-used.
type Policy interface {
	// Add stores a value, evicting older entries if needed.
	Add(k Key, v *field.Array)

	// Get returns the cached value for k, if present.
	Get(k Key) (*field.Array, bool)

	// Purge drops every entry.
	Purge()

	// Len returns the number of cached entries.
	Len() int
}

// lruPolicy adapts hashicorp/golang-lru to the Policy interface.
type lruPolicy struct {
	inner *lru.Cache[Key, *field.Array]
}

var _ Policy = (*lruPolicy)(nil)

// NewLRUPolicy returns a least-recently-used policy with the given capacity.
func NewLRUPolicy(capacity int) (Policy, error) {
	inner, err := lru.New[Key, *field.Array](capacity)
	if err != nil {
		return nil, err
	}

	return &lruPolicy{inner: inner}, nil
}

func (p *lruPolicy) Add(k Key, v *field.Array) { p.inner.Add(k, v) }

func (p *lruPolicy) Get(k Key) (*field.Array, bool) { return p.inner.Get(k) }

func (p *lruPolicy) Purge() { p.inner.Purge() }

func (p *lruPolicy) Len() int { return p.inner.Len() }

// Cache memoizes single-object field reads behind a bounded Policy.
//
// Note: Cache is NOT safe for concurrent use; callers needing parallelism
// must provide their own locking, matching the handler's overall model.
type Cache struct {
	policy Policy

	hits   int64
	misses int64
}

// Option configures a Cache.
type Option = options.Option[*Cache]

// WithPolicy replaces the default LRU policy.
func WithPolicy(p Policy) Option {
	return options.NoError(func(c *Cache) {
		c.policy = p
	})
}

// New creates a cache with the given capacity. Capacity 0 (or less)
// disables caching and returns nil; a nil Cache is valid and inert.
func New(capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		return nil, nil
	}

	c := &Cache{}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	if c.policy == nil {
		policy, err := NewLRUPolicy(capacity)
		if err != nil {
			return nil, err
		}
		c.policy = policy
	}

	return c, nil
}

// GetOrLoad returns the cached value for k, calling load on a miss and
// caching its result. Load errors are returned unchanged and nothing is
// cached for the key. A nil receiver always calls load.
func (c *Cache) GetOrLoad(k Key, load func() (*field.Array, error)) (*field.Array, error) {
	if c == nil {
		return load()
	}

	if v, ok := c.policy.Get(k); ok {
		c.hits++
		return v, nil
	}

	c.misses++

	v, err := load()
	if err != nil {
		return nil, err
	}
	c.policy.Add(k, v)

	return v, nil
}

// Hits returns the number of cache hits so far.
func (c *Cache) Hits() int64 {
	if c == nil {
		return 0
	}

	return c.hits
}

// Misses returns the number of cache misses so far.
func (c *Cache) Misses() int64 {
	if c == nil {
		return 0
	}

	return c.misses
}

// Purge drops every cached entry. Safe on a nil receiver.
func (c *Cache) Purge() {
	if c != nil {
		c.policy.Purge()
	}
}

// Len returns the number of cached entries. Zero on a nil receiver.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	return c.policy.Len()
}
