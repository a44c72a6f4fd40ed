// Package readcache is the typed read-side view over a store.Store: one
// namespace, one value type, one codec.
//
// Keys live under "<namespace>:" in the shared store. Write paths evict them
// through the cachefan Invalidator using patterns built with Pattern, so the
// namespace prefix stays in exactly one place.
//
// Every operation is best-effort. A miss, a cold store and a corrupt entry
// all look the same to the caller: (zero, false, nil), fall through to the
// authoritative source.
package readcache

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/cachefan"
	"github.com/unkn0wn-root/cachefan/codec"
	"github.com/unkn0wn-root/cachefan/internal/match"
	"github.com/unkn0wn-root/cachefan/store"
)

type Cache[V any] interface {
	// Get returns the cached value for key, or ok=false on miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)

	// Set caches value under key with ttl (0 => the cache's default).
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Evict removes one entry. For families of entries use the Invalidator
	// with Pattern.
	Evict(ctx context.Context, key string) error

	// Pattern namespaces a glob for use with the Invalidator, e.g.
	// c.Pattern("list:*").
	Pattern(glob string) string

	Enabled() bool
	Close(ctx context.Context) error
}

// Options tune the typed cache. Namespace, Store and Codec are required.
type Options[V any] struct {
	Namespace string
	Store     store.Store
	Codec     codec.Codec[V]

	Logger     cachefan.Logger // if nil, NopLogger is used
	DefaultTTL time.Duration   // 0 => 10m
	Disabled   bool            // default false (enabled)
}

func New[V any](opts Options[V]) (Cache[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("readcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("readcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("readcache: namespace is required")
	}

	c := &cache[V]{
		ns:      opts.Namespace,
		store:   opts.Store,
		codec:   opts.Codec,
		enabled: !opts.Disabled,
	}
	c.log = opts.Logger
	if c.log == nil {
		c.log = cachefan.NopLogger{}
	}
	c.ttl = opts.DefaultTTL
	if c.ttl == 0 {
		c.ttl = 10 * time.Minute
	}
	return c, nil
}

type cache[V any] struct {
	ns      string
	store   store.Store
	codec   codec.Codec[V]
	log     cachefan.Logger
	ttl     time.Duration
	enabled bool
}

func (c *cache[V]) Enabled() bool { return c.enabled }

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k := c.key(key)
	raw, ok, err := c.store.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := c.codec.Decode(raw)
	if err != nil {
		// self-heal: a corrupt entry is worse than a miss
		_, _ = c.store.ScanDelete(ctx, match.Escape(k))
		c.log.Warn("corrupt cache entry dropped", cachefan.Fields{"key": key, "err": err})
		return zero, false, nil
	}
	return v, true, nil
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}
	raw, err := c.codec.Encode(value)
	if err != nil {
		return err
	}
	ok, err := c.store.Set(ctx, c.key(key), raw, ttl)
	if err != nil {
		return err
	}
	if !ok {
		c.log.Debug("cache set rejected by store", cachefan.Fields{"key": key})
	}
	return nil
}

func (c *cache[V]) Evict(ctx context.Context, key string) error {
	if !c.enabled {
		return nil
	}
	_, err := c.store.ScanDelete(ctx, match.Escape(c.key(key)))
	return err
}

func (c *cache[V]) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func (c *cache[V]) key(userKey string) string {
	// isolate by namespace
	return c.ns + ":" + userKey
}

func (c *cache[V]) Pattern(glob string) string {
	return c.ns + ":" + glob
}
