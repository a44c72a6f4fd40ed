// Package redis implements store.Store on a remote Redis server via
// redis/go-redis/v9.
//
// The connection is established lazily on first use and reused for the
// process lifetime. A Store built without a URL (and without an injected
// client) is permanently not ready: callers see misses and no-op writes,
// never errors. This is how a deployment disables caching.
package redis

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/cachefan"
	"github.com/unkn0wn-root/cachefan/store"
)

// DefaultScanBatch bounds how many keys one SCAN round-trip may return.
// Keeps scan-delete memory flat and avoids long-held server-side work
// under large keyspaces.
const DefaultScanBatch = 100

// retryBudget is the number of extra attempts per operation after a
// transport error. Exhausting it degrades the result, it never propagates.
const retryBudget = 1

type Store struct {
	cfg Config
	log cachefan.Logger

	dialOnce sync.Once
	rdb      goredis.UniversalClient
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// URL in redis scheme form (redis://[user:pass@]host:port/db).
	// Empty URL with a nil Client disables the store.
	URL string

	// Client overrides URL with a pre-built client. The store never closes
	// an injected client.
	Client goredis.UniversalClient

	// ScanBatch is the COUNT hint per SCAN round-trip; 0 => DefaultScanBatch.
	ScanBatch int64

	Logger cachefan.Logger
}

// New builds the store without touching the network; the first operation
// dials. A malformed URL is discovered then, logged, and leaves the store
// permanently not ready.
func New(cfg Config) *Store {
	if cfg.ScanBatch <= 0 {
		cfg.ScanBatch = DefaultScanBatch
	}
	log := cfg.Logger
	if log == nil {
		log = cachefan.NopLogger{}
	}
	return &Store{cfg: cfg, log: log}
}

func (s *Store) client() goredis.UniversalClient {
	s.dialOnce.Do(func() {
		if s.cfg.Client != nil {
			s.rdb = s.cfg.Client
			return
		}
		if s.cfg.URL == "" {
			s.log.Info("no redis url configured; cache disabled", nil)
			return
		}
		opt, err := goredis.ParseURL(s.cfg.URL)
		if err != nil {
			s.log.Error("bad redis url; cache disabled", cachefan.Fields{"err": err})
			return
		}
		s.rdb = goredis.NewClient(opt)
	})
	return s.rdb
}

// retry runs op once and retries a single time on transport errors.
// goredis.Nil (a miss) is a result, not an error to retry.
func (s *Store) retry(ctx context.Context, name string, op func() error) error {
	err := op()
	if err == nil || err == goredis.Nil || ctx.Err() != nil {
		return err
	}
	for i := 0; i < retryBudget; i++ {
		s.log.Debug("redis op retrying", cachefan.Fields{"op": name, "err": err})
		if err = op(); err == nil || err == goredis.Nil {
			return err
		}
	}
	return err
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c := s.client()
	if c == nil {
		return nil, false, nil
	}
	var b []byte
	err := s.retry(ctx, "get", func() error {
		var err error
		b, err = c.Get(ctx, key).Bytes()
		return err
	})
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		s.log.Warn("redis get degraded to miss", cachefan.Fields{"key": key, "err": err})
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c := s.client()
	if c == nil {
		return false, nil
	}
	if ttl < 0 {
		ttl = 0 // non-positive TTL => no expiry
	}
	err := s.retry(ctx, "set", func() error {
		return c.Set(ctx, key, value, ttl).Err()
	})
	if err != nil {
		s.log.Warn("redis set dropped", cachefan.Fields{"key": key, "err": err})
		return false, nil
	}
	return true, nil
}

// ScanDelete enumerates matching keys with cursor-based SCAN MATCH/COUNT and
// deletes each page before fetching the next, so no round-trip ever touches
// more than ScanBatch keys. A mid-cursor failure abandons the remainder; the
// count of keys already deleted is still returned.
func (s *Store) ScanDelete(ctx context.Context, pattern string) (int, error) {
	c := s.client()
	if c == nil {
		return 0, nil
	}
	return scanDeleteAll(ctx, clientPager{c}, pattern, s.cfg.ScanBatch)
}

func (s *Store) Ready(ctx context.Context) bool {
	c := s.client()
	if c == nil {
		return false
	}
	return c.Ping(ctx).Err() == nil
}

// Close releases the client only when this store owns it (built from URL).
func (s *Store) Close(context.Context) error {
	if s.cfg.Client != nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// pager is the slice of the client the cursor loop needs; split out so the
// pagination contract is testable without a server.
type pager interface {
	scan(ctx context.Context, cursor uint64, match string, count int64) (keys []string, next uint64, err error)
	del(ctx context.Context, keys []string) (int64, error)
}

type clientPager struct{ c goredis.UniversalClient }

func (p clientPager) scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return p.c.Scan(ctx, cursor, match, count).Result()
}

func (p clientPager) del(ctx context.Context, keys []string) (int64, error) {
	return p.c.Del(ctx, keys...).Result()
}

func scanDeleteAll(ctx context.Context, pg pager, pattern string, batch int64) (int, error) {
	var (
		deleted int
		cursor  uint64
	)
	for {
		keys, next, err := pg.scan(ctx, cursor, pattern, batch)
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := pg.del(ctx, keys)
			deleted += int(n)
			if err != nil {
				return deleted, err
			}
		}
		cursor = next
		if cursor == 0 {
			// cursor back at the sentinel: full keyspace iterated
			return deleted, nil
		}
	}
}
