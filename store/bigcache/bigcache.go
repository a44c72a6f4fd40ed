// Package bigcache implements store.Store in-process on allegro/bigcache.
//
// It serves single-node deployments and tests where no Redis is available:
// same contract, no network, always ready. Pattern matching for ScanDelete
// is evaluated locally since there is no server-side MATCH.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/cachefan/internal/match"
	"github.com/unkn0wn-root/cachefan/store"
)

type Store struct {
	c *bc.BigCache
}

var _ store.Store = (*Store)(nil)

type Config struct {
	// LifeWindow is the global entry lifetime. BigCache has no per-entry
	// TTL, so Set's ttl argument is ignored in favor of this.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Store, error) {
	if cfg.LifeWindow <= 0 {
		cfg.LifeWindow = 10 * time.Minute
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := s.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	return b, err == nil, err
}

func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	err := s.c.Set(key, value)
	return err == nil, err
}

// ScanDelete walks the iterator collecting matching keys, then deletes them.
// Collect-then-delete keeps the iterator away from concurrent mutation.
func (s *Store) ScanDelete(_ context.Context, pattern string) (int, error) {
	var keys []string
	it := s.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			continue
		}
		if match.Match(pattern, e.Key()) {
			keys = append(keys, e.Key())
		}
	}

	deleted := 0
	for _, k := range keys {
		if err := s.c.Delete(k); err == nil {
			deleted++
		}
	}
	return deleted, nil
}

// Ready is always true: the store lives in-process.
func (s *Store) Ready(context.Context) bool { return true }

func (s *Store) Close(context.Context) error { return s.c.Close() }
