package cachefan

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/cachefan/store"
)

// Invalidator evicts cached reads by glob pattern after a write commits.
//
// Callers pass the minimal pattern set covering every cache entry whose
// value could depend on the mutated entity - the specific-item key plus any
// list/aggregate patterns that could include it. Over-invalidation is
// acceptable; under-invalidation is not.
type Invalidator struct {
	store store.Store
	log   Logger
	hooks Hooks
}

func newInvalidator(opts InvalidatorOptions) (*Invalidator, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("cachefan: store is required")
	}
	return &Invalidator{
		store: opts.Store,
		log:   coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

// Invalidate scan-deletes every key matching each pattern. It must be called
// only after the underlying write is durably committed, never before.
//
// The call is best-effort end to end: a cold store degrades it to a no-op
// (reads bypass the cache until it recovers), a mid-cursor failure abandons
// the remaining batches for that pattern, and a pattern matching zero keys
// is not an error. The result is advisory; acknowledge and discard it.
func (iv *Invalidator) Invalidate(ctx context.Context, patterns ...string) InvalidationResult {
	var res InvalidationResult
	if len(patterns) == 0 {
		return res
	}

	if !iv.store.Ready(ctx) {
		iv.hooks.StoreNotReady("invalidate")
		iv.log.Debug("store not ready; invalidation skipped", Fields{"patterns": len(patterns)})
		res.Skipped = true
		return res
	}

	for _, p := range patterns {
		n, err := iv.store.ScanDelete(ctx, p)
		res.Deleted += n
		if err != nil {
			// a later write to the same entity re-triggers invalidation,
			// so abandoning here cannot strand a stale key forever
			res.Failed = append(res.Failed, &PatternError{Pattern: p, Deleted: n, Err: err})
			iv.hooks.ScanAbandoned(p, n, err)
			iv.log.Warn("scan-delete abandoned", Fields{"pattern": p, "deleted": n, "err": err})
		}
	}

	iv.log.Debug("invalidation pass complete", Fields{
		"patterns": len(patterns),
		"deleted":  res.Deleted,
		"failed":   len(res.Failed),
	})
	return res
}
