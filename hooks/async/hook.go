// Package asynchook decouples hook consumers from the dispatch/invalidate
// hot paths: events are queued to a small worker pool and dropped when the
// queue is full, so a slow metrics sink can never stall a write path.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{LiveFailEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	disp, _ := cachefan.New(cachefan.Options{
//	    Sessions: registry,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/cachefan"
)

type Hooks struct {
	inner cachefan.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ cachefan.Hooks = (*Hooks)(nil)

func New(inner cachefan.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Callers must stop emitting
// events before closing.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) StoreNotReady(op string) { h.try(func() { h.inner.StoreNotReady(op) }) }
func (h *Hooks) ScanAbandoned(p string, n int, err error) {
	h.try(func() { h.inner.ScanAbandoned(p, n, err) })
}
func (h *Hooks) LiveSendFailed(r string, err error) {
	h.try(func() { h.inner.LiveSendFailed(r, err) })
}
func (h *Hooks) PushSendFailed(r string, err error) {
	h.try(func() { h.inner.PushSendFailed(r, err) })
}
func (h *Hooks) PushSourceError(r string, err error) {
	h.try(func() { h.inner.PushSourceError(r, err) })
}
