package cachefan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/unkn0wn-root/cachefan/internal/match"
	"github.com/unkn0wn-root/cachefan/push"
	"github.com/unkn0wn-root/cachefan/session"
	"github.com/unkn0wn-root/cachefan/store"
)

// memStore is an in-memory store.Store with glob scan-delete and injectable
// failure modes, shared by the invalidator and dispatcher tests.
type memStore struct {
	mu            sync.Mutex
	m             map[string][]byte
	notReady      bool
	scanErr       map[string]error  // pattern -> error returned after partial delete
	scanFailAfter int               // how many keys a failing pattern deletes first
}

var _ store.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{m: make(map[string][]byte), scanErr: make(map[string]error)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[key]
	return b, ok, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return true, nil
}

func (s *memStore) ScanDelete(_ context.Context, pattern string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k := range s.m {
		if match.Match(pattern, k) {
			keys = append(keys, k)
		}
	}

	if err, ok := s.scanErr[pattern]; ok {
		n := s.scanFailAfter
		if n > len(keys) {
			n = len(keys)
		}
		for _, k := range keys[:n] {
			delete(s.m, k)
		}
		return n, err
	}

	for _, k := range keys {
		delete(s.m, k)
	}
	return len(keys), nil
}

func (s *memStore) Ready(context.Context) bool { return !s.notReady }

func (s *memStore) Close(context.Context) error { return nil }

func (s *memStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// recHooks records hook invocations for assertions.
type recHooks struct {
	mu        sync.Mutex
	notReady  []string
	abandoned []string
	liveFails int
	pushFails int
	srcErrs   int
}

var _ Hooks = (*recHooks)(nil)

func (h *recHooks) StoreNotReady(op string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notReady = append(h.notReady, op)
}

func (h *recHooks) ScanAbandoned(pattern string, _ int, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.abandoned = append(h.abandoned, pattern)
}

func (h *recHooks) LiveSendFailed(string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveFails++
}

func (h *recHooks) PushSendFailed(string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushFails++
}

func (h *recHooks) PushSourceError(string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.srcErrs++
}

// fakeHandle is a live session that records what it was sent.
type fakeHandle struct {
	id   string
	mu   sync.Mutex
	sent [][]byte
	fail error
}

var _ session.Handle = (*fakeHandle)(nil)

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Send(p []byte) error {
	if h.fail != nil {
		return h.fail
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sent = append(h.sent, p)
	return nil
}

func (h *fakeHandle) Close() error { return nil }

func (h *fakeHandle) sentCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sent)
}

// fakeSender records push submissions.
type fakeSender struct {
	mu   sync.Mutex
	sent []push.Subscription
	fail error
}

var _ push.Sender = (*fakeSender)(nil)

func (s *fakeSender) Send(_ context.Context, sub push.Subscription, _ []byte) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sub)
	return nil
}

func staticSource(subs ...push.Subscription) push.Source {
	return push.SourceFunc(func(context.Context, string) ([]push.Subscription, error) {
		return subs, nil
	})
}

func failingSource(err error) push.Source {
	return push.SourceFunc(func(context.Context, string) ([]push.Subscription, error) {
		return nil, err
	})
}

var errStale = errors.New("stale handle")
