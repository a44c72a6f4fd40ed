// Package session tracks live client connections per logical identity.
//
// The registry is the only concurrently-mutated shared state in the
// subsystem: connection lifecycles register and unregister handles from
// independent goroutines while dispatchers read. Nothing here is persisted;
// after a process restart the registry is empty and reconnecting clients
// re-register.
package session

import (
	"sync"
)

// Handle is one live bidirectional connection. Implementations must make
// Send safe for concurrent use and non-blocking (buffer or fail fast);
// the dispatcher never awaits acknowledgment.
type Handle interface {
	// ID identifies the connection, not the user.
	ID() string

	// Send queues one payload for delivery. An error means the handle is
	// stale or the client too slow; callers drop the payload either way.
	Send(payload []byte) error

	// Close tears the connection down.
	Close() error
}

// Registry maps identities to their active handles. Multiple concurrent
// connections per identity are legal (multi-tab, multi-device); each is
// tracked independently.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[Handle]struct{}
	owner map[Handle]string
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]map[Handle]struct{}),
		owner: make(map[Handle]string),
	}
}

// Register adds a handle for identity. Re-registering the same handle moves
// it to the new identity.
func (r *Registry) Register(identity string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.owner[h]; ok && prev != identity {
		r.dropLocked(prev, h)
	}
	set := r.conns[identity]
	if set == nil {
		set = make(map[Handle]struct{})
		r.conns[identity] = set
	}
	set[h] = struct{}{}
	r.owner[h] = identity
}

// Unregister removes a handle wherever it is registered. Unknown handles
// are a no-op, so disconnect paths may call it unconditionally.
func (r *Registry) Unregister(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.owner[h]
	if !ok {
		return
	}
	r.dropLocked(identity, h)
	delete(r.owner, h)
}

func (r *Registry) dropLocked(identity string, h Handle) {
	if set, ok := r.conns[identity]; ok {
		delete(set, h)
		if len(set) == 0 {
			delete(r.conns, identity)
		}
	}
}

// ActiveFor returns a snapshot of the handles registered for identity.
// The slice is owned by the caller; mutating it does not touch the registry.
func (r *Registry) ActiveFor(identity string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[identity]
	if len(set) == 0 {
		return nil
	}
	out := make([]Handle, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	return out
}

// Connections returns the total number of registered handles.
func (r *Registry) Connections() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owner)
}

// Close unregisters and closes every handle. Used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	handles := make([]Handle, 0, len(r.owner))
	for h := range r.owner {
		handles = append(handles, h)
	}
	r.conns = make(map[string]map[Handle]struct{})
	r.owner = make(map[Handle]string)
	r.mu.Unlock()

	for _, h := range handles {
		_ = h.Close()
	}
}
