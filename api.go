package cachefan

import (
	"context"

	"github.com/unkn0wn-root/cachefan/push"
	"github.com/unkn0wn-root/cachefan/session"
	"github.com/unkn0wn-root/cachefan/store"
)

// Sessions yields the live connection handles for an identity.
// *session.Registry satisfies it.
type Sessions interface {
	ActiveFor(identity string) []session.Handle
}

// Dispatcher fans one Event out to every live session of the recipient and
// to every registered push endpoint. Both branches are fire-and-forget:
// no acknowledgment is awaited and nothing is retried.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event) Outcome
}

// Options tune the Dispatcher. Only Sessions is required; without a push
// Sender and Source the push branch is disabled.
type Options struct {
	// Required
	Sessions Sessions

	// Push branch. Both must be set for background delivery to happen.
	Push          push.Sender
	Subscriptions push.Source

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

func New(opts Options) (Dispatcher, error) {
	return newDispatcher(opts)
}

// InvalidatorOptions tune the Invalidator. Only Store is required.
type InvalidatorOptions struct {
	// Required
	Store store.Store

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// NewInvalidator builds the pattern invalidator used by write paths after
// a mutation commits.
func NewInvalidator(opts InvalidatorOptions) (*Invalidator, error) {
	return newInvalidator(opts)
}
