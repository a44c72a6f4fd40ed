// Package push is the boundary to background (Web Push) delivery.
//
// The core only consumes subscriptions as delivery targets: registration,
// refresh and cleanup of endpoints belong to the external collaborator that
// issued them. Display and click-through derivation mirror what the client's
// background agent does with a delivered payload, so both sides of the
// contract live in one place and stay testable.
package push

import "context"

// Subscription is a previously registered browser push endpoint plus its
// encryption keys. Opaque to the core and never mutated here.
type Subscription struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// Payload is the wire shape shared by the live and push channels.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Sender submits one payload to one endpoint. A failure is final from the
// core's point of view: no retry, no endpoint cleanup.
type Sender interface {
	Send(ctx context.Context, sub Subscription, payload []byte) error
}

// Source enumerates the registered endpoints for an identity. Owned by the
// registration collaborator; the dispatcher treats it as read-only.
type Source interface {
	SubscriptionsFor(ctx context.Context, identity string) ([]Subscription, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, identity string) ([]Subscription, error)

func (f SourceFunc) SubscriptionsFor(ctx context.Context, identity string) ([]Subscription, error) {
	return f(ctx, identity)
}
