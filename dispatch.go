package cachefan

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/cachefan/push"
)

type dispatcher struct {
	sessions Sessions
	sender   push.Sender
	subs     push.Source
	log      Logger
	hooks    Hooks
}

var _ Dispatcher = (*dispatcher)(nil)

func newDispatcher(opts Options) (*dispatcher, error) {
	if opts.Sessions == nil {
		return nil, fmt.Errorf("cachefan: sessions source is required")
	}

	return &dispatcher{
		sessions: opts.Sessions,
		sender:   opts.Push,
		subs:     opts.Subscriptions,
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:    coalesce[Hooks](opts.Hooks, NopHooks{}),
	}, nil
}

// Dispatch delivers ev over every channel available for the recipient.
//
// Live sessions and push endpoints are independent: a recipient that is both
// connected and push-registered receives the event twice, and the client UI
// deduplicates by the payload's category tag. Duplication is preferred over
// loss; a notification's value decays with delay.
func (d *dispatcher) Dispatch(ctx context.Context, ev Event) Outcome {
	var out Outcome

	raw, err := ev.marshal()
	if err != nil {
		// payload fields are plain strings, so this only fires on future
		// type changes; treated as a full delivery failure
		d.log.Error("event payload marshal failed", Fields{"recipient": ev.Recipient, "err": err})
		return out
	}

	for _, h := range d.sessions.ActiveFor(ev.Recipient) {
		if err := h.Send(raw); err != nil {
			out.LiveFailed++
			d.hooks.LiveSendFailed(ev.Recipient, err)
			d.log.Warn("live send failed; dropped", Fields{
				"recipient": ev.Recipient,
				"handle":    h.ID(),
				"err":       err,
			})
			continue
		}
		out.LiveSent++
	}

	d.dispatchPush(ctx, ev, raw, &out)

	d.log.Debug("dispatch attempted", Fields{
		"recipient": ev.Recipient,
		"type":      ev.Type,
		"liveSent":  out.LiveSent,
		"pushSent":  out.PushSent,
	})
	return out
}

func (d *dispatcher) dispatchPush(ctx context.Context, ev Event, raw []byte, out *Outcome) {
	if d.sender == nil || d.subs == nil {
		return
	}

	subs, err := d.subs.SubscriptionsFor(ctx, ev.Recipient)
	if err != nil {
		d.hooks.PushSourceError(ev.Recipient, err)
		d.log.Warn("push subscription lookup failed", Fields{"recipient": ev.Recipient, "err": err})
		return
	}

	for _, sub := range subs {
		if err := d.sender.Send(ctx, sub, raw); err != nil {
			// expired/invalid endpoints are the registration collaborator's
			// problem; never retried or cleaned up here
			out.PushFailed++
			d.hooks.PushSendFailed(ev.Recipient, err)
			d.log.Warn("push send failed; dropped", Fields{"recipient": ev.Recipient, "err": err})
			continue
		}
		out.PushSent++
	}
}
