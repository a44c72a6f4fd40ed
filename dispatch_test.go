package cachefan

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/unkn0wn-root/cachefan/push"
	"github.com/unkn0wn-root/cachefan/session"
)

func newTestDispatcher(t *testing.T, opts Options) Dispatcher {
	t.Helper()
	d, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func testEvent() Event {
	return Event{
		Recipient: "u1",
		Type:      "room-change",
		Title:     "Room updated",
		Body:      "Your room assignment changed",
		URL:       "/notifications",
		CreatedAt: time.Now(),
	}
}

// TestDispatchDuplication: a recipient with one live session and one push
// endpoint gets exactly one live send and exactly one push send.
func TestDispatchDuplication(t *testing.T) {
	reg := session.NewRegistry()
	h := &fakeHandle{id: "c1"}
	reg.Register("u1", h)

	sender := &fakeSender{}
	d := newTestDispatcher(t, Options{
		Sessions:      reg,
		Push:          sender,
		Subscriptions: staticSource(push.Subscription{Endpoint: "https://push.example/ep1"}),
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 1 || out.PushSent != 1 || out.LiveFailed != 0 || out.PushFailed != 0 {
		t.Fatalf("outcome = %+v, want 1 live + 1 push", out)
	}
	if h.sentCount() != 1 {
		t.Fatalf("handle got %d sends, want 1", h.sentCount())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sender got %d sends, want 1", len(sender.sent))
	}
	if !out.Delivered() {
		t.Fatalf("Delivered should be true")
	}
}

// TestDispatchFallbackToPush: zero live sessions, one push endpoint =>
// zero live sends and one push send.
func TestDispatchFallbackToPush(t *testing.T) {
	reg := session.NewRegistry()
	sender := &fakeSender{}
	d := newTestDispatcher(t, Options{
		Sessions:      reg,
		Push:          sender,
		Subscriptions: staticSource(push.Subscription{Endpoint: "https://push.example/ep1"}),
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 0 || out.PushSent != 1 {
		t.Fatalf("outcome = %+v, want 0 live / 1 push", out)
	}
}

// TestDispatchPayloadShape: both channels carry {title, body, url, type}.
func TestDispatchPayloadShape(t *testing.T) {
	reg := session.NewRegistry()
	h := &fakeHandle{id: "c1"}
	reg.Register("u1", h)

	d := newTestDispatcher(t, Options{Sessions: reg})
	d.Dispatch(context.Background(), testEvent())

	if h.sentCount() != 1 {
		t.Fatalf("expected one live payload")
	}
	var got map[string]string
	if err := json.Unmarshal(h.sent[0], &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	want := map[string]string{
		"title": "Room updated",
		"body":  "Your room assignment changed",
		"url":   "/notifications",
		"type":  "room-change",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("payload[%q] = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["recipient"]; ok {
		t.Fatalf("recipient identity must not leak into the payload")
	}
}

// TestDispatchMultiDevice: every live session and every endpoint gets the
// event once.
func TestDispatchMultiDevice(t *testing.T) {
	reg := session.NewRegistry()
	h1 := &fakeHandle{id: "c1"}
	h2 := &fakeHandle{id: "c2"}
	reg.Register("u1", h1)
	reg.Register("u1", h2)

	sender := &fakeSender{}
	d := newTestDispatcher(t, Options{
		Sessions: reg,
		Push:     sender,
		Subscriptions: staticSource(
			push.Subscription{Endpoint: "https://push.example/ep1"},
			push.Subscription{Endpoint: "https://push.example/ep2"},
		),
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 2 || out.PushSent != 2 {
		t.Fatalf("outcome = %+v, want 2 live / 2 push", out)
	}
	if h1.sentCount() != 1 || h2.sentCount() != 1 {
		t.Fatalf("each handle should get exactly one send")
	}
}

// TestDispatchWrongRecipient: sessions of other identities are untouched.
func TestDispatchWrongRecipient(t *testing.T) {
	reg := session.NewRegistry()
	other := &fakeHandle{id: "c9"}
	reg.Register("u2", other)

	d := newTestDispatcher(t, Options{Sessions: reg})
	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 0 || other.sentCount() != 0 {
		t.Fatalf("event leaked to wrong identity: %+v", out)
	}
}

// TestDispatchLiveFailureDropped: a stale handle is counted, hooked and
// dropped; the push branch still runs.
func TestDispatchLiveFailureDropped(t *testing.T) {
	reg := session.NewRegistry()
	stale := &fakeHandle{id: "c1", fail: errStale}
	live := &fakeHandle{id: "c2"}
	reg.Register("u1", stale)
	reg.Register("u1", live)

	hooks := &recHooks{}
	sender := &fakeSender{}
	d := newTestDispatcher(t, Options{
		Sessions:      reg,
		Push:          sender,
		Subscriptions: staticSource(push.Subscription{Endpoint: "https://push.example/ep1"}),
		Hooks:         hooks,
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 1 || out.LiveFailed != 1 {
		t.Fatalf("outcome = %+v, want 1 sent / 1 failed", out)
	}
	if out.PushSent != 1 {
		t.Fatalf("push branch skipped after live failure")
	}
	if hooks.liveFails != 1 {
		t.Fatalf("LiveSendFailed hook fired %d times", hooks.liveFails)
	}
}

// TestDispatchPushFailureDropped: a dead endpoint is counted and hooked,
// never retried.
func TestDispatchPushFailureDropped(t *testing.T) {
	reg := session.NewRegistry()
	hooks := &recHooks{}
	sender := &fakeSender{fail: errors.New("410 gone")}
	d := newTestDispatcher(t, Options{
		Sessions:      reg,
		Push:          sender,
		Subscriptions: staticSource(push.Subscription{Endpoint: "https://push.example/ep1"}),
		Hooks:         hooks,
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.PushSent != 0 || out.PushFailed != 1 {
		t.Fatalf("outcome = %+v, want 0 sent / 1 failed", out)
	}
	if hooks.pushFails != 1 {
		t.Fatalf("PushSendFailed hook fired %d times", hooks.pushFails)
	}
	if out.Delivered() {
		t.Fatalf("nothing was delivered")
	}
}

// TestDispatchSourceError: a broken subscription source skips the push
// branch without failing the live one.
func TestDispatchSourceError(t *testing.T) {
	reg := session.NewRegistry()
	h := &fakeHandle{id: "c1"}
	reg.Register("u1", h)

	hooks := &recHooks{}
	d := newTestDispatcher(t, Options{
		Sessions:      reg,
		Push:          &fakeSender{},
		Subscriptions: failingSource(errors.New("db down")),
		Hooks:         hooks,
	})

	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 1 || out.PushSent != 0 || out.PushFailed != 0 {
		t.Fatalf("outcome = %+v", out)
	}
	if hooks.srcErrs != 1 {
		t.Fatalf("PushSourceError hook fired %d times", hooks.srcErrs)
	}
}

// TestDispatchNoPushConfigured: without sender+source only the live branch
// runs.
func TestDispatchNoPushConfigured(t *testing.T) {
	reg := session.NewRegistry()
	h := &fakeHandle{id: "c1"}
	reg.Register("u1", h)

	d := newTestDispatcher(t, Options{Sessions: reg})
	out := d.Dispatch(context.Background(), testEvent())
	if out.LiveSent != 1 || out.PushSent != 0 {
		t.Fatalf("outcome = %+v", out)
	}
}

func TestNewRequiresSessions(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error without sessions source")
	}
}
