package push

import (
	"context"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// VAPID identifies this server to push services.
type VAPID struct {
	PublicKey  string
	PrivateKey string
	// Subscriber is the contact URI (mailto: or https:) push services may
	// use to reach the operator.
	Subscriber string
}

// WebPushConfig tunes the Web Push sender.
type WebPushConfig struct {
	VAPID VAPID

	// TTLSeconds is how long a push service may queue the message for an
	// offline device; 0 => 24h. Notifications decay fast, there is little
	// point holding them longer.
	TTLSeconds int

	// HTTPClient overrides the default client, e.g. to set timeouts.
	HTTPClient *http.Client
}

const defaultPushTTL = 24 * 60 * 60

// WebPush sends payloads to browser push endpoints per RFC 8030 with VAPID
// authentication, via SherClockHolmes/webpush-go.
type WebPush struct {
	cfg WebPushConfig
}

var _ Sender = (*WebPush)(nil)

func NewWebPush(cfg WebPushConfig) (*WebPush, error) {
	if cfg.VAPID.PublicKey == "" || cfg.VAPID.PrivateKey == "" {
		return nil, fmt.Errorf("push: VAPID key pair is required")
	}
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = defaultPushTTL
	}
	return &WebPush{cfg: cfg}, nil
}

func (w *WebPush) Send(ctx context.Context, sub Subscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      w.cfg.VAPID.Subscriber,
		VAPIDPublicKey:  w.cfg.VAPID.PublicKey,
		VAPIDPrivateKey: w.cfg.VAPID.PrivateKey,
		TTL:             w.cfg.TTLSeconds,
		HTTPClient:      w.cfg.HTTPClient,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 404/410 mean the endpoint is gone; surfacing the status lets the
	// registration collaborator decide what to do with it.
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
