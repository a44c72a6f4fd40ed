package cachefan

import (
	"encoding/json"
	"time"

	"github.com/unkn0wn-root/cachefan/push"
)

// Event is one notification to fan out. It is consumed exactly once by
// Dispatch and never persisted here; durable notification history is the
// caller's concern.
type Event struct {
	// Recipient is the logical user identity the event targets.
	Recipient string

	// Type is the category tag clients use to deduplicate and group
	// notifications. Empty means the default category.
	Type string

	Title string
	Body  string

	// URL is an optional deep-link target opened on click-through.
	URL string

	CreatedAt time.Time
}

// payload returns the wire shape shared by the live and push channels.
func (e Event) payload() push.Payload {
	return push.Payload{
		Title: e.Title,
		Body:  e.Body,
		URL:   e.URL,
		Type:  e.Type,
	}
}

func (e Event) marshal() ([]byte, error) {
	return json.Marshal(e.payload())
}

// Outcome reports what a Dispatch attempted. It carries no retryable state:
// failed sends were already logged and dropped.
type Outcome struct {
	LiveSent   int
	LiveFailed int
	PushSent   int
	PushFailed int
}

// Delivered reports whether at least one channel accepted the event.
func (o Outcome) Delivered() bool { return o.LiveSent > 0 || o.PushSent > 0 }
