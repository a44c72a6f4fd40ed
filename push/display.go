package push

import "encoding/json"

// Display constants shared with the client's background agent.
const (
	// DefaultTag is the deduplication tag when a payload has no category.
	DefaultTag = "general"

	// FallbackURL is opened on click-through when the payload carries no
	// deep-link target.
	FallbackURL = "/"

	IconPath  = "/icons/icon-192x192.png"
	BadgePath = "/icons/badge-72x72.png"
)

// Display is the user-visible alert the background agent materializes from
// a delivered payload.
type Display struct {
	Title string
	Body  string

	// Tag is the stable deduplication key: a client that received the same
	// event over the live channel and the push channel shows it once.
	Tag string

	Icon  string
	Badge string

	// URL is the click-through target.
	URL string
}

// DisplayFor derives the alert for a payload: tag from the category (default
// when absent), icon/badge from fixed asset paths, URL with fallback.
func DisplayFor(p Payload) Display {
	tag := p.Type
	if tag == "" {
		tag = DefaultTag
	}
	url := p.URL
	if url == "" {
		url = FallbackURL
	}
	return Display{
		Title: p.Title,
		Body:  p.Body,
		Tag:   tag,
		Icon:  IconPath,
		Badge: BadgePath,
		URL:   url,
	}
}

// DecodePayload parses the JSON delivered to an endpoint. Unknown fields are
// ignored; a malformed payload yields the zero Payload and an error, and the
// agent falls back to DisplayFor's defaults.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	err := json.Unmarshal(raw, &p)
	return p, err
}
