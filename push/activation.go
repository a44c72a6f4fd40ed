package push

import (
	"net/url"
	"strings"
)

// View is an open client window the background agent can see. Restricted to
// the agent's own origin by the platform; Origin checks guard against the
// platform handing back more than it should.
type View interface {
	// URL is the view's current location.
	URL() string

	// Focus brings the view to the foreground.
	Focus() error

	// Navigate points the view at a new location.
	Navigate(url string) error
}

// Activate resolves a notification click: focus the first already-open view
// on the given origin and navigate it to target, or open a new view when
// none matches. Two states, transition keyed on origin match - nothing else.
//
// An empty target falls back to FallbackURL. open receives the resolved
// target and is only called when no view matched.
func Activate(views []View, origin, target string, open func(url string) error) error {
	if target == "" {
		target = FallbackURL
	}
	for _, v := range views {
		if !sameOrigin(v.URL(), origin) {
			continue
		}
		if err := v.Focus(); err != nil {
			// view vanished between enumeration and focus; try the next
			continue
		}
		return v.Navigate(target)
	}
	return open(target)
}

// sameOrigin reports whether raw's scheme://host equals origin's.
func sameOrigin(raw, origin string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	o, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, o.Scheme) && strings.EqualFold(u.Host, o.Host)
}
