package push

import (
	"errors"
	"testing"
)

type fakeView struct {
	url       string
	focused   bool
	navigated string
	focusErr  error
}

func (v *fakeView) URL() string             { return v.url }
func (v *fakeView) Focus() error            { v.focused = true; return v.focusErr }
func (v *fakeView) Navigate(u string) error { v.navigated = u; return nil }

// A click on a notification with an open same-origin view must reuse that
// view instead of opening a duplicate.
func TestActivateFocusesExistingView(t *testing.T) {
	v := &fakeView{url: "https://app.example.com/dashboard"}
	opened := ""

	err := Activate([]View{v}, "https://app.example.com", "/notifications", func(u string) error {
		opened = u
		return nil
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !v.focused {
		t.Fatalf("existing view not focused")
	}
	if v.navigated != "/notifications" {
		t.Fatalf("navigated = %q, want /notifications", v.navigated)
	}
	if opened != "" {
		t.Fatalf("opened a duplicate view at %q", opened)
	}
}

func TestActivateOpensWhenNoViewMatches(t *testing.T) {
	other := &fakeView{url: "https://elsewhere.example.org/"}
	opened := ""

	err := Activate([]View{other}, "https://app.example.com", "/notifications", func(u string) error {
		opened = u
		return nil
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if other.focused {
		t.Fatalf("cross-origin view focused")
	}
	if opened != "/notifications" {
		t.Fatalf("opened = %q", opened)
	}
}

func TestActivateEmptyTargetFallsBack(t *testing.T) {
	opened := ""
	if err := Activate(nil, "https://app.example.com", "", func(u string) error {
		opened = u
		return nil
	}); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if opened != FallbackURL {
		t.Fatalf("opened = %q, want %q", opened, FallbackURL)
	}
}

// A view that vanishes between enumeration and focus is skipped, not fatal.
func TestActivateSkipsVanishedView(t *testing.T) {
	gone := &fakeView{url: "https://app.example.com/a", focusErr: errors.New("view gone")}
	alive := &fakeView{url: "https://app.example.com/b"}

	err := Activate([]View{gone, alive}, "https://app.example.com", "/x", func(string) error {
		t.Fatalf("open called despite a live matching view")
		return nil
	})
	if err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if alive.navigated != "/x" {
		t.Fatalf("surviving view not navigated: %q", alive.navigated)
	}
}

func TestSameOriginComparison(t *testing.T) {
	cases := []struct {
		raw, origin string
		want        bool
	}{
		{"https://app.example.com/path?q=1", "https://app.example.com", true},
		{"HTTPS://APP.EXAMPLE.COM/", "https://app.example.com", true},
		{"http://app.example.com/", "https://app.example.com", false},
		{"https://app.example.com:8443/", "https://app.example.com", false},
		{"https://evil.example.com/", "https://app.example.com", false},
		{"://bad", "https://app.example.com", false},
	}
	for _, c := range cases {
		if got := sameOrigin(c.raw, c.origin); got != c.want {
			t.Errorf("sameOrigin(%q, %q) = %v, want %v", c.raw, c.origin, got, c.want)
		}
	}
}
