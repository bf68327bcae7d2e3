package site2pdf

// Notes:
// - NormalizeKey: we test each normalization rule and idempotence on the
//   same inputs. Percent-encoding edge cases are left to net/url.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"testing"
)

// ---------------------------------------------------------------------------
// TestNormalizeKey - Dedup key rules
// ---------------------------------------------------------------------------

func TestNormalizeKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"root", "https://docs.example.com/", "https://docs.example.com"},
		{"no path", "https://docs.example.com", "https://docs.example.com"},
		{"trailing slash", "https://docs.example.com/guide/", "https://docs.example.com/guide"},
		{"query and fragment dropped", "https://docs.example.com/guide?x=1#top", "https://docs.example.com/guide"},
		{"upper-case host and scheme", "HTTPS://Docs.Example.COM/Guide", "https://docs.example.com/Guide"},
		{"default https port", "https://docs.example.com:443/a", "https://docs.example.com/a"},
		{"default http port", "http://docs.example.com:80/a", "http://docs.example.com/a"},
		{"non-default port kept", "https://docs.example.com:8443/a", "https://docs.example.com:8443/a"},
		{"index.html collapsed", "https://docs.example.com/guide/index.html", "https://docs.example.com/guide"},
		{"index.htm collapsed", "https://docs.example.com/guide/index.htm", "https://docs.example.com/guide"},
		{"bare index collapsed", "https://docs.example.com/guide/index", "https://docs.example.com/guide"},
		{"root index", "https://docs.example.com/index.html", "https://docs.example.com"},
		{"nested index", "https://docs.example.com/a/index/index.html", "https://docs.example.com/a"},
		{"indexer not collapsed", "https://docs.example.com/indexer", "https://docs.example.com/indexer"},
		{"ipv6 host", "http://[::1]:8080/x/", "http://[::1]:8080/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u := mustURL(t, tt.raw)
			got := NormalizeKey(u)
			if got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}

			again := NormalizeKey(mustURL(t, got))
			if again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeKey_Nil(t *testing.T) {
	t.Parallel()

	if got := NormalizeKey(nil); got != "" {
		t.Errorf("NormalizeKey(nil) = %q, want empty", got)
	}
}

// ---------------------------------------------------------------------------
// TestSameHost - Scope check
// ---------------------------------------------------------------------------

func TestSameHost(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://docs.example.com/a", "https://DOCS.example.com/b", true},
		{"https://docs.example.com/a", "https://docs.example.com:443/b", true},
		{"https://docs.example.com/a", "https://docs.example.com:8443/b", false},
		{"https://docs.example.com/a", "https://blog.example.com/a", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			t.Parallel()
			if got := sameHost(mustURL(t, tt.a), mustURL(t, tt.b)); got != tt.want {
				t.Errorf("sameHost = %v, want %v", got, tt.want)
			}
		})
	}

	if sameHost(nil, mustURL(t, "https://docs.example.com")) {
		t.Error("sameHost(nil, u) should be false")
	}
}
