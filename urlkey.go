package site2pdf

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// indexSuffixes are collapsed to their parent path so /docs/index and /docs/
// share a key.
var indexSuffixes = []string{"/index.html", "/index.htm", "/index"}

// NormalizeKey returns the canonical string used for deduplication and scope
// checks: no query or fragment, no default port, lower-cased host, index
// pages collapsed to their directory, and no trailing slash.
// NormalizeKey is idempotent.
func NormalizeKey(u *url.URL) string {
	if u == nil {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme + "://" + hostKey(u) + normalizePath(u.EscapedPath())
}

// hostKey returns the lower-cased host with a non-default port kept.
func hostKey(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	port := u.Port()
	if port == "" || isDefaultPort(strings.ToLower(u.Scheme), port) {
		if strings.Contains(host, ":") {
			return "[" + host + "]"
		}
		return host
	}
	return net.JoinHostPort(host, port)
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

// normalizePath repeats the collapse until stable so that keys of keys do not
// change again.
func normalizePath(p string) string {
	for {
		next := strings.TrimRight(p, "/")
		for _, suffix := range indexSuffixes {
			if strings.HasSuffix(next, suffix) {
				next = strings.TrimRight(strings.TrimSuffix(next, suffix), "/")
				break
			}
		}
		if next == p {
			return next
		}
		p = next
	}
}

// sameHost reports whether a and b point at the same host and port.
func sameHost(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return hostKey(a) == hostKey(b)
}

// isNavigableScheme reports whether u is http or https.
func isNavigableScheme(u *url.URL) bool {
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

// stripFragment returns a copy of u without its fragment.
func stripFragment(u *url.URL) *url.URL {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return &c
}
