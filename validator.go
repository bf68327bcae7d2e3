package site2pdf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// blockedHosts are rejected before any DNS lookup.
var blockedHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
	"0.0.0.0":   true,
	"::":        true,
}

// blockedHostPrefixes is a cheap textual filter applied before DNS resolution.
var blockedHostPrefixes = func() []string {
	prefixes := []string{"10.", "192.168.", "127."}
	for i := 16; i <= 31; i++ {
		prefixes = append(prefixes, fmt.Sprintf("172.%d.", i))
	}
	return prefixes
}()

// privateNets lists the address ranges a seed URL must never resolve into.
var privateNets = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"fc00::/7",
	}
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}()

// URLValidator checks a seed URL before any job work begins and blocks
// server-side request forgery targets.
type URLValidator struct {
	resolver Resolver
	fetcher  HTMLFetcher
}

// NewURLValidator creates a validator using the given capabilities.
func NewURLValidator(resolver Resolver, fetcher HTMLFetcher) *URLValidator {
	return &URLValidator{resolver: resolver, fetcher: fetcher}
}

// Validate parses, screens and probes raw. On success it returns the final
// URL after redirects, without fragment. Every failure is a *ValidationError.
func (v *URLValidator) Validate(ctx context.Context, raw string) (*url.URL, error) {
	u, err := parseAbsolute(raw)
	if err != nil {
		return nil, err
	}

	if err := v.screen(ctx, raw, u); err != nil {
		return nil, err
	}

	res, err := v.fetcher.FetchHTML(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, errForbiddenRedirect) {
			return nil, newValidationError(ForbiddenHost, raw, "redirected to a forbidden host", err)
		}
		return nil, newValidationError(HTTPFailure, raw, "request failed", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, newValidationError(HTTPFailure, raw, fmt.Sprintf("status %d", res.StatusCode), nil)
	}
	if !strings.Contains(strings.ToLower(res.ContentType), "text/html") {
		return nil, newValidationError(NonHTMLContent, raw, fmt.Sprintf("content type %q", res.ContentType), nil)
	}

	final := u
	if res.FinalURL != nil {
		final = res.FinalURL
	}
	// The final URL becomes the crawl seed, so a redirect onto another host
	// gets the same screening as the input.
	if !strings.EqualFold(final.Hostname(), u.Hostname()) || final.Scheme != u.Scheme {
		if err := v.screen(ctx, raw, final); err != nil {
			return nil, err
		}
	}
	return stripFragment(final), nil
}

// screen applies the scheme, hostname and resolved-address checks to u.
func (v *URLValidator) screen(ctx context.Context, raw string, u *url.URL) error {
	if !isNavigableScheme(u) {
		return newValidationError(DisallowedScheme, raw, fmt.Sprintf("scheme %q is not allowed", u.Scheme), nil)
	}
	host := strings.ToLower(u.Hostname())
	if isBlockedHostname(host) {
		return newValidationError(ForbiddenHost, raw, host, nil)
	}
	return v.checkResolvedAddrs(ctx, raw, host)
}

// parseAbsolute rejects relative or unparseable input.
func parseAbsolute(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, newValidationError(MalformedURL, raw, "empty URL", nil)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, newValidationError(MalformedURL, raw, "", err)
	}
	if !u.IsAbs() || u.Host == "" && isNavigableScheme(u) {
		return nil, newValidationError(MalformedURL, raw, "URL must be absolute", nil)
	}
	return u, nil
}

// isBlockedHostname applies the textual pre-DNS filter.
func isBlockedHostname(host string) bool {
	if blockedHosts[host] || strings.HasSuffix(host, ".localhost") {
		return true
	}
	for _, p := range blockedHostPrefixes {
		if strings.HasPrefix(host, p) {
			return true
		}
	}
	return false
}

// isForbiddenTarget screens a host without DNS: the textual filter plus
// IP literals in internal ranges.
func isForbiddenTarget(host string) bool {
	host = strings.ToLower(host)
	if isBlockedHostname(host) {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && isForbiddenIP(ip)
}

// checkResolvedAddrs rejects the URL if any resolved address is internal.
// This catches DNS names that point at private ranges.
func (v *URLValidator) checkResolvedAddrs(ctx context.Context, raw, host string) error {
	ips, err := v.resolver.LookupIP(ctx, host)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newValidationError(HTTPFailure, raw, "resolving "+host, err)
	}
	if len(ips) == 0 {
		return newValidationError(HTTPFailure, raw, "no addresses for "+host, nil)
	}
	for _, ip := range ips {
		if isForbiddenIP(ip) {
			return newValidationError(ForbiddenIP, raw, fmt.Sprintf("%s resolves to %s", host, ip), nil)
		}
	}
	return nil
}

// isForbiddenIP reports loopback, private, unspecified and link-local addresses.
func isForbiddenIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
