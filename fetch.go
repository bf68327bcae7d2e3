package site2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Fetch defaults.
const (
	defaultFetchTimeout = 30 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 site2pdf"
	maxRedirects        = 10
	maxBodyBytes        = 10 << 20
)

var (
	errTooManyRedirects  = errors.New("stopped after too many redirects")
	errForbiddenRedirect = errors.New("redirect to a forbidden host")
)

// httpFetcher implements HTMLFetcher with net/http.
type httpFetcher struct {
	client    *http.Client
	userAgent string
}

// FetcherOption configures the HTTP fetcher.
type FetcherOption func(*httpFetcher)

// WithFetchTimeout bounds a single GET including redirects.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *httpFetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header. Some documentation hosts
// answer 403 to the default Go client string.
func WithUserAgent(ua string) FetcherOption {
	return func(f *httpFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// NewHTTPFetcher returns the default HTMLFetcher.
func NewHTTPFetcher(opts ...FetcherOption) HTMLFetcher {
	f := &httpFetcher{
		client: &http.Client{
			Timeout: defaultFetchTimeout,
			CheckRedirect: checkRedirect,
		},
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// checkRedirect caps the chain and refuses hops that leave the original host
// for a loopback, private or link-local target.
func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errTooManyRedirects
	}
	if !strings.EqualFold(req.URL.Host, via[0].URL.Host) && isForbiddenTarget(req.URL.Hostname()) {
		return fmt.Errorf("%w: %s", errForbiddenRedirect, req.URL.Host)
	}
	return nil
}

// FetchHTML issues a GET and reads at most maxBodyBytes of the body.
func (f *httpFetcher) FetchHTML(ctx context.Context, u *url.URL) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return &FetchResult{
		FinalURL:    resp.Request.URL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        string(body),
	}, nil
}

// netResolver implements Resolver with the system resolver.
type netResolver struct {
	r *net.Resolver
}

// NewNetResolver returns a Resolver backed by net.DefaultResolver.
func NewNetResolver() Resolver {
	return &netResolver{r: net.DefaultResolver}
}

func (n *netResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	addrs, err := n.r.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}
