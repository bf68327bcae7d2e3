package site2pdf

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Crawl limits.
const (
	DefaultMaxPages = 300
	DefaultMaxDepth = 10
)

// skippedLinkPrefixes are anchor targets that never point at a page.
var skippedLinkPrefixes = []string{"mailto:", "tel:", "javascript:", "data:"}

// LinkDiscoverer crawls a site breadth-first and returns its internal pages.
type LinkDiscoverer struct {
	fetcher  HTMLFetcher
	maxPages int
	maxDepth int
	logger   *slog.Logger
}

// DiscoverOption configures a LinkDiscoverer.
type DiscoverOption func(*LinkDiscoverer)

// WithMaxPages caps the number of discovered pages.
func WithMaxPages(n int) DiscoverOption {
	return func(d *LinkDiscoverer) {
		if n > 0 {
			d.maxPages = n
		}
	}
}

// WithMaxDepth caps the number of link hops from the seed.
func WithMaxDepth(n int) DiscoverOption {
	return func(d *LinkDiscoverer) {
		if n >= 0 {
			d.maxDepth = n
		}
	}
}

// WithDiscoverLogger sets the logger used for skipped pages.
func WithDiscoverLogger(l *slog.Logger) DiscoverOption {
	return func(d *LinkDiscoverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewLinkDiscoverer creates a discoverer with default limits.
func NewLinkDiscoverer(fetcher HTMLFetcher, opts ...DiscoverOption) *LinkDiscoverer {
	d := &LinkDiscoverer{
		fetcher:  fetcher,
		maxPages: DefaultMaxPages,
		maxDepth: DefaultMaxDepth,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type crawlItem struct {
	url   *url.URL
	depth int
}

// Discover walks the seed host breadth-first. Pages that fail to load are
// skipped. The result holds at most maxPages URLs, one per normalization key,
// all on the seed host, sorted lexicographically.
func (d *LinkDiscoverer) Discover(ctx context.Context, seed *url.URL) []*url.URL {
	seed = stripFragment(seed)
	discovered := make(map[string]*url.URL)
	queued := map[string]bool{NormalizeKey(seed): true}
	queue := []crawlItem{{url: seed, depth: 0}}

	for len(queue) > 0 && len(discovered) < d.maxPages && ctx.Err() == nil {
		item := queue[0]
		queue = queue[1:]

		if item.depth > d.maxDepth || !sameHost(item.url, seed) {
			continue
		}
		key := NormalizeKey(item.url)
		if _, ok := discovered[key]; ok {
			continue
		}

		res, err := d.fetcher.FetchHTML(ctx, item.url)
		if err != nil {
			d.logger.Debug("skipping page", "url", item.url.String(), "error", err)
			continue
		}
		if !isHTMLResponse(res) {
			d.logger.Debug("skipping page", "url", item.url.String(), "status", res.StatusCode, "content_type", res.ContentType)
			continue
		}
		base := item.url
		if res.FinalURL != nil {
			if !sameHost(res.FinalURL, seed) {
				d.logger.Debug("skipping off-host redirect", "url", item.url.String(), "final", res.FinalURL.String())
				continue
			}
			base = res.FinalURL
		}

		discovered[key] = item.url
		if item.depth >= d.maxDepth {
			continue
		}

		for _, link := range extractLinks(base, strings.NewReader(res.Body)) {
			if !sameHost(link, seed) {
				continue
			}
			lk := NormalizeKey(link)
			if queued[lk] {
				continue
			}
			if _, ok := discovered[lk]; ok {
				continue
			}
			queued[lk] = true
			queue = append(queue, crawlItem{url: link, depth: item.depth + 1})
		}
	}

	out := make([]*url.URL, 0, len(discovered))
	for _, u := range discovered {
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b *url.URL) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// isHTMLResponse reports a 2xx response carrying HTML.
func isHTMLResponse(res *FetchResult) bool {
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return false
	}
	ct := strings.ToLower(res.ContentType)
	return ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// extractLinks tokenizes r and returns every navigable anchor target,
// resolved against base (or a <base href> when present) without fragment.
func extractLinks(base *url.URL, r io.Reader) []*url.URL {
	var links []*url.URL
	z := html.NewTokenizer(r)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return links
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				continue
			}
			switch atom.Lookup(name) {
			case atom.Base:
				if href := tokenAttr(z, "href"); href != "" {
					if ref, err := url.Parse(href); err == nil {
						base = base.ResolveReference(ref)
					}
				}
			case atom.A:
				if u := resolveLink(base, tokenAttr(z, "href")); u != nil {
					links = append(links, stripFragment(u))
				}
			}
		}
	}
}

// tokenAttr returns the value of key on the current start tag.
func tokenAttr(z *html.Tokenizer, key string) string {
	for {
		k, v, more := z.TagAttr()
		if string(k) == key {
			return strings.TrimSpace(string(v))
		}
		if !more {
			return ""
		}
	}
}

// resolveLink resolves href against base and drops non-page targets.
func resolveLink(base *url.URL, href string) *url.URL {
	if href == "" {
		return nil
	}
	lower := strings.ToLower(href)
	for _, p := range skippedLinkPrefixes {
		if strings.HasPrefix(lower, p) {
			return nil
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}
	u := base.ResolveReference(ref)
	if !isNavigableScheme(u) || u.Host == "" {
		return nil
	}
	return u
}
