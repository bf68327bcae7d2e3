package site2pdf

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"sync"
)

// fakeResolver answers LookupIP from a fixed table.
type fakeResolver struct {
	ips map[string][]net.IP
	err error
}

func (r *fakeResolver) LookupIP(_ context.Context, host string) ([]net.IP, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.ips[host], nil
}

// publicResolver resolves every host to a public documentation address.
func publicResolver() *fakeResolver {
	return &fakeResolver{ips: map[string][]net.IP{
		"docs.example.com": {net.ParseIP("93.184.216.34")},
	}}
}

// fakePage is one canned response of fakeFetcher.
type fakePage struct {
	status      int
	contentType string
	body        string
	final       string
	err         error
}

// fakeFetcher serves pages keyed by NormalizeKey. Unknown URLs get 404.
type fakeFetcher struct {
	pages map[string]fakePage

	mu    sync.Mutex
	calls []string
}

func newFakeFetcher(pages map[string]fakePage) *fakeFetcher {
	keyed := make(map[string]fakePage, len(pages))
	for raw, p := range pages {
		u, err := url.Parse(raw)
		if err != nil {
			panic(err)
		}
		keyed[NormalizeKey(u)] = p
	}
	return &fakeFetcher{pages: keyed}
}

func (f *fakeFetcher) FetchHTML(ctx context.Context, u *url.URL) (*FetchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, u.String())
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := f.pages[NormalizeKey(u)]
	if !ok {
		return &FetchResult{FinalURL: u, StatusCode: 404, ContentType: "text/html"}, nil
	}
	if p.err != nil {
		return nil, p.err
	}
	status := p.status
	if status == 0 {
		status = 200
	}
	ct := p.contentType
	if ct == "" {
		ct = "text/html; charset=utf-8"
	}
	final := u
	if p.final != "" {
		final, _ = url.Parse(p.final)
	}
	return &FetchResult{FinalURL: final, StatusCode: status, ContentType: ct, Body: p.body}, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeRenderer writes a small placeholder file per page. Pages listed in
// fail return the mapped error.
type fakeRenderer struct {
	fail map[string]error
	dom  string
	// block makes RenderPage wait until ctx is done; hold does the same
	// for the listed URLs only.
	block bool
	hold  map[string]bool

	mu       sync.Mutex
	rendered []string
}

func (r *fakeRenderer) RenderPage(ctx context.Context, u *url.URL, outputPath string) (string, error) {
	if r.block || r.hold[u.String()] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := r.fail[u.String()]; err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, []byte("%PDF-1.7\n"+u.String()), 0o600); err != nil {
		return "", err
	}
	r.mu.Lock()
	r.rendered = append(r.rendered, u.String())
	r.mu.Unlock()
	return outputPath, nil
}

func (r *fakeRenderer) RenderedHTML(context.Context, *url.URL) (string, error) {
	if r.dom == "" {
		return "", errors.New("no DOM")
	}
	return r.dom, nil
}

func (r *fakeRenderer) RenderHTML(_ context.Context, htmlContent, outputPath string) error {
	return os.WriteFile(outputPath, []byte("%PDF-1.7\n"+htmlContent), 0o600)
}

// fakeMerger concatenates inputs and records their order.
type fakeMerger struct {
	err error

	mu     sync.Mutex
	inputs []string
}

func (m *fakeMerger) MergeFiles(paths []string, outputPath string) error {
	if m.err != nil {
		return m.err
	}
	var out []byte
	kept := 0
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		out = append(out, data...)
		kept++
	}
	if kept == 0 {
		return ErrNoPages
	}
	m.mu.Lock()
	m.inputs = append([]string(nil), paths...)
	m.mu.Unlock()
	return os.WriteFile(outputPath, out, 0o600)
}

// fakeDiscoverer returns a fixed page list.
type fakeDiscoverer struct {
	pages []string
}

func (d *fakeDiscoverer) Discover(_ context.Context, seed *url.URL) []*url.URL {
	out := make([]*url.URL, 0, len(d.pages))
	for _, p := range d.pages {
		ref, _ := url.Parse(p)
		out = append(out, seed.ResolveReference(ref))
	}
	return out
}
