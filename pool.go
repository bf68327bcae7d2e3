package site2pdf

import (
	"context"
	"errors"
	"net/url"
	"runtime"
	"sync"
)

const (
	MinPoolSize = 1
	// MaxPoolSize caps browsers; each costs roughly 200MB.
	MaxPoolSize = 8

	// cpuDivisor leaves a core per browser for Chrome's child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by a pool after Close.
var ErrPoolClosed = errors.New("renderer pool is closed")

// renderBackend is one browser-backed renderer owned by the pool.
type renderBackend interface {
	PageRenderer
	HTMLRenderer
	Close() error
}

// RendererPool shares up to Size browsers between jobs. A browser is only
// started when a render finds no idle one and the pool is below capacity.
type RendererPool struct {
	size       int
	newBackend func() renderBackend

	slots chan struct{} // holds one token per backend in use
	done  chan struct{}

	mu     sync.Mutex
	idle   []renderBackend
	all    []renderBackend
	closed bool
}

// NewRendererPool creates a pool of at most n RodRenderers built with opts.
func NewRendererPool(n int, opts ...RendererOption) *RendererPool {
	return newRendererPool(n, func() renderBackend { return NewRodRenderer(opts...) })
}

func newRendererPool(n int, newBackend func() renderBackend) *RendererPool {
	n = max(n, MinPoolSize)
	return &RendererPool{
		size:       n,
		newBackend: newBackend,
		slots:      make(chan struct{}, n),
		done:       make(chan struct{}),
	}
}

// acquire waits for a free slot, then hands out an idle backend or starts
// a new one.
func (p *RendererPool) acquire(ctx context.Context) (renderBackend, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case p.slots <- struct{}{}:
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		<-p.slots
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		b := p.idle[n-1]
		p.idle = p.idle[:n-1]
		return b, nil
	}
	b := p.newBackend()
	p.all = append(p.all, b)
	return b, nil
}

func (p *RendererPool) release(b renderBackend) {
	p.mu.Lock()
	if !p.closed {
		p.idle = append(p.idle, b)
	}
	p.mu.Unlock()
	<-p.slots
}

func (p *RendererPool) use(ctx context.Context, fn func(renderBackend) error) error {
	b, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer p.release(b)
	return fn(b)
}

// RenderPage renders u with a pooled browser.
func (p *RendererPool) RenderPage(ctx context.Context, u *url.URL, outputPath string) (title string, err error) {
	err = p.use(ctx, func(b renderBackend) error {
		title, err = b.RenderPage(ctx, u, outputPath)
		return err
	})
	return title, err
}

// RenderedHTML returns the rendered DOM of u.
func (p *RendererPool) RenderedHTML(ctx context.Context, u *url.URL) (html string, err error) {
	err = p.use(ctx, func(b renderBackend) error {
		html, err = b.RenderedHTML(ctx, u)
		return err
	})
	return html, err
}

// RenderHTML prints a standalone HTML document.
func (p *RendererPool) RenderHTML(ctx context.Context, htmlContent, outputPath string) error {
	return p.use(ctx, func(b renderBackend) error {
		return b.RenderHTML(ctx, htmlContent, outputPath)
	})
}

// Close stops every browser the pool started, including ones still in use.
// Later renders fail with ErrPoolClosed.
func (p *RendererPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	started := p.all
	p.all, p.idle = nil, nil
	p.mu.Unlock()

	errs := make([]error, 0, len(started))
	for _, b := range started {
		errs = append(errs, b.Close())
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *RendererPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive, otherwise half of
// GOMAXPROCS (container-aware through automaxprocs) clamped to
// [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return min(max(runtime.GOMAXPROCS(0)/cpuDivisor, MinPoolSize), MaxPoolSize)
}
