package site2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-site2pdf/internal/fileutil"
	"github.com/alnah/go-site2pdf/internal/process"
)

// Renderer defaults.
const (
	DefaultRenderTimeout  = 60 * time.Second
	DefaultLaunchAttempts = 3
	launchRetryDelay      = 500 * time.Millisecond
	idleWait              = 2 * time.Second
)

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// crashMarkers identify errors raised when Chrome or its connection died.
var crashMarkers = []string{
	"target crashed",
	"target closed",
	"websocket: close",
	"use of closed network connection",
	"connection reset",
	"broken pipe",
}

// RodRenderer renders web pages with headless Chrome via go-rod.
// Rod downloads Chromium on first use if no browser is installed.
// The browser is launched lazily and shared by concurrent renders.
type RodRenderer struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
	attempts uint
	logger   *slog.Logger
}

// RendererOption configures a RodRenderer.
type RendererOption func(*RodRenderer)

// WithRenderTimeout bounds loading and printing one page.
func WithRenderTimeout(d time.Duration) RendererOption {
	return func(r *RodRenderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLaunchAttempts sets how many times the browser launch is tried.
func WithLaunchAttempts(n uint) RendererOption {
	return func(r *RodRenderer) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithRendererLogger sets the logger for browser lifecycle events.
func WithRendererLogger(l *slog.Logger) RendererOption {
	return func(r *RodRenderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRodRenderer creates a renderer. No browser is started until the first
// render.
func NewRodRenderer(opts ...RendererOption) *RodRenderer {
	r := &RodRenderer{
		timeout:  DefaultRenderTimeout,
		attempts: DefaultLaunchAttempts,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensureBrowser lazily launches and connects to the browser, retrying
// transient launch failures.
func (r *RodRenderer) ensureBrowser(ctx context.Context) (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	err := retry.Do(
		func() error {
			l := launcher.New()

			// Use pre-installed browser if specified (Docker/containerized environments)
			if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
				l = l.Bin(bin)
			}

			// NoSandbox required for CI and containerized environments
			if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
				l = l.NoSandbox(true)
			}

			u, err := l.Launch()
			if err != nil {
				return err
			}

			b := rod.New().ControlURL(u)
			if err := b.Connect(); err != nil {
				l.Kill()
				return err
			}
			r.browser = b
			r.launcher = l
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(launchRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("browser launch failed, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.logger.Debug("browser started")
	return r.browser, nil
}

// reset drops a dead browser so the next render launches a fresh one.
func (r *RodRenderer) reset(dead *rod.Browser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != dead {
		return
	}
	r.logger.Warn("browser crashed, restarting on next render")
	_ = r.shutdownLocked()
}

// Close releases browser resources.
func (r *RodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.shutdownLocked()
}

func (r *RodRenderer) shutdownLocked() error {
	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if err := process.ReapTree(r.launcher.PID()); err != nil {
			r.logger.Debug("reaping browser processes", "error", err)
		}
		r.launcher.Kill()
		r.launcher = nil
	}
	return err
}

// openPage navigates a new tab to target and waits for the load event.
// The caller closes the returned page.
func (r *RodRenderer) openPage(ctx context.Context, target string) (*rod.Page, *rod.Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	b, err := r.ensureBrowser(ctx)
	if err != nil {
		return nil, nil, err
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, b, r.classify(ctx, b, ErrPageCreate, err)
	}
	p := page.Context(ctx).Timeout(r.timeout)

	if err := p.Navigate(target); err != nil {
		_ = page.Close()
		return nil, b, r.classify(ctx, b, ErrPageLoad, err)
	}
	if err := p.WaitLoad(); err != nil {
		_ = page.Close()
		return nil, b, r.classify(ctx, b, ErrPageLoad, err)
	}
	return p, b, nil
}

// classify maps a rod error onto the crash, timeout or fallback category.
func (r *RodRenderer) classify(ctx context.Context, b *rod.Browser, fallback, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s: %v", ErrRenderTimeout, r.timeout, err)
	}
	msg := strings.ToLower(err.Error())
	for _, m := range crashMarkers {
		if strings.Contains(msg, m) {
			r.reset(b)
			return fmt.Errorf("%w: %v", ErrRenderCrash, err)
		}
	}
	return fmt.Errorf("%w: %v", fallback, err)
}

// RenderPage prints the live page at u to outputPath and returns the path.
// The file appears atomically, so a partial write is never mistaken for a
// rendered page.
func (r *RodRenderer) RenderPage(ctx context.Context, u *url.URL, outputPath string) (string, error) {
	p, b, err := r.openPage(ctx, u.String())
	if err != nil {
		return "", err
	}
	defer p.Close()

	data, err := r.printPDF(ctx, b, p)
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(outputPath, data); err != nil {
		return "", err
	}
	return outputPath, nil
}

// RenderedHTML returns the DOM of the page at u after scripts have run.
func (r *RodRenderer) RenderedHTML(ctx context.Context, u *url.URL) (string, error) {
	p, b, err := r.openPage(ctx, u.String())
	if err != nil {
		return "", err
	}
	defer p.Close()

	// Client-rendered navigation often lands after the load event.
	_ = p.WaitIdle(idleWait)

	content, err := p.HTML()
	if err != nil {
		return "", r.classify(ctx, b, ErrPageLoad, err)
	}
	return content, nil
}

// RenderHTML prints a standalone HTML document to outputPath.
func (r *RodRenderer) RenderHTML(ctx context.Context, htmlContent, outputPath string) error {
	tmpPath, cleanup, err := fileutil.WriteScratch(filepath.Dir(outputPath), "contents-*.html", htmlContent)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	defer cleanup()

	p, b, err := r.openPage(ctx, "file://"+tmpPath)
	if err != nil {
		return err
	}
	defer p.Close()

	data, err := r.printPDF(ctx, b, p)
	if err != nil {
		return err
	}
	return writeFileAtomic(outputPath, data)
}

func (r *RodRenderer) printPDF(ctx context.Context, b *rod.Browser, p *rod.Page) ([]byte, error) {
	reader, err := p.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	})
	if err != nil {
		return nil, r.classify(ctx, b, ErrPDFGeneration, err)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := fileutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %v", ErrWritePDF, err)
	}
	return nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
