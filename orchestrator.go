package site2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-site2pdf/internal/assets"
	"github.com/alnah/go-site2pdf/internal/dateutil"
)

// renderConcurrency bounds in-flight renders per job. The browser is the
// bottleneck, not the CPU.
const renderConcurrency = 2

// Job messages.
const (
	msgCancelledByUser = "Job was cancelled by user"
	msgCancelledPrefix = "Job was cancelled: "
)

// ProgressSink receives every snapshot the orchestrator produces.
type ProgressSink func(Job)

// Discoverer finds the internal pages of a site.
type Discoverer interface {
	Discover(ctx context.Context, seed *url.URL) []*url.URL
}

// pageCounter is implemented by mergers that can count pages of a PDF.
type pageCounter interface {
	PageCount(path string) (int, error)
}

// Orchestrator runs the conversion pipeline for one job at a time:
// validate, extract a TOC, crawl, order, render in parallel and merge.
// It is safe to run Generate for several jobs concurrently.
type Orchestrator struct {
	renderer   PageRenderer
	merger     Merger
	fetcher    HTMLFetcher
	resolver   Resolver
	validator  *URLValidator
	discoverer Discoverer
	extractor  TOCExtractor
	contents   HTMLRenderer
	theme      *assets.Theme
	dateFormat string
	workDir    string
	logger     *slog.Logger
	now        func() time.Time
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithFetcher replaces the HTTP fetcher used for validation, crawling and
// the TOC fallback.
func WithFetcher(f HTMLFetcher) OrchestratorOption {
	return func(o *Orchestrator) { o.fetcher = f }
}

// WithResolver replaces the DNS resolver used by validation.
func WithResolver(r Resolver) OrchestratorOption {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithDiscoverer replaces the crawler.
func WithDiscoverer(d Discoverer) OrchestratorOption {
	return func(o *Orchestrator) { o.discoverer = d }
}

// WithExtractor replaces the TOC extractor chain.
func WithExtractor(e TOCExtractor) OrchestratorOption {
	return func(o *Orchestrator) { o.extractor = e }
}

// WithWorkDir sets the parent of per-job temp directories.
func WithWorkDir(dir string) OrchestratorOption {
	return func(o *Orchestrator) {
		if dir != "" {
			o.workDir = dir
		}
	}
}

// WithContentsPage renders the TOC as a leading contents page using r.
func WithContentsPage(r HTMLRenderer) OrchestratorOption {
	return func(o *Orchestrator) { o.contents = r }
}

// WithContentsTheme sets the template and stylesheet of the contents page.
func WithContentsTheme(th *assets.Theme) OrchestratorOption {
	return func(o *Orchestrator) {
		if th != nil {
			o.theme = th
		}
	}
}

// WithDateFormat sets the capture date format printed on the contents
// page. "none" omits the date.
func WithDateFormat(format string) OrchestratorOption {
	return func(o *Orchestrator) {
		if format != "" {
			o.dateFormat = format
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// DefaultWorkDir is used when no work directory is configured.
func DefaultWorkDir() string {
	return filepath.Join(os.TempDir(), "site2pdf")
}

// NewOrchestrator creates an orchestrator around the render and merge
// capabilities. Missing collaborators get production defaults.
func NewOrchestrator(renderer PageRenderer, merger Merger, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		renderer:   renderer,
		merger:     merger,
		workDir:    DefaultWorkDir(),
		dateFormat: dateutil.DefaultFormat,
		logger:     discardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.fetcher == nil {
		o.fetcher = NewHTTPFetcher()
	}
	if o.resolver == nil {
		o.resolver = NewNetResolver()
	}
	o.validator = NewURLValidator(o.resolver, o.fetcher)
	if o.discoverer == nil {
		o.discoverer = NewLinkDiscoverer(o.fetcher, WithDiscoverLogger(o.logger))
	}
	if o.extractor == nil {
		o.extractor = NewExtractorChain()
	}
	if o.theme == nil {
		o.theme = assets.DefaultTheme()
	}
	return o
}

// TempDir returns the directory owned by jobID.
func (o *Orchestrator) TempDir(jobID string) string {
	return filepath.Join(o.workDir, jobID)
}

// run carries the state of one Generate call.
type run struct {
	o    *Orchestrator
	ctx  context.Context
	job  Job
	sink ProgressSink
	log  *slog.Logger
}

func (r *run) report(j Job) {
	j.UpdatedAt = r.o.now()
	r.sink(j)
}

// fail reports a terminal failure and returns err. Cancellation wins over
// whatever error a cancelled step produced.
func (r *run) fail(err error) error {
	if r.ctx.Err() != nil {
		cause := context.Cause(r.ctx)
		r.log.Info("job cancelled", "cause", cause)
		r.report(r.job.Failed(cancelMessage(cause)))
		return cause
	}
	r.log.Warn("job failed", "error", err)
	r.report(r.job.Failed(err.Error()))
	return err
}

// cancelMessage turns a context cause into the job's error message.
func cancelMessage(cause error) string {
	if cause == nil || errors.Is(cause, ErrCancelled) || errors.Is(cause, context.Canceled) {
		return msgCancelledByUser
	}
	return msgCancelledPrefix + cause.Error()
}

// Generate converts the site at rawURL into one PDF. Every milestone is
// reported to sink; the final snapshot is Completed or Failed. The returned
// error mirrors a Failed outcome and is nil on success, including partial
// success. Generate never panics.
func (o *Orchestrator) Generate(ctx context.Context, rawURL, title, jobID string, sink ProgressSink) (err error) {
	if sink == nil {
		sink = func(Job) {}
	}
	r := &run{
		o:    o,
		ctx:  ctx,
		job:  NewJob(jobID, rawURL, title, o.now()),
		sink: sink,
		log:  o.logger.With("job_id", jobID),
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error("orchestration panic", "panic", p, "stack", string(debug.Stack()))
			err = r.fail(fmt.Errorf("orchestration: %v", p))
		}
	}()

	start := o.now()
	tempDir := o.TempDir(jobID)
	if err := os.MkdirAll(tempDir, 0o750); err != nil {
		return r.fail(fmt.Errorf("creating temp directory: %w", err))
	}
	r.job = r.job.WithState(StateRunning).WithProgress(0, 0)
	r.report(r.job)

	seed, err := o.validator.Validate(ctx, rawURL)
	if err != nil {
		return r.fail(err)
	}
	r.log.Info("url validated", "url", seed.String())

	toc := o.extractor.Extract(ctx, seed, o.tocHTML(ctx, seed, r.log))
	if ctx.Err() != nil {
		return r.fail(ctx.Err())
	}
	tocURLs := tocPageURLs(toc)
	r.job = r.job.WithProgress(max(1, len(toc.Flatten())), 0)
	r.report(r.job)

	discovered := o.discoverer.Discover(ctx, seed)
	if ctx.Err() != nil {
		return r.fail(ctx.Err())
	}
	r.log.Info("crawl finished", "pages", len(discovered), "toc_entries", len(tocURLs))

	pages := OrderPages(reconcilePages(seed, discovered, tocURLs), toc)
	total := len(pages)
	r.job = r.job.WithProgress(total, 0)
	r.report(r.job)

	rendered, failures := o.renderAll(ctx, pages, tempDir, func(n int) {
		r.report(r.job.WithProgress(total, n))
	}, r.log)
	if ctx.Err() != nil {
		return r.fail(ctx.Err())
	}

	if len(rendered) == 0 {
		return r.fail(allFailedError(failures))
	}

	inputs := rendered
	if o.contents != nil {
		if path, err := o.renderContents(ctx, toc, tempDir); err != nil {
			r.log.Warn("contents page skipped", "error", err)
		} else {
			inputs = append([]string{path}, rendered...)
		}
	}
	if ctx.Err() != nil {
		return r.fail(ctx.Err())
	}

	output := filepath.Join(tempDir, BookFileName(title, jobID))
	if err := o.merger.MergeFiles(inputs, output); err != nil {
		return r.fail(fmt.Errorf("%w: %w", ErrMergeFailed, err))
	}
	o.logPageCount(output, r.log)

	r.job = r.job.WithState(StateCompleted).WithProgress(total, len(rendered)).WithOutput(output)
	if len(failures) > 0 {
		r.job = r.job.WithError(partialFailureMessage(failures, total))
	}
	r.report(r.job)
	r.log.Info("job completed",
		"pages", len(rendered),
		"failed", len(failures),
		"duration", o.now().Sub(start).Round(time.Millisecond))
	return nil
}

// tocHTML prefers the rendered DOM so client-side navigation is visible and
// falls back to a plain GET. It returns "" when both fail.
func (o *Orchestrator) tocHTML(ctx context.Context, seed *url.URL, log *slog.Logger) string {
	if o.renderer != nil {
		htmlContent, err := o.renderer.RenderedHTML(ctx, seed)
		if err == nil && strings.TrimSpace(htmlContent) != "" {
			return htmlContent
		}
		if err != nil {
			log.Debug("rendered DOM unavailable, using plain fetch", "error", err)
		}
	}
	res, err := o.fetcher.FetchHTML(ctx, seed)
	if err != nil {
		log.Debug("TOC fetch failed", "error", err)
		return ""
	}
	return res.Body
}

// tocPageURLs returns the URLs below the TOC root in pre-order. The root
// is the seed itself, which the crawl always yields.
func tocPageURLs(toc *TOCNode) []*url.URL {
	if toc == nil {
		return nil
	}
	var urls []*url.URL
	for _, c := range toc.Children {
		urls = append(urls, c.Flatten()...)
	}
	return urls
}

// reconcilePages adds TOC pages on the seed host that the crawl missed. An
// empty result falls back to the seed alone.
func reconcilePages(seed *url.URL, discovered, tocURLs []*url.URL) []*url.URL {
	pages := slices.Clone(discovered)
	seen := make(map[string]bool, len(pages))
	for _, p := range pages {
		seen[NormalizeKey(p)] = true
	}
	for _, u := range tocURLs {
		if !sameHost(u, seed) {
			continue
		}
		k := NormalizeKey(u)
		if seen[k] {
			continue
		}
		seen[k] = true
		pages = append(pages, stripFragment(u))
	}
	if len(pages) == 0 {
		return []*url.URL{seed}
	}
	return pages
}

// OrderPages returns pages in TOC pre-order. A page is emitted the first time
// its normalization key shows up in the traversal; pages the TOC never
// reaches follow in their original order. The result is a permutation of
// pages.
func OrderPages(pages []*url.URL, toc *TOCNode) []*url.URL {
	byKey := make(map[string][]int, len(pages))
	for i, p := range pages {
		k := NormalizeKey(p)
		byKey[k] = append(byKey[k], i)
	}

	ordered := make([]*url.URL, 0, len(pages))
	used := make([]bool, len(pages))
	for _, u := range toc.Flatten() {
		k := NormalizeKey(u)
		idx, ok := byKey[k]
		if !ok {
			continue
		}
		for _, i := range idx {
			ordered = append(ordered, pages[i])
			used[i] = true
		}
		delete(byKey, k)
	}
	for i, p := range pages {
		if !used[i] {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// renderAll renders pages with at most renderConcurrency in flight. It
// returns the written files in page order and the failures. A failing page
// never stops its siblings; cancellation stops new dispatches.
func (o *Orchestrator) renderAll(ctx context.Context, pages []*url.URL, tempDir string, progress func(int), log *slog.Logger) ([]string, []RenderFailure) {
	var (
		count    atomic.Int32
		mu       sync.Mutex
		paths    = make([]string, len(pages))
		failures []RenderFailure
		g        errgroup.Group
	)
	g.SetLimit(renderConcurrency)

	for i, u := range pages {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fail := func(err error) {
				log.Warn("page render failed", "index", i, "url", u.String(), "error", err)
				mu.Lock()
				failures = append(failures, RenderFailure{Index: i, URL: u, Err: err})
				mu.Unlock()
			}
			defer func() {
				if p := recover(); p != nil {
					fail(fmt.Errorf("%w: panic: %v", ErrRenderCrash, p))
				}
			}()

			target := filepath.Join(tempDir, pageFileName(i))
			path, err := o.renderer.RenderPage(ctx, u, target)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				fail(err)
				return nil
			}
			if path == "" {
				path = target
			}

			// The lock keeps progress snapshots in counter order.
			mu.Lock()
			paths[i] = path
			progress(int(count.Add(1)))
			mu.Unlock()
			log.Debug("page rendered", "index", i, "url", u.String())
			return nil
		})
	}
	_ = g.Wait()

	rendered := make([]string, 0, len(pages))
	for _, p := range paths {
		if p != "" {
			rendered = append(rendered, p)
		}
	}
	slices.SortFunc(failures, func(a, b RenderFailure) int { return a.Index - b.Index })
	return rendered, failures
}

// allFailedError aggregates every failure into one error.
func allFailedError(failures []RenderFailure) error {
	if len(failures) == 0 {
		return ErrAllPagesFailed
	}
	parts := make([]string, len(failures))
	for i, f := range failures {
		parts[i] = f.String()
	}
	return fmt.Errorf("%w: %s", ErrAllPagesFailed, strings.Join(parts, "; "))
}

// partialFailureMessage is the non-fatal message of a degraded job.
func partialFailureMessage(failures []RenderFailure, total int) string {
	urls := make([]string, len(failures))
	for i, f := range failures {
		urls[i] = f.URL.String()
	}
	return fmt.Sprintf("%d of %d pages failed to render: %s", len(failures), total, strings.Join(urls, ", "))
}

func (o *Orchestrator) logPageCount(path string, log *slog.Logger) {
	pc, ok := o.merger.(pageCounter)
	if !ok {
		return
	}
	n, err := pc.PageCount(path)
	if err != nil {
		log.Debug("page count unavailable", "error", err)
		return
	}
	log.Info("book merged", "path", path, "pdf_pages", n)
}

// SavePartial merges whatever page artifacts exist in the job's temp
// directory into partial{jobID}.pdf. It fails with ErrNoPartialPages when
// there is nothing to merge and ErrMergeFailed when merging fails.
func (o *Orchestrator) SavePartial(ctx context.Context, jobID, tempDir string) (string, int, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if tempDir == "" {
		tempDir = o.TempDir(jobID)
	}
	paths, err := filepath.Glob(filepath.Join(tempDir, pagePattern))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}
	if len(paths) == 0 {
		return "", 0, ErrNoPartialPages
	}
	// Zero-padded names sort in page order.
	slices.Sort(paths)

	output := filepath.Join(tempDir, partialFileName(jobID))
	if err := o.merger.MergeFiles(paths, output); err != nil {
		if errors.Is(err, ErrNoPages) {
			return "", 0, ErrNoPartialPages
		}
		return "", 0, fmt.Errorf("%w: %w", ErrMergeFailed, err)
	}
	o.logger.Info("partial book saved", "job_id", jobID, "pages", len(paths), "path", output)
	return output, len(paths), nil
}
