package site2pdf

import (
	"context"
	"net"
	"net/url"
)

// Resolver resolves a host name to its IP addresses.
type Resolver interface {
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// FetchResult is the outcome of an HTTP GET after redirects were followed.
type FetchResult struct {
	FinalURL    *url.URL
	StatusCode  int
	ContentType string
	Body        string
}

// HTMLFetcher performs plain HTTP GET requests.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, u *url.URL) (*FetchResult, error)
}

// PageRenderer drives the headless browser. RenderPage writes a PDF of the
// live page to outputPath; RenderedHTML returns the DOM after scripts ran.
type PageRenderer interface {
	RenderPage(ctx context.Context, u *url.URL, outputPath string) (string, error)
	RenderedHTML(ctx context.Context, u *url.URL) (string, error)
}

// HTMLRenderer renders a standalone HTML document to a PDF file.
type HTMLRenderer interface {
	RenderHTML(ctx context.Context, htmlContent, outputPath string) error
}

// Merger concatenates PDF files in order. Missing inputs are skipped; when
// nothing remains it fails with ErrNoPages.
type Merger interface {
	MergeFiles(paths []string, outputPath string) error
}

// Compile-time interface implementation checks.
var (
	_ Resolver     = (*netResolver)(nil)
	_ HTMLFetcher  = (*httpFetcher)(nil)
	_ PageRenderer = (*RodRenderer)(nil)
	_ HTMLRenderer = (*RodRenderer)(nil)
	_ PageRenderer = (*RendererPool)(nil)
	_ HTMLRenderer = (*RendererPool)(nil)
	_ Merger       = (*PDFMerger)(nil)
	_ TOCExtractor = (*GenericExtractor)(nil)
)
