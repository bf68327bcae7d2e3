package site2pdf

import (
	"errors"
	"fmt"
	"net/url"
)

// Sentinel errors for library operations.
var (
	// Renderer errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRenderCrash    = errors.New("renderer crashed")
	ErrRenderTimeout  = errors.New("render timed out")
	ErrWritePDF       = errors.New("failed to write PDF file")

	// Pipeline errors.
	ErrNoPages        = errors.New("no pages to merge")
	ErrAllPagesFailed = errors.New("no pages rendered")
	ErrMergeFailed    = errors.New("merging pages failed")
	ErrCancelled      = errors.New("job was cancelled by user")
	ErrContentsPage   = errors.New("contents page generation failed")

	// Job management errors.
	ErrJobNotFound     = errors.New("job not found")
	ErrAlreadyFinished = errors.New("job already finished")
	ErrCannotCancel    = errors.New("job cannot be cancelled")
	ErrNoPartialPages  = errors.New("no rendered pages to save")
	ErrManagerClosed   = errors.New("job manager is closed")
)

// ValidationKind categorizes why a seed URL was rejected.
type ValidationKind int

const (
	MalformedURL ValidationKind = iota + 1
	DisallowedScheme
	ForbiddenHost
	ForbiddenIP
	HTTPFailure
	NonHTMLContent
)

func (k ValidationKind) String() string {
	switch k {
	case MalformedURL:
		return "Malformed URL"
	case DisallowedScheme:
		return "Disallowed scheme"
	case ForbiddenHost:
		return "Forbidden host"
	case ForbiddenIP:
		return "Forbidden IP"
	case HTTPFailure:
		return "HTTP failure"
	case NonHTMLContent:
		return "Non-HTML content"
	default:
		return "Invalid URL"
	}
}

// ValidationError is returned by URLValidator.Validate. A validation error
// aborts the job before any crawling or rendering starts.
type ValidationError struct {
	Kind   ValidationKind
	URL    string
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(kind ValidationKind, raw, detail string, err error) *ValidationError {
	return &ValidationError{Kind: kind, URL: raw, Detail: detail, Err: err}
}

// IsValidationKind reports whether err is a ValidationError of the given kind.
func IsValidationKind(err error, kind ValidationKind) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Kind == kind
}

// RenderFailure records one page that could not be rendered.
type RenderFailure struct {
	Index int
	URL   *url.URL
	Err   error
}

func (f RenderFailure) String() string {
	return fmt.Sprintf("page %d (%s): %v", f.Index, f.URL, f.Err)
}
