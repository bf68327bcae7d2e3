package main

import (
	"errors"
	"os"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/hints"
)

// Exit codes for site2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or URL
	ExitIO      = 3 // Output not writable, file not found
	ExitBrowser = 4 // Browser/Chrome errors
)

// CLI errors.
var (
	ErrUsage       = errors.New("invalid usage")
	ErrNoURL       = errors.New("no URL given")
	ErrTooManyArgs = errors.New("too many arguments")
	ErrInterrupted = errors.New("interrupted")
	ErrWriteOutput = errors.New("failed to write output")
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, site2pdf.ErrBrowserConnect) ||
		errors.Is(err, site2pdf.ErrPageCreate) ||
		errors.Is(err, site2pdf.ErrRenderCrash) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, site2pdf.ErrWritePDF) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	var verr *site2pdf.ValidationError
	if errors.As(err, &verr) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoURL) ||
		errors.Is(err, ErrTooManyArgs) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable suggestion for err, or "".
func hintFor(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, site2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, site2pdf.ErrRenderTimeout):
		return hints.ForTimeout()
	case site2pdf.IsValidationKind(err, site2pdf.ForbiddenHost),
		site2pdf.IsValidationKind(err, site2pdf.ForbiddenIP):
		return hints.ForForbiddenTarget()
	case site2pdf.IsValidationKind(err, site2pdf.HTTPFailure),
		site2pdf.IsValidationKind(err, site2pdf.NonHTMLContent):
		return hints.ForHTTPFailure()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	case errors.Is(err, site2pdf.ErrNoPartialPages):
		return hints.ForPartialSave()
	}
	return ""
}
