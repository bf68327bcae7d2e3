package site2pdf

import (
	"io"
	"log/slog"
)

// discardLogger is the default for library types: nothing is printed unless
// the caller passes a logger.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
