package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/server"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and the factories that build the conversion backend.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// NewRunner builds the single-job backend used by convert.
	NewRunner func(cfg *config.Config, logger *slog.Logger) (jobRunner, func() error)
	// NewJobService builds the job manager used by serve.
	NewJobService func(cfg *config.Config, logger *slog.Logger) (server.JobService, func() error)
}

// DefaultEnv returns the production environment with a browser-backed
// pipeline.
func DefaultEnv() *Environment {
	return &Environment{
		Now:           time.Now,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		NewRunner:     newRunner,
		NewJobService: newJobService,
	}
}
