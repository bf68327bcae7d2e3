package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// runConvertCmd parses convert flags and converts one site.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert converts the site named by positional[0] and copies the book
// to the output location. On interrupt it saves whatever pages were
// rendered when --save-on-interrupt is set.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment) error {
	rawURL, err := resolveURLArg(positional)
	if err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr)
	cfg, err := loadSettings(&flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeCrawlFlags(&flags.crawl, flags.common.set, cfg)
	mergeRenderFlags(&flags.render, flags.common.set, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log, &flags.common)
	runner, closeRunner := env.NewRunner(cfg, logger)
	defer func() {
		if err := closeRunner(); err != nil {
			logger.Warn("closing renderer", "error", err)
		}
	}()

	jobID := newJobID()
	tempDir := runner.TempDir(jobID)
	if flags.keepTemp {
		logger.Info("keeping job files", "dir", tempDir)
	} else {
		defer func() { _ = os.RemoveAll(tempDir) }()
	}

	progress := newProgressPrinter(env.Stderr, flags.common.quiet)
	genErr := runner.Generate(ctx, rawURL, flags.title, jobID, progress.update)
	job := progress.last()

	if genErr != nil {
		if ctx.Err() != nil {
			logger.Warn("conversion interrupted", "cause", context.Cause(ctx))
			return interrupted(runner, jobID, tempDir, flags, env, logger)
		}
		return genErr
	}

	dest, err := deliver(job.Output(), flags.output)
	if err != nil {
		return err
	}
	if msg := job.Error(); msg != "" {
		fmt.Fprintf(env.Stderr, "warning: %s\n", msg)
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Wrote %s (%d of %d pages)\n", dest, job.PagesRendered, job.PagesTotal)
	}
	return nil
}

// resolveURLArg returns the single positional URL argument.
func resolveURLArg(args []string) (string, error) {
	switch {
	case len(args) == 0:
		return "", ErrNoURL
	case len(args) > 1:
		return "", fmt.Errorf("%w: expected one URL, got %d", ErrTooManyArgs, len(args))
	}
	return args[0], nil
}

// interrupted handles a cancelled conversion, saving rendered pages when
// asked to. The returned error always wraps ErrInterrupted.
func interrupted(runner jobRunner, jobID, tempDir string, flags *convertFlags, env *Environment, logger *slog.Logger) error {
	if !flags.saveOnInterrupt {
		return ErrInterrupted
	}

	// The signal context is already done.
	path, pages, err := runner.SavePartial(context.Background(), jobID, tempDir)
	if err != nil {
		if errors.Is(err, site2pdf.ErrNoPartialPages) {
			logger.Info("no pages rendered before interrupt")
		}
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}

	dest, err := deliver(path, flags.output)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInterrupted, err)
	}
	fmt.Fprintf(env.Stdout, "Saved %d rendered pages to %s\n", pages, dest)
	return ErrInterrupted
}

// deliver copies the finished book out of the job directory. An empty
// output means the current directory; an existing directory keeps the
// book's file name.
func deliver(src, output string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("%w: no output produced", ErrWriteOutput)
	}

	dest := output
	switch {
	case dest == "":
		dest = filepath.Base(src)
	case fileutil.IsDir(dest):
		dest = filepath.Join(dest, filepath.Base(src))
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
	}
	if err := fileutil.CopyFile(src, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return dest, nil
}

func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// progressPrinter prints page progress and keeps the latest job snapshot.
// Snapshots may arrive from render workers.
type progressPrinter struct {
	w     io.Writer
	quiet bool

	mu      sync.Mutex
	job     site2pdf.Job
	printed int
}

func newProgressPrinter(w io.Writer, quiet bool) *progressPrinter {
	return &progressPrinter{w: w, quiet: quiet, printed: -1}
}

func (p *progressPrinter) update(j site2pdf.Job) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.job = j
	if p.quiet || j.State != site2pdf.StateRunning || j.PagesTotal == 0 {
		return
	}
	if j.PagesRendered == p.printed {
		return
	}
	p.printed = j.PagesRendered
	fmt.Fprintf(p.w, "Rendering: %d/%d pages\n", j.PagesRendered, j.PagesTotal)
}

func (p *progressPrinter) last() site2pdf.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.job
}
