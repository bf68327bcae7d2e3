package main

import (
	"context"
	"errors"
	"log/slog"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/assets"
	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/server"
)

// jobRunner is the part of site2pdf.Orchestrator that convert drives.
type jobRunner interface {
	Generate(ctx context.Context, rawURL, title, jobID string, sink site2pdf.ProgressSink) error
	SavePartial(ctx context.Context, jobID, tempDir string) (string, int, error)
	TempDir(jobID string) string
}

var _ jobRunner = (*site2pdf.Orchestrator)(nil)

// buildOrchestrator wires the production pipeline from cfg. The returned
// function closes the browser pool.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger) (*site2pdf.Orchestrator, func() error) {
	poolSize := site2pdf.ResolvePoolSize(cfg.Render.Workers)
	logger.Debug("renderer pool", "size", poolSize)

	attempts := uint(0)
	if cfg.Render.Retries > 0 {
		attempts = uint(cfg.Render.Retries)
	}
	pool := site2pdf.NewRendererPool(poolSize,
		site2pdf.WithRenderTimeout(cfg.Render.Timeout),
		site2pdf.WithLaunchAttempts(attempts),
		site2pdf.WithRendererLogger(logger),
	)

	fetcher := site2pdf.NewHTTPFetcher(
		site2pdf.WithFetchTimeout(cfg.Crawl.FetchTimeout),
		site2pdf.WithUserAgent(cfg.Crawl.UserAgent),
	)
	discoverer := site2pdf.NewLinkDiscoverer(fetcher,
		site2pdf.WithMaxPages(cfg.Crawl.MaxPages),
		site2pdf.WithMaxDepth(cfg.Crawl.MaxDepth),
		site2pdf.WithDiscoverLogger(logger),
	)

	opts := []site2pdf.OrchestratorOption{
		site2pdf.WithFetcher(fetcher),
		site2pdf.WithDiscoverer(discoverer),
		site2pdf.WithWorkDir(cfg.Storage.WorkDir),
		site2pdf.WithLogger(logger),
	}
	if cfg.Render.ContentsPage {
		opts = append(opts,
			site2pdf.WithContentsPage(pool),
			site2pdf.WithContentsTheme(loadTheme(cfg.Render.AssetsDir, logger)),
			site2pdf.WithDateFormat(cfg.Render.DateFormat),
		)
	}

	orch := site2pdf.NewOrchestrator(pool, site2pdf.NewPDFMerger(logger), opts...)
	return orch, pool.Close
}

// loadTheme returns the contents theme from dir, or nil (the embedded theme)
// when dir is unusable.
func loadTheme(dir string, logger *slog.Logger) *assets.Theme {
	if dir == "" {
		return nil
	}
	th, err := assets.LoadContentsTheme(dir)
	if err != nil {
		logger.Warn("using built-in contents theme", "assetsDir", dir, "error", err)
		return nil
	}
	logger.Debug("contents theme loaded", "assetsDir", dir)
	return th
}

func newRunner(cfg *config.Config, logger *slog.Logger) (jobRunner, func() error) {
	return buildOrchestrator(cfg, logger)
}

func newJobService(cfg *config.Config, logger *slog.Logger) (server.JobService, func() error) {
	orch, closePool := buildOrchestrator(cfg, logger)
	mgr := site2pdf.NewManager(orch, site2pdf.WithManagerLogger(logger))
	return mgr, func() error {
		// Jobs must stop before their browsers go away.
		return errors.Join(mgr.Close(), closePool())
	}
}
