package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/hints"
)

// loadSettings builds the effective config: defaults, then the config file
// (flag or SITE2PDF_CONFIG), then SITE2PDF_* variables.
func loadSettings(common *commonFlags, env *envConfig) (*config.Config, error) {
	name := common.config
	if name == "" {
		name = env.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w%s", err, configHint(err, name))
		}
		cfg = loaded
	}

	applyEnvConfig(env, cfg)
	mergeCommonFlags(common, cfg)
	return cfg, nil
}

func configHint(err error, name string) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	return hints.ForConfigNotFound(config.SearchPaths(name))
}

// mergeCommonFlags applies log flags. CLI values override config values.
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.set["log-level"] {
		cfg.Log.Level = f.logLevel
	}
	if f.set["log-format"] {
		cfg.Log.Format = f.logFormat
	}
}

// mergeCrawlFlags applies discovery flags the user passed.
func mergeCrawlFlags(f *crawlFlags, set map[string]bool, cfg *config.Config) {
	if set["max-pages"] {
		cfg.Crawl.MaxPages = f.maxPages
	}
	if set["max-depth"] {
		cfg.Crawl.MaxDepth = f.maxDepth
	}
	if set["user-agent"] {
		cfg.Crawl.UserAgent = f.userAgent
	}
	if set["fetch-timeout"] {
		cfg.Crawl.FetchTimeout = f.fetchTimeout
	}
}

// mergeRenderFlags applies browser flags the user passed.
func mergeRenderFlags(f *renderFlags, set map[string]bool, cfg *config.Config) {
	if set["timeout"] {
		cfg.Render.Timeout = f.timeout
	}
	if set["workers"] {
		cfg.Render.Workers = f.workers
	}
	if set["contents"] {
		cfg.Render.ContentsPage = f.contents
	}
	if set["date-format"] {
		cfg.Render.DateFormat = f.dateFormat
	}
	if set["assets-dir"] {
		cfg.Render.AssetsDir = f.assetsDir
	}
	if set["work-dir"] {
		cfg.Storage.WorkDir = f.workDir
	}
}

// newLogger builds the slog logger. -v forces debug and -q forces error,
// otherwise the configured level applies.
func newLogger(w io.Writer, cfg config.LogConfig, common *commonFlags) *slog.Logger {
	level := parseLevel(cfg.Level)
	switch {
	case common.verbose:
		level = slog.LevelDebug
	case common.quiet:
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
