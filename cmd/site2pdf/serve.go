package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alnah/go-site2pdf/internal/server"
)

// runServeCmd parses serve flags and runs the HTTP API until ctx is done.
func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments, got %q", ErrTooManyArgs, positional)
	}

	warnUnknownEnvVars(env.Stderr)
	cfg, err := loadSettings(&flags.common, loadEnvConfig())
	if err != nil {
		return err
	}
	mergeCrawlFlags(&flags.crawl, flags.common.set, cfg)
	mergeRenderFlags(&flags.render, flags.common.set, cfg)
	if flags.common.set["host"] {
		cfg.Server.Host = flags.host
	}
	if flags.common.set["port"] {
		cfg.Server.Port = flags.port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, cfg.Log, &flags.common)
	jobs, closeJobs := env.NewJobService(cfg, logger)
	defer func() {
		if err := closeJobs(); err != nil {
			logger.Warn("closing job service", "error", err)
		}
	}()

	srv, err := server.New(server.Config{
		Host:   cfg.Server.Host,
		Port:   strconv.Itoa(cfg.Server.Port),
		Jobs:   jobs,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	return srv.Start(ctx)
}
