package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-site2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string        // SITE2PDF_CONFIG: config file path
	Timeout    time.Duration // SITE2PDF_TIMEOUT: per-page render timeout
	WorkDir    string        // SITE2PDF_WORK_DIR: job files directory

	// Tier 2 - Crawl
	MaxPages     int           // SITE2PDF_MAX_PAGES
	MaxDepth     int           // SITE2PDF_MAX_DEPTH (-1 = unset)
	UserAgent    string        // SITE2PDF_USER_AGENT
	FetchTimeout time.Duration // SITE2PDF_FETCH_TIMEOUT

	// Tier 3 - Server and runtime
	Host      string // SITE2PDF_HOST
	Port      int    // SITE2PDF_PORT
	Workers   int    // SITE2PDF_WORKERS
	Contents  *bool  // SITE2PDF_CONTENTS
	LogLevel  string // SITE2PDF_LOG_LEVEL
	LogFormat string // SITE2PDF_LOG_FORMAT

	// Tier 4 - Contents page
	DateFormat string // SITE2PDF_DATE_FORMAT
	AssetsDir  string // SITE2PDF_ASSETS_DIR
}

// knownEnvVars lists valid SITE2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"SITE2PDF_CONFIG":   true,
	"SITE2PDF_TIMEOUT":  true,
	"SITE2PDF_WORK_DIR": true,
	// Tier 2 - Crawl
	"SITE2PDF_MAX_PAGES":     true,
	"SITE2PDF_MAX_DEPTH":     true,
	"SITE2PDF_USER_AGENT":    true,
	"SITE2PDF_FETCH_TIMEOUT": true,
	// Tier 3 - Server and runtime
	"SITE2PDF_HOST":       true,
	"SITE2PDF_PORT":       true,
	"SITE2PDF_WORKERS":    true,
	"SITE2PDF_CONTENTS":   true,
	"SITE2PDF_LOG_LEVEL":  true,
	"SITE2PDF_LOG_FORMAT": true,
	// Tier 4 - Contents page
	"SITE2PDF_DATE_FORMAT": true,
	"SITE2PDF_ASSETS_DIR":  true,
	// Read by doctor
	"SITE2PDF_CONTAINER": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored rather than reported.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("SITE2PDF_CONFIG"),
		WorkDir:    os.Getenv("SITE2PDF_WORK_DIR"),
		UserAgent:  os.Getenv("SITE2PDF_USER_AGENT"),
		Host:       os.Getenv("SITE2PDF_HOST"),
		LogLevel:   os.Getenv("SITE2PDF_LOG_LEVEL"),
		LogFormat:  os.Getenv("SITE2PDF_LOG_FORMAT"),
		DateFormat: os.Getenv("SITE2PDF_DATE_FORMAT"),
		AssetsDir:  os.Getenv("SITE2PDF_ASSETS_DIR"),
		MaxDepth:   -1,
	}

	cfg.Timeout = envDuration("SITE2PDF_TIMEOUT")
	cfg.FetchTimeout = envDuration("SITE2PDF_FETCH_TIMEOUT")
	cfg.MaxPages = envPositiveInt("SITE2PDF_MAX_PAGES")
	cfg.Port = envPositiveInt("SITE2PDF_PORT")
	cfg.Workers = envPositiveInt("SITE2PDF_WORKERS")

	if v := os.Getenv("SITE2PDF_MAX_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d >= 0 {
			cfg.MaxDepth = d
		}
	}
	if v := os.Getenv("SITE2PDF_CONTENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Contents = &b
		}
	}

	return cfg
}

func envDuration(name string) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return 0
}

func envPositiveInt(name string) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// warnUnknownEnvVars logs warnings for unrecognized SITE2PDF_* variables.
// Helps catch typos like SITE2PDF_MAXPAGES instead of SITE2PDF_MAX_PAGES.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "SITE2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Set variables override the config file; CLI flags are applied later via
// the merge functions, giving: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Timeout > 0 {
		cfg.Render.Timeout = env.Timeout
	}
	if env.WorkDir != "" {
		cfg.Storage.WorkDir = env.WorkDir
	}

	if env.MaxPages > 0 {
		cfg.Crawl.MaxPages = env.MaxPages
	}
	if env.MaxDepth >= 0 {
		cfg.Crawl.MaxDepth = env.MaxDepth
	}
	if env.UserAgent != "" {
		cfg.Crawl.UserAgent = env.UserAgent
	}
	if env.FetchTimeout > 0 {
		cfg.Crawl.FetchTimeout = env.FetchTimeout
	}

	if env.Host != "" {
		cfg.Server.Host = env.Host
	}
	if env.Port > 0 {
		cfg.Server.Port = env.Port
	}
	if env.Workers > 0 {
		cfg.Render.Workers = env.Workers
	}
	if env.Contents != nil {
		cfg.Render.ContentsPage = *env.Contents
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.LogFormat != "" {
		cfg.Log.Format = env.LogFormat
	}
	if env.DateFormat != "" {
		cfg.Render.DateFormat = env.DateFormat
	}
	if env.AssetsDir != "" {
		cfg.Render.AssetsDir = env.AssetsDir
	}
}
