package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-site2pdf/internal/dateutil"
	"github.com/alnah/go-site2pdf/internal/fileutil"
	"github.com/alnah/go-site2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// appDir is the directory name under the user config directory.
const appDir = "go-site2pdf"

// Field limits.
const (
	MaxHostLength      = 253  // DNS name limit
	MaxUserAgentLength = 512  // Real browsers stay well below
	MaxPathLength      = 4096 // PATH_MAX on Linux
	MaxPages           = 5000
	MaxDepth           = 50
	MaxRetries         = 10
	MaxTimeout         = 30 * time.Minute
)

// Defaults.
const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultMaxPages     = 300
	DefaultMaxDepth     = 10
	DefaultFetchTimeout = 30 * time.Second
	DefaultRenderTime   = 60 * time.Second
	DefaultRetries      = 3
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config holds all settings of the CLI and the HTTP server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Render  RenderConfig  `yaml:"render"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig defines where `site2pdf serve` listens.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CrawlConfig bounds site discovery.
type CrawlConfig struct {
	MaxPages     int           `yaml:"maxPages"`
	MaxDepth     int           `yaml:"maxDepth"`
	UserAgent    string        `yaml:"userAgent"`    // Empty = built-in browser-like UA
	FetchTimeout time.Duration `yaml:"fetchTimeout"` // Per request, e.g. "30s"
}

// RenderConfig controls the headless browser.
type RenderConfig struct {
	Timeout      time.Duration `yaml:"timeout"`      // Per page, e.g. "60s"
	ContentsPage bool          `yaml:"contentsPage"` // Prepend a contents page built from the TOC
	Retries      int           `yaml:"retries"`      // Browser launch attempts
	Workers      int           `yaml:"workers"`      // Browsers in the pool (0 = auto)
	DateFormat   string        `yaml:"dateFormat"`   // Capture date on the contents page ("none" = omit)
	AssetsDir    string        `yaml:"assetsDir"`    // Overrides for styles/contents.css and templates/contents.html
}

// StorageConfig defines where job files live.
type StorageConfig struct {
	WorkDir string `yaml:"workDir"` // Empty = os.TempDir()/site2pdf
}

// LogConfig defines structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Validate checks ranges and lengths.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("server.host", c.Server.Host, MaxHostLength); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be between 0 and 65535, got %d", ErrInvalidValue, c.Server.Port)
	}

	if c.Crawl.MaxPages < 0 || c.Crawl.MaxPages > MaxPages {
		return fmt.Errorf("%w: crawl.maxPages must be between 0 and %d, got %d", ErrInvalidValue, MaxPages, c.Crawl.MaxPages)
	}
	if c.Crawl.MaxDepth < 0 || c.Crawl.MaxDepth > MaxDepth {
		return fmt.Errorf("%w: crawl.maxDepth must be between 0 and %d, got %d", ErrInvalidValue, MaxDepth, c.Crawl.MaxDepth)
	}
	if err := validateFieldLength("crawl.userAgent", c.Crawl.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateTimeout("crawl.fetchTimeout", c.Crawl.FetchTimeout); err != nil {
		return err
	}

	if err := validateTimeout("render.timeout", c.Render.Timeout); err != nil {
		return err
	}
	if c.Render.Retries < 0 || c.Render.Retries > MaxRetries {
		return fmt.Errorf("%w: render.retries must be between 0 and %d, got %d", ErrInvalidValue, MaxRetries, c.Render.Retries)
	}
	if c.Render.Workers < 0 {
		return fmt.Errorf("%w: render.workers must not be negative, got %d", ErrInvalidValue, c.Render.Workers)
	}
	if c.Render.DateFormat != "" {
		if err := dateutil.Validate(c.Render.DateFormat); err != nil {
			return fmt.Errorf("%w: render.dateFormat: %v", ErrInvalidValue, err)
		}
	}
	if err := validateFieldLength("render.assetsDir", c.Render.AssetsDir, MaxPathLength); err != nil {
		return err
	}

	if err := validateFieldLength("storage.workDir", c.Storage.WorkDir, MaxPathLength); err != nil {
		return err
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "error":
			// valid
		default:
			return fmt.Errorf("%w: log.level %q (must be debug, info, warn, or error)", ErrInvalidValue, c.Log.Level)
		}
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case "text", "json":
			// valid
		default:
			return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateTimeout(fieldName string, d time.Duration) error {
	if d < 0 || d > MaxTimeout {
		return fmt.Errorf("%w: %s must be between 0 and %s, got %s", ErrInvalidValue, fieldName, MaxTimeout, d)
	}
	return nil
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Crawl: CrawlConfig{
			MaxPages:     DefaultMaxPages,
			MaxDepth:     DefaultMaxDepth,
			FetchTimeout: DefaultFetchTimeout,
		},
		Render: RenderConfig{
			Timeout:    DefaultRenderTime,
			Retries:    DefaultRetries,
			DateFormat: dateutil.DefaultFormat,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values absent from the file keep their defaults.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations LoadConfig tries for name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name in standard locations:
// the current directory, then the user config directory.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
