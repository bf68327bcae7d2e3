package config

// Notes:
// - LoadConfig name-resolution tests change the working directory and the
//   user config directory, so they cannot run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// TestDefaultConfig - Built-in settings
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Crawl.MaxPages != 300 {
		t.Errorf("Crawl.MaxPages = %d, want 300", cfg.Crawl.MaxPages)
	}
	if cfg.Crawl.MaxDepth != 10 {
		t.Errorf("Crawl.MaxDepth = %d, want 10", cfg.Crawl.MaxDepth)
	}
	if cfg.Render.ContentsPage {
		t.Error("Render.ContentsPage = true, want false")
	}
	if cfg.Render.DateFormat != "long" {
		t.Errorf("Render.DateFormat = %q, want long", cfg.Render.DateFormat)
	}
	if cfg.Storage.WorkDir != "" {
		t.Errorf("Storage.WorkDir = %q, want empty", cfg.Storage.WorkDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

// ---------------------------------------------------------------------------
// TestValidate - Range and length checks
// ---------------------------------------------------------------------------

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "negative port",
			mutate:  func(c *Config) { c.Server.Port = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "port above 65535",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "host too long",
			mutate:  func(c *Config) { c.Server.Host = strings.Repeat("a", MaxHostLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "max pages above limit",
			mutate:  func(c *Config) { c.Crawl.MaxPages = MaxPages + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.Crawl.MaxDepth = -1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "user agent too long",
			mutate:  func(c *Config) { c.Crawl.UserAgent = strings.Repeat("u", MaxUserAgentLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "negative fetch timeout",
			mutate:  func(c *Config) { c.Crawl.FetchTimeout = -time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "render timeout above limit",
			mutate:  func(c *Config) { c.Render.Timeout = MaxTimeout + time.Second },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many retries",
			mutate:  func(c *Config) { c.Render.Retries = MaxRetries + 1 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Render.Workers = -2 },
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unclosed date literal",
			mutate:  func(c *Config) { c.Render.DateFormat = "[at YYYY" },
			wantErr: ErrInvalidValue,
		},
		{
			name:   "date preset",
			mutate: func(c *Config) { c.Render.DateFormat = "iso" },
		},
		{
			name:   "date disabled",
			mutate: func(c *Config) { c.Render.DateFormat = "none" },
		},
		{
			name:    "assets dir too long",
			mutate:  func(c *Config) { c.Render.AssetsDir = strings.Repeat("d", MaxPathLength+1) },
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: ErrInvalidValue,
		},
		{
			name:   "log level is case-insensitive",
			mutate: func(c *Config) { c.Log.Level = "DEBUG" },
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Log.Format = "xml" },
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	if err := validateFieldLength("f", "1234567890", 10); err != nil {
		t.Errorf("value at limit: got %v, want nil", err)
	}
	err := validateFieldLength("f", "12345678901", 10)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Errorf("value over limit: got %v, want ErrFieldTooLong", err)
	}
	if err != nil && !strings.Contains(err.Error(), "11 chars, max 10") {
		t.Errorf("error %q should report lengths", err)
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading and name resolution
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		_, err := LoadConfig("")
		if !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("loads all sections from path", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "site2pdf.yaml", `server:
  host: 0.0.0.0
  port: 9090
crawl:
  maxPages: 50
  maxDepth: 3
  userAgent: "docs-bot/1.0"
  fetchTimeout: 45s
render:
  timeout: 2m
  contentsPage: true
  retries: 5
  workers: 2
  dateFormat: iso
  assetsDir: /etc/site2pdf/theme
storage:
  workDir: /var/lib/site2pdf
log:
  level: debug
  format: json
`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
			t.Errorf("Server = %+v", cfg.Server)
		}
		if cfg.Crawl.MaxPages != 50 || cfg.Crawl.MaxDepth != 3 {
			t.Errorf("Crawl limits = %d/%d, want 50/3", cfg.Crawl.MaxPages, cfg.Crawl.MaxDepth)
		}
		if cfg.Crawl.UserAgent != "docs-bot/1.0" {
			t.Errorf("Crawl.UserAgent = %q", cfg.Crawl.UserAgent)
		}
		if cfg.Crawl.FetchTimeout != 45*time.Second {
			t.Errorf("Crawl.FetchTimeout = %v, want 45s", cfg.Crawl.FetchTimeout)
		}
		if cfg.Render.Timeout != 2*time.Minute {
			t.Errorf("Render.Timeout = %v, want 2m", cfg.Render.Timeout)
		}
		if !cfg.Render.ContentsPage || cfg.Render.Retries != 5 || cfg.Render.Workers != 2 {
			t.Errorf("Render = %+v", cfg.Render)
		}
		if cfg.Render.DateFormat != "iso" || cfg.Render.AssetsDir != "/etc/site2pdf/theme" {
			t.Errorf("Render theme = %q/%q", cfg.Render.DateFormat, cfg.Render.AssetsDir)
		}
		if cfg.Storage.WorkDir != "/var/lib/site2pdf" {
			t.Errorf("Storage.WorkDir = %q", cfg.Storage.WorkDir)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v", cfg.Log)
		}
	})

	t.Run("absent values keep defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "partial.yaml", "crawl:\n  maxPages: 20\n")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Crawl.MaxPages != 20 {
			t.Errorf("Crawl.MaxPages = %d, want 20", cfg.Crawl.MaxPages)
		}
		if cfg.Crawl.MaxDepth != DefaultMaxDepth {
			t.Errorf("Crawl.MaxDepth = %d, want default %d", cfg.Crawl.MaxDepth, DefaultMaxDepth)
		}
		if cfg.Server.Port != DefaultPort {
			t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, DefaultPort)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "bad.yaml", "crawl:\n  maxPagez: 20\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value fails validation", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "bad.yaml", "log:\n  format: xml\n")

		_, err := LoadConfig(path)
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing path returns ErrConfigNotFound", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("config name prefers yaml over yml", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "myconfig.yaml", "crawl:\n  maxPages: 1\n")
		writeConfig(t, dir, "myconfig.yml", "crawl:\n  maxPages: 2\n")
		chdir(t, dir)

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Crawl.MaxPages != 1 {
			t.Errorf("Crawl.MaxPages = %d, want 1 (should prefer .yaml)", cfg.Crawl.MaxPages)
		}
	})

	t.Run("config name resolves yml when yaml not found", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "myconfig.yml", "crawl:\n  maxPages: 7\n")
		chdir(t, dir)

		cfg, err := LoadConfig("myconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Crawl.MaxPages != 7 {
			t.Errorf("Crawl.MaxPages = %d, want 7", cfg.Crawl.MaxPages)
		}
	})

	t.Run("config name resolves from user config directory", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", home)
		t.Setenv("HOME", home)
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			t.Skip("cannot get user config dir")
		}
		appConfigDir := filepath.Join(userConfigDir, appDir)
		if err := os.MkdirAll(appConfigDir, 0o755); err != nil {
			t.Fatalf("setup mkdir: %v", err)
		}
		writeConfig(t, appConfigDir, "testconfig.yaml", "crawl:\n  maxDepth: 4\n")
		chdir(t, t.TempDir())

		cfg, err := LoadConfig("testconfig")
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Crawl.MaxDepth != 4 {
			t.Errorf("Crawl.MaxDepth = %d, want 4", cfg.Crawl.MaxDepth)
		}
	})

	t.Run("config name not found lists searched paths", func(t *testing.T) {
		chdir(t, t.TempDir())

		_, err := LoadConfig("nonexistent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "nonexistent.yaml") {
			t.Errorf("error %q should list tried paths", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("site2pdf")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v, want at least local paths", paths)
	}
	if paths[0] != "site2pdf.yaml" || paths[1] != "site2pdf.yml" {
		t.Errorf("local paths = %v, want site2pdf.yaml then site2pdf.yml", paths[:2])
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, appDir) {
			t.Errorf("user path %q should be under %s", p, appDir)
		}
	}
}
