package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	site2pdf "github.com/alnah/go-site2pdf"
	"github.com/alnah/go-site2pdf/internal/assets"
	"github.com/alnah/go-site2pdf/internal/config"
	"github.com/alnah/go-site2pdf/internal/dateutil"
	"github.com/alnah/go-site2pdf/internal/fileutil"
	"github.com/alnah/go-site2pdf/internal/hints"
)

const versionProbeTimeout = 10 * time.Second

const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Render   renderInfo `json:"render"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`

	sections []*section
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	WorkDir         string `json:"work_dir"`
	WorkDirWritable bool   `json:"work_dir_writable"`
}

// renderInfo describes how jobs will render with the effective config.
type renderInfo struct {
	Workers    int    `json:"workers"`
	Theme      string `json:"contents_theme"` // "embedded" or the custom directory
	DateFormat string `json:"date_format"`
	DateSample string `json:"date_sample,omitempty"`
}

// section is one titled block of the human report.
type section struct {
	title string
	lines []string // already tagged [OK] or [ERROR]
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// add starts a new section of the human report.
func (r *doctorResult) add(title string) *section {
	s := &section{title: title}
	r.sections = append(r.sections, s)
	return s
}

func (s *section) ok(format string, args ...any) {
	s.lines = append(s.lines, "[OK] "+fmt.Sprintf(format, args...))
}

func (s *section) bad(format string, args ...any) {
	s.lines = append(s.lines, "[ERROR] "+fmt.Sprintf(format, args...))
}

// doctorCheck inspects one area and records its findings on r.
type doctorCheck func(r *doctorResult)

// runDoctorCmd executes the doctor command and returns an exit code:
// ExitSuccess when ready (warnings included), ExitGeneral on errors and
// ExitUsage on bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	workDir := fs.String("work-dir", "", "job directory to check")
	configName := fs.StringP("config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	cfg, cfgErr := loadSettings(&commonFlags{config: *configName}, loadEnvConfig())
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	result := runDoctor(cfg, firstNonEmpty(*workDir, cfg.Storage.WorkDir, site2pdf.DefaultWorkDir()))
	if cfgErr != nil {
		result.fail("Config: %v", cfgErr)
		result.Status = statusErrors
	}

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func runDoctor(cfg *config.Config, workDir string) *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  os.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: os.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checks := []doctorCheck{
		checkChrome,
		checkEnvironment,
		func(r *doctorResult) { checkRender(r, cfg.Render) },
		func(r *doctorResult) { checkWorkDir(r, workDir) },
	}
	for _, check := range checks {
		check(r)
	}

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

func checkChrome(r *doctorResult) {
	s := r.add("Chrome/Chromium")

	bin := r.Env.BrowserBin
	if bin == "" {
		found := false
		if bin, found = launcher.LookPath(); !found {
			s.bad("Not found")
			r.fail("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		s.bad("Not found at %s", bin)
		r.fail("Chrome not found at %s", bin)
		return
	}

	r.Chrome.Found = true
	r.Chrome.Path = bin
	r.Chrome.Sandbox = r.Env.NoSandbox != "1"
	s.ok("Found at %s", bin)

	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, bin, "--version").Output() // #nosec G204 -- browser path from launcher or ROD_BROWSER_BIN
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
	} else {
		r.Chrome.Version = strings.TrimSpace(string(out))
		s.ok("Version: %s", r.Chrome.Version)
	}

	if r.Chrome.Sandbox {
		s.ok("Sandbox: enabled")
	} else {
		s.ok("Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
}

func checkEnvironment(r *doctorResult) {
	s := r.add("Environment")
	s.ok("Platform: %s/%s", r.Env.OS, r.Env.Arch)

	env := hints.System()
	r.Env.Container, r.Env.ContainerHint = env.Container()
	r.Env.CI = env.InCI()
	if r.Env.Container {
		s.ok("Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		s.ok("CI: detected")
	}
	if env.NeedsNoSandbox() {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkWorkDir creates dir if needed and writes a scratch file into it.
func checkWorkDir(r *doctorResult, dir string) {
	s := r.add("System")
	r.System.WorkDir = dir

	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.bad("Work directory: %s cannot be created", dir)
		r.fail("Work directory cannot be created: %s", dir)
		return
	}
	_, cleanup, err := fileutil.WriteScratch(dir, "site2pdf-doctor-*", "ok")
	if err != nil {
		s.bad("Work directory: %s not writable", dir)
		r.fail("Work directory not writable: %s", dir)
		return
	}
	cleanup()

	r.System.WorkDirWritable = true
	s.ok("Work directory: %s", dir)
}

// checkRender reports the browser pool size and whether the contents page
// theme and date format are usable.
func checkRender(r *doctorResult, rc config.RenderConfig) {
	s := r.add("Rendering")

	r.Render.Workers = site2pdf.ResolvePoolSize(rc.Workers)
	s.ok("Browser pool: %d", r.Render.Workers)

	r.Render.Theme = "embedded"
	if rc.AssetsDir != "" {
		if _, err := assets.LoadContentsTheme(rc.AssetsDir); err != nil {
			r.warn("Contents theme in %s unusable, using embedded: %v", rc.AssetsDir, err)
		} else {
			r.Render.Theme = rc.AssetsDir
		}
	}
	s.ok("Contents theme: %s", r.Render.Theme)

	r.Render.DateFormat = firstNonEmpty(rc.DateFormat, dateutil.DefaultFormat)
	sample, err := dateutil.Format(time.Now(), r.Render.DateFormat)
	switch {
	case err != nil:
		s.bad("Capture date: %s", r.Render.DateFormat)
		r.fail("Date format: %v", err)
	case sample == "":
		s.ok("Capture date: omitted (%s)", r.Render.DateFormat)
	default:
		r.Render.DateSample = sample
		s.ok("Capture date: %s (%s)", sample, r.Render.DateFormat)
	}
}

var statusLines = map[string]string{
	statusReady:    "Status: Ready to convert",
	statusWarnings: "Status: Ready with warnings",
	statusErrors:   "Status: Not ready (see errors above)",
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "site2pdf doctor")
	fmt.Fprintln(w)

	blocks := append([]*section(nil), r.sections...)
	if len(r.Warnings) > 0 {
		blocks = append(blocks, tagged("Warnings:", "[WARN] ", r.Warnings))
	}
	if len(r.Errors) > 0 {
		blocks = append(blocks, tagged("Errors:", "[ERROR] ", r.Errors))
	}
	for _, b := range blocks {
		fmt.Fprintln(w, b.title)
		for _, l := range b.lines {
			fmt.Fprintf(w, "  %s\n", l)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, statusLines[r.Status])
}

func tagged(title, tag string, msgs []string) *section {
	s := &section{title: title}
	for _, m := range msgs {
		s.lines = append(s.lines, tag+m)
	}
	return s
}
