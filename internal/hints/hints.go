// Package hints appends actionable advice to CLI errors and describes the
// runtime environment the browser starts in.
// Every hint reads "\n  hint: <text>".
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-site2pdf/internal/fileutil"
)

// Env is the process environment seen by the hints. Tests swap it for a
// fixed map.
type Env struct {
	Getenv func(string) string
	Exists func(path string) bool
}

// System reads the real environment.
func System() Env {
	return Env{Getenv: os.Getenv, Exists: fileutil.FileExists}
}

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// InCI reports whether a known CI variable is set.
func (e Env) InCI() bool {
	for _, v := range ciVars {
		if e.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// Container reports whether the process runs in a container, and which
// signal gave it away.
func (e Env) Container() (bool, string) {
	switch {
	case e.Getenv("SITE2PDF_CONTAINER") == "1":
		return true, "SITE2PDF_CONTAINER=1"
	case e.Exists("/.dockerenv"):
		return true, "/.dockerenv"
	case e.Getenv("container") != "":
		return true, "container=" + e.Getenv("container")
	case e.Getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// NeedsNoSandbox reports whether Chrome will likely refuse to start with
// its sandbox in this environment.
func (e Env) NeedsNoSandbox() bool {
	inContainer, _ := e.Container()
	return (inContainer || e.InCI()) && e.Getenv("ROD_NO_SANDBOX") != "1"
}

// BrowserConnect suggests environment variables for a browser that failed
// to start.
func (e Env) BrowserConnect() string {
	var tips []string
	if e.NeedsNoSandbox() {
		tips = append(tips, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if e.Getenv("ROD_BROWSER_BIN") == "" {
		tips = append(tips, "set ROD_BROWSER_BIN to use an installed Chrome")
	}
	tips = append(tips, "run `site2pdf doctor` for details")
	return format(strings.Join(tips, "; "))
}

// ForBrowserConnect is BrowserConnect on the real environment.
func ForBrowserConnect() string {
	return System().BrowserConnect()
}

// ForTimeout covers pages that never finish loading.
func ForTimeout() string {
	return format("for slow sites, raise --timeout or lower --workers")
}

// ForForbiddenTarget explains why private addresses are refused.
func ForForbiddenTarget() string {
	return format("only public http(s) sites can be converted; private and loopback addresses are blocked")
}

// ForHTTPFailure covers a start URL that did not answer with HTML.
func ForHTTPFailure() string {
	return format("check the URL opens in a browser; some sites need --user-agent")
}

// ForConfigNotFound points at --config, or at the user config directory
// when it is among searchedPaths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"
	for _, p := range searchedPaths {
		if strings.Contains(p, ".config/go-site2pdf") {
			return format(hint + " or create " + p)
		}
	}
	return format(hint)
}

// ForOutputDirectory covers an -o target that cannot be written.
func ForOutputDirectory() string {
	return format("check the parent directory exists and is writable")
}

// ForPartialSave covers an interrupt before any page was rendered.
func ForPartialSave() string {
	return format("rerun with --max-pages to limit the crawl, or keep --save-on-interrupt to save rendered pages")
}

func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}
