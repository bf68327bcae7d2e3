package assets

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	th := DefaultTheme()
	if th.Template == "" || th.Style == "" {
		t.Errorf("DefaultTheme() = %+v, want template and style", th)
	}
}

func TestLoadContentsTheme(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "templates", "contents.html", "<body>{{.Body}}</body>")

	th, err := LoadContentsTheme(base)
	if err != nil {
		t.Fatalf("LoadContentsTheme() error = %v", err)
	}
	if th.Template != "<body>{{.Body}}</body>" {
		t.Errorf("Template = %q, want custom", th.Template)
	}
	if th.Style != DefaultTheme().Style {
		t.Error("Style should fall back to the embedded one")
	}

	if _, err := LoadContentsTheme(filepath.Join(base, "absent")); !errors.Is(err, ErrBadDir) {
		t.Errorf("LoadContentsTheme(missing) error = %v, want ErrBadDir", err)
	}
}

func TestLoadContentsTheme_EmptyDir(t *testing.T) {
	t.Parallel()

	th, err := LoadContentsTheme("")
	if err != nil {
		t.Fatalf("LoadContentsTheme(\"\") error = %v", err)
	}
	if *th != *DefaultTheme() {
		t.Error("empty dir should give the built-in theme")
	}
}
