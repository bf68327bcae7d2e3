package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeAsset creates base/dir/file with content.
func writeAsset(t *testing.T, base, dir, file, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(base, dir), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(base, dir, file), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDir(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"directory", t.TempDir(), false},
		{"empty path", "", true},
		{"missing", filepath.Join(t.TempDir(), "absent"), true},
		{"regular file", file, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := OpenDir(tt.path)
			if !tt.wantErr {
				if err != nil || !filepath.IsAbs(d.Path()) {
					t.Fatalf("OpenDir() = %v, %v", d, err)
				}
				return
			}
			if !errors.Is(err, ErrBadDir) {
				t.Errorf("OpenDir() error = %v, want ErrBadDir", err)
			}
		})
	}
}

func TestDir_Read(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeAsset(t, base, "styles", "contents.css", "h1 { color: red; }")
	writeAsset(t, base, "templates", "contents.html", "<p>{{.Title}}</p>")

	d, err := OpenDir(base)
	if err != nil {
		t.Fatal(err)
	}

	if got, err := d.Read(Style, "contents"); err != nil || got != "h1 { color: red; }" {
		t.Errorf("Read(Style) = %q, %v", got, err)
	}
	if got, err := d.Read(Template, "contents"); err != nil || got != "<p>{{.Title}}</p>" {
		t.Errorf("Read(Template) = %q, %v", got, err)
	}
	if _, err := d.Read(Style, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read(other) error = %v, want ErrNotFound", err)
	}
	if _, err := d.Read(Template, "../x"); !errors.Is(err, ErrBadName) {
		t.Errorf("Read(../x) error = %v, want ErrBadName", err)
	}
}

func TestDir_ReadFailures(t *testing.T) {
	t.Parallel()

	t.Run("directory in place of file", func(t *testing.T) {
		t.Parallel()

		base := t.TempDir()
		if err := os.MkdirAll(filepath.Join(base, "styles", "contents.css"), 0o750); err != nil {
			t.Fatal(err)
		}
		d, err := OpenDir(base)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := d.Read(Style, ContentsName); !errors.Is(err, ErrRead) {
			t.Errorf("Read() error = %v, want ErrRead", err)
		}
	})

	t.Run("symlink outside root", func(t *testing.T) {
		t.Parallel()

		secret := filepath.Join(t.TempDir(), "secret.css")
		if err := os.WriteFile(secret, []byte("secret"), 0o600); err != nil {
			t.Fatal(err)
		}
		base := t.TempDir()
		if err := os.MkdirAll(filepath.Join(base, "styles"), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.Symlink(secret, filepath.Join(base, "styles", "contents.css")); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
		d, err := OpenDir(base)
		if err != nil {
			t.Fatal(err)
		}
		got, err := d.Read(Style, ContentsName)
		if err == nil || got == "secret" {
			t.Errorf("Read() through escaping symlink = %q, %v, want error", got, err)
		}
	})
}
