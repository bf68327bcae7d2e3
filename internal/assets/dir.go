package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Dir serves assets from a directory laid out like the built-in set.
// Reads go through os.Root, so neither ".." nor symlinks reach outside it.
type Dir struct {
	root string
}

// OpenDir returns a Dir for path, which must be an existing directory.
func OpenDir(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrBadDir)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDir, err)
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s does not exist", ErrBadDir, abs)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrBadDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %s is not a directory", ErrBadDir, abs)
	}
	return &Dir{root: abs}, nil
}

// Path returns the absolute directory.
func (d *Dir) Path() string { return d.root }

func (d *Dir) Read(kind Kind, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	root, err := os.OpenRoot(d.root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer func() { _ = root.Close() }()

	b, err := root.ReadFile(filepath.FromSlash(kind.file(name)))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s %q in %s", ErrNotFound, kind, name, d.root)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRead, err)
	}
	return string(b), nil
}

var _ Source = (*Dir)(nil)
