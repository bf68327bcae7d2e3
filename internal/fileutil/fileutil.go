// Package fileutil holds the file plumbing shared by the renderer, the
// merger and the CLI: atomic PDF writes, copies out of job directories and
// scratch files for the contents page.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/moby/sys/atomicwriter"
)

// OutputPerm is the mode of PDFs handed to users.
const OutputPerm = 0o644

// WriteAtomic writes data to path through a sibling temp file, so readers
// never see a half-written PDF.
func WriteAtomic(path string, data []byte) error {
	if err := atomicwriter.WriteFile(path, data, OutputPerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// CopyFile copies src to dst, truncating dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from the job pipeline or the user
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, OutputPerm) // #nosec G302,G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// WriteScratch writes content to a new file in dir whose name matches
// pattern (see os.CreateTemp). The cleanup function removes it.
func WriteScratch(dir, pattern, content string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch file: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing scratch file: %w", err)
	}
	return path, cleanup, nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsDir reports whether path is an existing directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsFilePath reports whether s contains a path separator, which makes it a
// path rather than a config name: "work" is a name, "./work.yaml" a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, `/\`)
}

// IsURL reports whether s starts with an http or https scheme.
func IsURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
