package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html
var builtinFS embed.FS

// Builtin serves the assets compiled into the binary.
type Builtin struct{}

func (Builtin) Read(kind Kind, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	b, err := builtinFS.ReadFile(kind.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: built-in %s %q", ErrNotFound, kind, name)
	}
	return string(b), nil
}

var _ Source = Builtin{}
