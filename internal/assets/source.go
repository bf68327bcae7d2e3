package assets

import (
	"fmt"
	"path"
)

// Kind selects the subdirectory and extension of an asset.
type Kind int

const (
	Style Kind = iota
	Template
)

func (k Kind) String() string {
	switch k {
	case Style:
		return "style"
	case Template:
		return "template"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// file returns the slash-separated path of name relative to an assets root.
func (k Kind) file(name string) string {
	if k == Template {
		return path.Join("templates", name+".html")
	}
	return path.Join("styles", name+".css")
}

// Source reads assets by kind and bare name. A missing asset is ErrNotFound.
type Source interface {
	Read(kind Kind, name string) (string, error)
}

// checkName accepts lowercase ASCII letters, digits, '-' and '_'.
func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrBadName)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrBadName, name)
		}
	}
	return nil
}
