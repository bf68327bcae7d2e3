package assets

import "errors"

// Overlay reads from Top and falls through to Base only when Top reports
// ErrNotFound. A nil Top reads Base directly.
type Overlay struct {
	Top  Source
	Base Source
}

func (o Overlay) Read(kind Kind, name string) (string, error) {
	if o.Top == nil {
		return o.Base.Read(kind, name)
	}
	s, err := o.Top.Read(kind, name)
	if errors.Is(err, ErrNotFound) {
		return o.Base.Read(kind, name)
	}
	return s, err
}

var _ Source = Overlay{}
