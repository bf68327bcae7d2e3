package assets

import "errors"

var (
	ErrNotFound = errors.New("asset not found")
	ErrBadName  = errors.New("invalid asset name")
	ErrBadDir   = errors.New("invalid assets directory")
	ErrRead     = errors.New("cannot read asset")
)
