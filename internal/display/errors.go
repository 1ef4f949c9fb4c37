package display

import "errors"

var (
	ErrUnknownSurface = errors.New("display: unknown surface")
	ErrEmptyGrid      = errors.New("display: empty grid")
)
