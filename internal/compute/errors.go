package compute

import "errors"

var ErrUnknownBackend = errors.New("compute: unknown backend")
