package fractal

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and evaluation.
var (
	// ErrInvalidConfig indicates a raster or evaluator setting outside its valid range.
	ErrInvalidConfig = errors.New("fractal: invalid configuration")

	// ErrInvalidIterations indicates an iteration budget below 1.
	ErrInvalidIterations = errors.New("fractal: max iterations must be at least 1")

	// ErrUnknownPolicy indicates a color policy name with no registered policy.
	ErrUnknownPolicy = errors.New("fractal: unknown color policy")

	// ErrUnknownDivergence indicates a divergence test name that is not recognised.
	ErrUnknownDivergence = errors.New("fractal: unknown divergence test")
)

// ConfigError describes a single rejected configuration field.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s, got %v", ErrInvalidConfig, e.Field, e.Reason, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
