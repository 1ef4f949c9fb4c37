package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"slices"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/fractal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth         = 1000
	DefaultHeight        = 1000
	DefaultScale         = 3.0
	DefaultMaxIterations = 30
	DefaultPolicy        = fractal.PolicyRed
	DefaultDivergence    = "positive"
	DefaultBackend       = "cpu"
	DefaultDisplay       = "terminal"
)

// Displays names every surface a render can be shown on.
var Displays = []string{"braille", "gif", "none", "png", "svg", "terminal", "window"}

type Config struct {
	Width         int          `yaml:"width" json:"width"`
	Height        int          `yaml:"height" json:"height"`
	Scale         float64      `yaml:"scale" json:"scale"`
	MaxIterations int          `yaml:"max_iterations" json:"max_iterations"`
	ColorPolicy   string       `yaml:"color_policy" json:"color_policy"`
	Divergence    string       `yaml:"divergence" json:"divergence"`
	Render        RenderConfig `yaml:"render" json:"render"`
}

type RenderConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Workers int    `yaml:"workers" json:"workers"`
	Display string `yaml:"display" json:"display"`
	Output  string `yaml:"output" json:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Scale:         DefaultScale,
		MaxIterations: DefaultMaxIterations,
		ColorPolicy:   DefaultPolicy,
		Divergence:    DefaultDivergence,
		Render: RenderConfig{
			Backend: DefaultBackend,
			Display: DefaultDisplay,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Keys absent from the file keep
// base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every field outside its valid range. Values are never clamped.
func (c *Config) Validate() error {
	var errs []error
	if c.Width <= 0 {
		errs = append(errs, &fractal.ConfigError{Field: "width", Value: c.Width, Reason: "must be positive"})
	}
	if c.Height <= 0 {
		errs = append(errs, &fractal.ConfigError{Field: "height", Value: c.Height, Reason: "must be positive"})
	}
	if !(c.Scale > 0) || math.IsInf(c.Scale, 0) {
		errs = append(errs, &fractal.ConfigError{Field: "scale", Value: c.Scale, Reason: "must be a positive finite number"})
	}
	if c.MaxIterations <= 0 {
		errs = append(errs, &fractal.ConfigError{Field: "max_iterations", Value: c.MaxIterations, Reason: "must be positive"})
	}
	if c.Render.Workers < 0 {
		errs = append(errs, &fractal.ConfigError{Field: "render.workers", Value: c.Render.Workers, Reason: "must not be negative"})
	}
	if _, err := fractal.LookupPolicy(c.ColorPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := fractal.ParseDivergence(c.Divergence); err != nil {
		errs = append(errs, err)
	}
	if err := compute.CheckBackend(c.Render.Backend); err != nil {
		errs = append(errs, err)
	}
	if !slices.Contains(Displays, c.Render.Display) {
		errs = append(errs, &fractal.ConfigError{
			Field:  "render.display",
			Value:  c.Render.Display,
			Reason: fmt.Sprintf("must be one of %v", Displays),
		})
	}
	return errors.Join(errs...)
}

func (c *Config) Raster() fractal.Raster {
	return fractal.Raster{Width: c.Width, Height: c.Height, Scale: c.Scale}
}

// Evaluator builds the evaluator named by ColorPolicy and Divergence.
func (c *Config) Evaluator() (fractal.Evaluator, error) {
	policy, err := fractal.LookupPolicy(c.ColorPolicy)
	if err != nil {
		return fractal.Evaluator{}, err
	}
	div, err := fractal.ParseDivergence(c.Divergence)
	if err != nil {
		return fractal.Evaluator{}, err
	}
	return fractal.NewEvaluator(policy, div), nil
}
