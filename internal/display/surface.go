package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
)

// Surface receives a completed grid.
type Surface interface {
	Name() string
	Present(ctx context.Context, grid *render.Grid) error
}

// Options configures the surfaces built by New. Fields a surface does not use are
// ignored.
type Options struct {
	// Output is the destination file for png, gif and svg. Empty or "-" writes to
	// Writer.
	Output string
	// Writer receives terminal output, and file output when Output is empty.
	Writer io.Writer
	// Columns caps the width of text surfaces in terminal cells. Zero means one cell
	// per pixel.
	Columns int
	// TrueColor forces 24-bit escape sequences even when Writer is not a terminal.
	TrueColor bool
	// Threshold is the CIE L* (0..1) at which a pixel becomes a braille dot.
	Threshold float64
	// Caption is drawn into the corner of png and gif output.
	Caption string
}

var surfaces = map[string]func(Options) Surface{
	"terminal": func(o Options) Surface { return NewTerminal(o) },
	"braille":  func(o Options) Surface { return NewBraille(o) },
	"png":      func(o Options) Surface { return NewPNG(o) },
	"gif":      func(o Options) Surface { return NewGIF(o) },
	"svg":      func(o Options) Surface { return NewSVG(o) },
	"none":     func(Options) Surface { return None{} },
}

// New returns the surface registered under name.
func New(name string, opts Options) (Surface, error) {
	fn, ok := surfaces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrUnknownSurface, &fractal.ConfigError{
			Field:  "render.display",
			Value:  name,
			Reason: fmt.Sprintf("must be one of %v", Names()),
		})
	}
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	return fn(opts), nil
}

// Names lists the surfaces New can build.
func Names() []string {
	names := make([]string, 0, len(surfaces))
	for name := range surfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// None discards the grid.
type None struct{}

func (None) Name() string { return "none" }

func (None) Present(ctx context.Context, _ *render.Grid) error {
	return ctx.Err()
}

// openOutput returns the writer for a file surface and a close function that reports
// the close error.
func openOutput(opts Options) (io.Writer, func() error, error) {
	if opts.Output == "" || opts.Output == "-" {
		return opts.Writer, func() error { return nil }, nil
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", opts.Output, err)
	}
	return f, f.Close, nil
}
