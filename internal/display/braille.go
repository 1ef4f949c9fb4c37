package display

import (
	"context"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/mandelscope/internal/render"
)

const defaultThreshold = 0.15

// Braille plots every pixel whose lightness reaches the threshold as a dot.
type Braille struct {
	opts Options
}

func NewBraille(opts Options) *Braille {
	if opts.Threshold <= 0 {
		opts.Threshold = defaultThreshold
	}
	return &Braille{opts: opts}
}

func (b *Braille) Name() string { return "braille" }

// Plot samples grid onto a new canvas, two dots per column.
func (b *Braille) Plot(grid *render.Grid) *Canvas {
	img := fit(grid, 2*b.opts.Columns)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	canvas := NewCanvas((w+1)/2, (h+3)/4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cf, _ := colorful.MakeColor(img.RGBAAt(x, y))
			if l, _, _ := cf.Lab(); l >= b.opts.Threshold {
				canvas.Set(x, y)
			}
		}
	}
	return canvas
}

func (b *Braille) Present(ctx context.Context, grid *render.Grid) error {
	if grid.Width == 0 || grid.Height == 0 {
		return ErrEmptyGrid
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprint(b.opts.Writer, b.Plot(grid).String())
	return err
}
