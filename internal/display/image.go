package display

import (
	"context"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"image/png"
	"io"

	"github.com/san-kum/mandelscope/internal/render"
)

// PNG writes the grid losslessly.
type PNG struct {
	opts Options
}

func NewPNG(opts Options) *PNG { return &PNG{opts: opts} }

func (p *PNG) Name() string { return "png" }

func (p *PNG) Present(ctx context.Context, grid *render.Grid) error {
	return writeFile(ctx, p.opts, grid, func(w io.Writer) error {
		return png.Encode(w, captioned(grid, p.opts.Caption))
	})
}

// GIF writes a single frame. Images with at most 256 colors keep them exactly;
// larger ones are mapped onto the Plan 9 palette.
type GIF struct {
	opts Options
}

func NewGIF(opts Options) *GIF { return &GIF{opts: opts} }

func (g *GIF) Name() string { return "gif" }

func (g *GIF) Present(ctx context.Context, grid *render.Grid) error {
	return writeFile(ctx, g.opts, grid, func(w io.Writer) error {
		return gif.Encode(w, Paletted(captioned(grid, g.opts.Caption)), nil)
	})
}

func captioned(grid *render.Grid, caption string) *image.RGBA {
	img := grid.Image()
	if caption != "" {
		NewOverlay(img).Caption(caption, color.White)
	}
	return img
}

// Paletted converts img for GIF encoding, keeping its colors in first-seen order
// when there are few enough.
func Paletted(img *image.RGBA) *image.Paletted {
	b := img.Bounds()
	index := make(map[color.RGBA]uint8)
	var pal color.Palette
	exact := true

scan:
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if _, ok := index[c]; ok {
				continue
			}
			if len(pal) == 256 {
				exact = false
				break scan
			}
			index[c] = uint8(len(pal))
			pal = append(pal, c)
		}
	}

	if !exact {
		out := image.NewPaletted(b, palette.Plan9)
		draw.Draw(out, b, img, b.Min, draw.Src)
		return out
	}

	out := image.NewPaletted(b, pal)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetColorIndex(x, y, index[img.RGBAAt(x, y)])
		}
	}
	return out
}

func writeFile(ctx context.Context, opts Options, grid *render.Grid, encode func(io.Writer) error) (err error) {
	if grid.Width == 0 || grid.Height == 0 {
		return ErrEmptyGrid
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w, closeFn, err := openOutput(opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); err == nil {
			err = cerr
		}
	}()
	return encode(w)
}
