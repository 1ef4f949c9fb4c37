package display

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
	xdraw "golang.org/x/image/draw"
)

const upperHalf = "▀"

// Terminal draws two pixel rows per line: the upper pixel as the foreground of a
// half block and the lower one as its background.
type Terminal struct {
	opts     Options
	renderer *lipgloss.Renderer
}

func NewTerminal(opts Options) *Terminal {
	r := lipgloss.NewRenderer(opts.Writer)
	if opts.TrueColor {
		r.SetColorProfile(termenv.TrueColor)
	}
	return &Terminal{opts: opts, renderer: r}
}

func (t *Terminal) Name() string { return "terminal" }

func (t *Terminal) Present(ctx context.Context, grid *render.Grid) error {
	if grid.Width == 0 || grid.Height == 0 {
		return ErrEmptyGrid
	}
	img := fit(grid, t.opts.Columns)
	cols, rows := img.Bounds().Dx(), img.Bounds().Dy()

	var b strings.Builder
	for top := 0; top < rows; top += 2 {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := 0; x < cols; x++ {
			style := t.renderer.NewStyle().Foreground(lipgloss.Color(hexAt(img, x, top)))
			if top+1 < rows {
				style = style.Background(lipgloss.Color(hexAt(img, x, top+1)))
			}
			b.WriteString(style.Render(upperHalf))
		}
		b.WriteByte('\n')
	}

	_, err := fmt.Fprint(t.opts.Writer, b.String())
	return err
}

func hexAt(img *image.RGBA, x, y int) string {
	c := img.RGBAAt(x, y)
	return fractal.Color{R: c.R, G: c.G, B: c.B}.Hex()
}

// fit returns the grid as an image at most maxWidth pixels wide, keeping the aspect
// ratio. Zero maxWidth keeps the grid size.
func fit(grid *render.Grid, maxWidth int) *image.RGBA {
	src := grid.Image()
	if maxWidth <= 0 || grid.Width <= maxWidth {
		return src
	}
	h := grid.Height * maxWidth / grid.Width
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
