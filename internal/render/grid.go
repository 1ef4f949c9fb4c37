package render

import (
	"image"

	"github.com/san-kum/mandelscope/internal/fractal"
)

// Grid holds one color per pixel in row-major order.
type Grid struct {
	Width  int
	Height int
	pix    []fractal.Color
}

func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		pix:    make([]fractal.Color, width*height),
	}
}

func (g *Grid) At(x, y int) fractal.Color {
	return g.pix[y*g.Width+x]
}

func (g *Grid) Set(x, y int, c fractal.Color) {
	g.pix[y*g.Width+x] = c
}

// Row returns row y. The slice aliases the grid.
func (g *Grid) Row(y int) []fractal.Color {
	return g.pix[y*g.Width : (y+1)*g.Width]
}

func (g *Grid) Bounds() image.Rectangle {
	return image.Rect(0, 0, g.Width, g.Height)
}

// Image copies the grid into an opaque RGBA image.
func (g *Grid) Image() *image.RGBA {
	img := image.NewRGBA(g.Bounds())
	for y := 0; y < g.Height; y++ {
		for x, c := range g.Row(y) {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = c.R
			img.Pix[i+1] = c.G
			img.Pix[i+2] = c.B
			img.Pix[i+3] = 255
		}
	}
	return img
}
