package fractal

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Point is a + bi.
type Point struct {
	A float64
	B float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.A, p.B)
}

// Color is an RGB triple. It implements color.Color with full opacity.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{0, 0, 0}
	White = Color{255, 255, 255}
)

func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// ToRGBA returns the opaque image/color equivalent.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	cf, _ := colorful.MakeColor(c)
	return cf.Hex()
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Raster is the pixel grid and the extent of the plane it samples.
type Raster struct {
	Width  int
	Height int
	Scale  float64
}

// Pixels returns Width*Height.
func (r Raster) Pixels() int {
	return r.Width * r.Height
}

// Outcome is the classification of one orbit. Iteration is only meaningful when
// Escaped is true.
type Outcome struct {
	Escaped   bool
	Iteration int
}

func (o Outcome) String() string {
	if o.Escaped {
		return fmt.Sprintf("escaped at iteration %d", o.Iteration)
	}
	return "bounded"
}
