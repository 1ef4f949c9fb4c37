package display

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype/raster"
	"github.com/san-kum/mandelscope/internal/fractal"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay draws annotations onto a rendered image in place.
type Overlay struct {
	img     *image.RGBA
	painter *raster.RGBAPainter
	rast    *raster.Rasterizer
}

func NewOverlay(img *image.RGBA) *Overlay {
	return &Overlay{
		img:     img,
		painter: raster.NewRGBAPainter(img),
		rast:    raster.NewRasterizer(img.Bounds().Max.X, img.Bounds().Max.Y),
	}
}

func (o *Overlay) Image() *image.RGBA { return o.img }

// Orbit strokes the path through pts, given in plane coordinates of r, and marks
// its first point with a square.
func (o *Overlay) Orbit(r fractal.Raster, pts []fractal.Point, lineWidth int, c color.Color) {
	if len(pts) == 0 {
		return
	}

	path := make(raster.Path, 0, 4*len(pts))
	for i, p := range pts {
		pt := o.pixel(r, p)
		if i == 0 {
			path.Start(pt)
		} else {
			path.Add1(pt)
		}
	}

	o.painter.SetColor(c)
	if len(pts) > 1 {
		o.rast.UseNonZeroWinding = true
		o.rast.AddStroke(path, fixed.I(lineWidth), raster.SquareCapper, raster.BevelJoiner)
		o.rast.Rasterize(o.painter)
		o.rast.Clear()
	}

	start := o.pixel(r, pts[0])
	half := fixed.I(lineWidth + 1)
	var mark raster.Path
	mark.Start(fixed.Point26_6{X: start.X - half, Y: start.Y - half})
	mark.Add1(fixed.Point26_6{X: start.X + half, Y: start.Y - half})
	mark.Add1(fixed.Point26_6{X: start.X + half, Y: start.Y + half})
	mark.Add1(fixed.Point26_6{X: start.X - half, Y: start.Y + half})
	o.rast.AddPath(mark)
	o.rast.Rasterize(o.painter)
	o.rast.Clear()
}

// Caption writes text in the top left corner with a fixed 7x13 face.
func (o *Overlay) Caption(text string, c color.Color) {
	d := font.Drawer{
		Dst:  o.img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 4+basicfont.Face7x13.Ascent),
	}
	d.DrawString(text)
}

// pixel unmaps p and pulls it to within one image size of the bounds. Escaping
// orbits leave the plane fast enough to overflow 26.6 fixed point otherwise.
func (o *Overlay) pixel(r fractal.Raster, p fractal.Point) fixed.Point26_6 {
	x, y := r.Unmap(p)
	w, h := float64(o.img.Bounds().Dx()), float64(o.img.Bounds().Dy())
	return fixed.Point26_6{X: toFixed(clamp(x, -w, 2*w)), Y: toFixed(clamp(y, -h, 2*h))}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}
