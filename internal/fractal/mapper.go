package fractal

// Map converts pixel (x, y) to a point of the plane.
//
// Both axes span [-Scale/2, Scale/2): the step on each axis is Scale divided by the
// pixel count of that axis, so the visible extent is Scale and not 2·Scale.
func Map(x, y int, r Raster) Point {
	stepX := r.Scale / float64(r.Width)
	stepY := r.Scale / float64(r.Height)
	return Point{
		A: float64(x)*stepX - r.Scale/2,
		B: float64(y)*stepY - r.Scale/2,
	}
}

// Unmap is the inverse of Map: it returns the fractional pixel position of p.
func (r Raster) Unmap(p Point) (x, y float64) {
	x = (p.A + r.Scale/2) * float64(r.Width) / r.Scale
	y = (p.B + r.Scale/2) * float64(r.Height) / r.Scale
	return x, y
}
