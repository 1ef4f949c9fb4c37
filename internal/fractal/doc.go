// Package fractal implements escape-time evaluation of the Mandelbrot recurrence.
//
// The package has two pieces with numeric content:
//
//   - [Map]: converts a pixel index of a [Raster] into a [Point] of the complex plane
//   - [Escape]: iterates z ← z² + z₀ from a point and classifies the orbit
//
// An [Evaluator] pairs the escape test with a [Policy] that turns the outcome into a
// [Color]. Policies are selected by name through [LookupPolicy].
//
// # Divergence Test
//
// The default test, [PositiveSide], compares the raw real and imaginary parts against 2
// and only on the positive side:
//
//	a > 2 || b > 2
//
// Orbits that run off towards negative infinity on both axes are not caught by it and
// are eventually classified as bounded. [Symmetric] also checks a < -2 and b < -2.
//
// # Example
//
//	raster := fractal.Raster{Width: 1000, Height: 1000, Scale: 3}
//	eval := fractal.NewEvaluator(fractal.Red, fractal.PositiveSide)
//	p := fractal.Map(x, y, raster)
//	c, err := eval.Escape(p.A, p.B, 30)
//
// All functions are pure and safe for concurrent use.
package fractal
