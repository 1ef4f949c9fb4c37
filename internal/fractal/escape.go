package fractal

import (
	"fmt"
	"strings"
)

// Divergence selects the test that stops an orbit.
type Divergence int

const (
	// PositiveSide fires when a > 2 or b > 2.
	PositiveSide Divergence = iota
	// Symmetric fires when |a| > 2 or |b| > 2.
	Symmetric
)

func (d Divergence) String() string {
	switch d {
	case PositiveSide:
		return "positive"
	case Symmetric:
		return "symmetric"
	}
	return fmt.Sprintf("Divergence(%d)", int(d))
}

// ParseDivergence accepts the names produced by String.
func ParseDivergence(name string) (Divergence, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "positive":
		return PositiveSide, nil
	case "symmetric":
		return Symmetric, nil
	}
	return 0, fmt.Errorf("%w: %q (available: positive, symmetric)", ErrUnknownDivergence, name)
}

// Diverged reports whether the working values a, b trip the test.
func (d Divergence) Diverged(a, b float64) bool {
	if a > 2 || b > 2 {
		return true
	}
	return d == Symmetric && (a < -2 || b < -2)
}

// Escape iterates z ← z² + z₀ from z₀ = p for at most maxIterations steps.
//
// The test runs before each update, so a starting point that already trips it escapes
// at iteration 0.
func Escape(p Point, maxIterations int, d Divergence) (Outcome, error) {
	if maxIterations < 1 {
		return Outcome{}, ErrInvalidIterations
	}
	a, b := p.A, p.B
	for i := 0; i < maxIterations; i++ {
		if d.Diverged(a, b) {
			return Outcome{Escaped: true, Iteration: i}, nil
		}
		a, b = a*a-b*b+p.A, 2*a*b+p.B
	}
	return Outcome{}, nil
}

// Orbit is Escape that also returns the working value seen by each test, starting
// with p itself.
func Orbit(p Point, maxIterations int, d Divergence) ([]Point, Outcome, error) {
	if maxIterations < 1 {
		return nil, Outcome{}, ErrInvalidIterations
	}
	orbit := make([]Point, 0, min(maxIterations, 64))
	a, b := p.A, p.B
	for i := 0; i < maxIterations; i++ {
		orbit = append(orbit, Point{A: a, B: b})
		if d.Diverged(a, b) {
			return orbit, Outcome{Escaped: true, Iteration: i}, nil
		}
		a, b = a*a-b*b+p.A, 2*a*b+p.B
	}
	return orbit, Outcome{}, nil
}

// Evaluator combines a divergence test with a color policy.
type Evaluator struct {
	Policy     Policy
	Divergence Divergence
}

func NewEvaluator(policy Policy, d Divergence) Evaluator {
	if policy == nil {
		policy = Red
	}
	return Evaluator{Policy: policy, Divergence: d}
}

// Classify runs the escape test for (a0, b0).
func (e Evaluator) Classify(a0, b0 float64, maxIterations int) (Outcome, error) {
	return Escape(Point{A: a0, B: b0}, maxIterations, e.Divergence)
}

// Escape returns the color of (a0, b0).
func (e Evaluator) Escape(a0, b0 float64, maxIterations int) (Color, error) {
	out, err := e.Classify(a0, b0, maxIterations)
	if err != nil {
		return Color{}, err
	}
	return e.Policy(out.Escaped, out.Iteration, maxIterations), nil
}
