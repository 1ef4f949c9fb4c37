package fractal

import (
	"fmt"
	"sort"
	"strings"
)

// Policy turns an orbit classification into a color. i is the escape iteration and is
// ignored when escaped is false. maxIterations is at least 1.
type Policy func(escaped bool, i, maxIterations int) Color

// Registered policy names.
const (
	PolicyRed     = "red"
	PolicyInverse = "inverse"
	PolicyViewer  = "viewer"
)

// Red ramps escaped points from black towards red with the escape iteration and paints
// bounded points black.
func Red(escaped bool, i, maxIterations int) Color {
	if !escaped {
		return Black
	}
	return Color{R: uint8(255 * i / maxIterations)}
}

// Inverse ramps escaped points from red (fast) down to black (slow) with a peak of 200,
// and paints bounded points white.
func Inverse(escaped bool, i, maxIterations int) Color {
	if !escaped {
		return White
	}
	return Color{R: uint8(200 * (maxIterations - i) / maxIterations)}
}

// Viewer counts iterations from 1 so the fastest escapes are not black.
func Viewer(escaped bool, i, maxIterations int) Color {
	if !escaped {
		return Black
	}
	return Color{R: uint8(255 * (i + 1) / maxIterations)}
}

var policies = map[string]Policy{
	PolicyRed:     Red,
	PolicyInverse: Inverse,
	PolicyViewer:  Viewer,
}

var policyInfo = map[string]string{
	PolicyRed:     "escaped (255*i/max, 0, 0), bounded black",
	PolicyInverse: "escaped (200*(max-i)/max, 0, 0), bounded white",
	PolicyViewer:  "escaped (255*(i+1)/max, 0, 0), bounded black",
}

// LookupPolicy returns the policy registered under name. An empty name selects red.
func LookupPolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = PolicyRed
	}
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownPolicy, name, PolicyNames())
	}
	return p, nil
}

// PolicyNames lists the registered policies in sorted order.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DescribePolicy returns a one-line summary of the named policy.
func DescribePolicy(name string) string {
	return policyInfo[name]
}
