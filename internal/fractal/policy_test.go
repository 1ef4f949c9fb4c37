package fractal

import (
	"errors"
	"image/color"
	"testing"
)

func TestPolicyBounds(t *testing.T) {
	for _, name := range PolicyNames() {
		p, err := LookupPolicy(name)
		if err != nil {
			t.Fatal(err)
		}
		for _, n := range []int{1, 2, 7, 30, 256, 1000} {
			for i := 0; i < n; i++ {
				c := p(true, i, n)
				if c.G != 0 || c.B != 0 {
					t.Fatalf("%s(true, %d, %d) = %v, want a pure red ramp", name, i, n, c)
				}
			}
		}
	}
}

func TestRedRamp(t *testing.T) {
	tests := []struct {
		i, n int
		want uint8
	}{
		{0, 30, 0},
		{15, 30, 127},
		{29, 30, 246},
		{3, 5, 153},
	}
	for _, tt := range tests {
		if got := Red(true, tt.i, tt.n); got.R != tt.want {
			t.Errorf("Red(true, %d, %d).R = %d, want %d", tt.i, tt.n, got.R, tt.want)
		}
	}
	if got := Red(false, 12, 30); got != Black {
		t.Errorf("bounded = %v, want black", got)
	}
}

func TestInverseRamp(t *testing.T) {
	tests := []struct {
		i, n int
		want uint8
	}{
		{0, 20, 200},
		{10, 20, 100},
		{19, 20, 10},
	}
	for _, tt := range tests {
		if got := Inverse(true, tt.i, tt.n); got.R != tt.want {
			t.Errorf("Inverse(true, %d, %d).R = %d, want %d", tt.i, tt.n, got.R, tt.want)
		}
	}
	if got := Inverse(false, 0, 20); got != White {
		t.Errorf("bounded = %v, want white", got)
	}
}

func TestLookupPolicy(t *testing.T) {
	p, err := LookupPolicy("")
	if err != nil {
		t.Fatal(err)
	}
	if p(true, 3, 5) != Red(true, 3, 5) {
		t.Error("empty name should select red")
	}

	if _, err := LookupPolicy(" Inverse "); err != nil {
		t.Errorf("lookup should ignore case and spaces: %v", err)
	}

	if _, err := LookupPolicy("rainbow"); !errors.Is(err, ErrUnknownPolicy) {
		t.Errorf("err = %v, want ErrUnknownPolicy", err)
	}

	for _, name := range PolicyNames() {
		if DescribePolicy(name) == "" {
			t.Errorf("policy %s has no description", name)
		}
	}
}

func TestColorConversions(t *testing.T) {
	c := Color{R: 153, G: 0, B: 255}

	if got := c.Hex(); got != "#9900ff" {
		t.Errorf("Hex() = %s, want #9900ff", got)
	}
	if got := c.ToRGBA(); got != (color.RGBA{153, 0, 255, 255}) {
		t.Errorf("ToRGBA() = %v", got)
	}

	var _ color.Color = c
	r, g, b, a := c.RGBA()
	if r != 0x9999 || g != 0 || b != 0xffff || a != 0xffff {
		t.Errorf("RGBA() = %x %x %x %x", r, g, b, a)
	}
	if got := c.String(); got != "rgb(153, 0, 255)" {
		t.Errorf("String() = %s", got)
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "width", Value: 0, Reason: "must be positive"}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Error("ConfigError should unwrap to ErrInvalidConfig")
	}
	want := "fractal: invalid configuration: width must be positive, got 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
