package config

import "sort"

var Presets = map[string]*Config{
	// Default raster with the red ramp.
	"source": {
		Width: 1000, Height: 1000, Scale: 3, MaxIterations: 30,
		ColorPolicy: "red", Divergence: "positive",
		Render: RenderConfig{Backend: "cpu", Display: "terminal"},
	},
	// 480x480 window spanning [-3, 3) with 2^7 iterations.
	"viewer": {
		Width: 480, Height: 480, Scale: 6, MaxIterations: 128,
		ColorPolicy: "viewer", Divergence: "positive",
		Render: RenderConfig{Backend: "cpu", Display: "window"},
	},
	"inverse": {
		Width: 800, Height: 800, Scale: 3, MaxIterations: 20,
		ColorPolicy: "inverse", Divergence: "positive",
		Render: RenderConfig{Backend: "cpu", Display: "png", Output: "mandelbrot.png"},
	},
	"thumbnail": {
		Width: 4, Height: 4, Scale: 2, MaxIterations: 5,
		ColorPolicy: "red", Divergence: "positive",
		Render: RenderConfig{Backend: "serial", Display: "terminal"},
	},
}

var presetInfo = map[string]string{
	"source":    "1000x1000 red ramp on the terminal",
	"viewer":    "480x480 window, 128 iterations",
	"inverse":   "inverse ramp on white, written to png",
	"thumbnail": "4x4 reference grid",
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func DescribePreset(name string) string {
	return presetInfo[name]
}
