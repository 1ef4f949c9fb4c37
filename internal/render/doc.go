// Package render drives a full-raster escape-time render.
//
// A [Renderer] maps every pixel with [fractal.Map], classifies it with
// [fractal.Escape], colors it with the configured policy, and returns the completed
// [Grid] together with the per-pixel outcomes. Rows are spread over a
// [compute.Backend]; the grid is only returned once every row has been written.
package render
