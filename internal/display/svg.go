package display

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/mandelscope/internal/render"
)

// SVG writes one rect per horizontal run of equal color, each pixel one user unit.
type SVG struct {
	opts Options
}

func NewSVG(opts Options) *SVG { return &SVG{opts: opts} }

func (s *SVG) Name() string { return "svg" }

func (s *SVG) Present(ctx context.Context, grid *render.Grid) error {
	return writeFile(ctx, s.opts, grid, func(w io.Writer) error {
		_, err := io.WriteString(w, GridToSVG(grid))
		return err
	})
}

// GridToSVG renders grid as an SVG document.
func GridToSVG(grid *render.Grid) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">
`, grid.Width, grid.Height, grid.Width, grid.Height)

	for y := 0; y < grid.Height; y++ {
		row := grid.Row(y)
		for x := 0; x < len(row); {
			run := 1
			for x+run < len(row) && row[x+run] == row[x] {
				run++
			}
			fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="1" fill="%s"/>
`, x, y, run, row[x].Hex())
			x += run
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}
