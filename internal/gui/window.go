package gui

import (
	"context"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/mandelscope/internal/render"
)

var (
	ColBg   = rl.NewColor(10, 10, 10, 255)
	ColText = rl.NewColor(140, 140, 140, 255)
)

// Window shows a grid at one window pixel per grid pixel and returns once close is
// requested.
type Window struct {
	Title string
	FPS   int32
	// Caption is drawn in the corner when non-empty.
	Caption string
}

func NewWindow(title string) *Window {
	return &Window{Title: title, FPS: 60}
}

func (w *Window) Name() string { return "window" }

// Present blocks until the window is closed or ctx is done.
func (w *Window) Present(ctx context.Context, grid *render.Grid) error {
	if grid.Width == 0 || grid.Height == 0 {
		return fmt.Errorf("gui: empty grid")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(grid.Width), int32(grid.Height), w.Title)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return fmt.Errorf("gui: could not open a %dx%d window", grid.Width, grid.Height)
	}
	rl.SetTargetFPS(w.FPS)

	img := rl.NewImageFromImage(grid.Image())
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	defer rl.UnloadTexture(tex)

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			break
		}
		rl.BeginDrawing()
		rl.ClearBackground(ColBg)
		rl.DrawTexture(tex, 0, 0, rl.White)
		if w.Caption != "" {
			rl.DrawText(w.Caption, 8, 8, 16, ColText)
		}
		rl.EndDrawing()
	}
	return nil
}
