package compute

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minParallelRows is the height below which CPUBackend stays on one goroutine.
const minParallelRows = 16

type CPUBackend struct {
	workers int
}

func NewCPUBackend(workers int) *CPUBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUBackend{
		workers: workers,
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return c.workers > 1 }
func (c *CPUBackend) Cleanup()        {}
func (c *CPUBackend) Workers() int    { return c.workers }

// Rows deals rows out round-robin so the expensive band through the middle of the
// set is shared between workers.
func (c *CPUBackend) Rows(ctx context.Context, height int, fn func(y int)) error {
	if height < minParallelRows || c.workers == 1 {
		return serialRows(ctx, height, fn)
	}

	workers := c.workers
	if workers > height {
		workers = height
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for y := w; y < height; y += workers {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn(y)
			}
			return nil
		})
	}

	return g.Wait()
}
