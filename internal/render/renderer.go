package render

import (
	"context"
	"fmt"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/fractal"
)

type Renderer struct {
	raster        fractal.Raster
	maxIterations int
	eval          fractal.Evaluator
	backend       compute.Backend
	logger        bslogger.Logger
}

type Option func(*Renderer)

func WithLogger(logger bslogger.Logger) Option {
	return func(r *Renderer) { r.logger = logger }
}

// New validates cfg and binds it to backend. A nil backend selects one from
// cfg.Render.
func New(cfg *config.Config, backend compute.Backend, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	eval, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}
	if backend == nil {
		backend, err = compute.GetBackend(cfg.Render.Backend, cfg.Render.Workers)
		if err != nil {
			return nil, err
		}
	}

	r := &Renderer{
		raster:        cfg.Raster(),
		maxIterations: cfg.MaxIterations,
		eval:          eval,
		backend:       backend,
		logger:        bslogger.NewLogger("Renderer", bslogger.Minimal, nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type Result struct {
	Grid *Grid
	// Outcomes shares the row-major layout of Grid.
	Outcomes      []fractal.Outcome
	MaxIterations int
	Backend       string
	Elapsed       time.Duration
}

func (r *Result) Stats() Stats {
	return NewStats(r.Outcomes)
}

// Render evaluates every pixel and returns the completed grid. On cancellation the
// partial grid is discarded.
func (r *Renderer) Render(ctx context.Context) (*Result, error) {
	w, h := r.raster.Width, r.raster.Height
	grid := NewGrid(w, h)
	outcomes := make([]fractal.Outcome, w*h)

	r.logger.Infof("rendering %dx%d, scale %g, %d iterations on %s backend", w, h, r.raster.Scale, r.maxIterations, r.backend.Name())
	start := time.Now()

	err := r.backend.Rows(ctx, h, func(y int) {
		row := grid.Row(y)
		rowOut := outcomes[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			// maxIterations was validated in New, so Escape cannot fail here.
			out, _ := fractal.Escape(fractal.Map(x, y, r.raster), r.maxIterations, r.eval.Divergence)
			rowOut[x] = out
			row[x] = r.eval.Policy(out.Escaped, out.Iteration, r.maxIterations)
		}
	})
	if err != nil {
		r.logger.Warningf("render stopped: %v", err)
		return nil, fmt.Errorf("render: %w", err)
	}

	elapsed := time.Since(start)
	r.logger.Infof("rendered %d pixels in %v", w*h, elapsed)

	return &Result{
		Grid:          grid,
		Outcomes:      outcomes,
		MaxIterations: r.maxIterations,
		Backend:       r.backend.Name(),
		Elapsed:       elapsed,
	}, nil
}

func (r *Renderer) Raster() fractal.Raster { return r.raster }
func (r *Renderer) Backend() string        { return r.backend.Name() }
