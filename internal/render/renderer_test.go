package render_test

import (
	"context"
	"errors"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/render"
)

func thumbnail() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height = 4, 4
	cfg.Scale = 2
	cfg.MaxIterations = 5
	cfg.ColorPolicy = fractal.PolicyRed
	return cfg
}

// recompute builds the expected grid pixel by pixel without the renderer.
func recompute(cfg *config.Config) *render.Grid {
	eval, err := cfg.Evaluator()
	Expect(err).NotTo(HaveOccurred())
	grid := render.NewGrid(cfg.Width, cfg.Height)
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			p := fractal.Map(x, y, cfg.Raster())
			c, err := eval.Escape(p.A, p.B, cfg.MaxIterations)
			Expect(err).NotTo(HaveOccurred())
			grid.Set(x, y, c)
		}
	}
	return grid
}

func gridDiff(want, got *render.Grid) string {
	return cmp.Diff(want.Image(), got.Image())
}

var _ = Describe("Renderer", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("with the 4x4 reference raster", func() {
		It("produces the known grid", func() {
			r, err := render.New(thumbnail(), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())

			res, err := r.Render(ctx)
			Expect(err).NotTo(HaveOccurred())

			red := func(v uint8) fractal.Color { return fractal.Color{R: v} }
			want := [][]fractal.Color{
				{red(153), red(0), red(0), red(153)},
				{red(0), red(0), red(0), red(204)},
				{red(0), red(0), red(0), red(204)},
				{red(0), red(0), red(0), red(204)},
			}
			for y, row := range want {
				Expect(res.Grid.Row(y)).To(Equal(row), "row %d", y)
			}
		})

		It("matches an independent recomputation", func() {
			cfg := thumbnail()
			r, err := render.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			res, err := r.Render(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(gridDiff(recompute(cfg), res.Grid)).To(BeEmpty())
		})

		It("records per-pixel outcomes", func() {
			r, err := render.New(thumbnail(), compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())
			res, err := r.Render(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Outcomes).To(HaveLen(16))
			Expect(res.Outcomes[0]).To(Equal(fractal.Outcome{Escaped: true, Iteration: 3}))
			Expect(res.Outcomes[2*4+2]).To(Equal(fractal.Outcome{}))

			stats := res.Stats()
			Expect(stats.Pixels).To(Equal(16))
			Expect(stats.Escaped).To(Equal(5))
			Expect(stats.Bounded).To(Equal(11))
			Expect(stats.Histogram).To(Equal([]int{0, 0, 0, 2, 3}))
			Expect(stats.BoundedFraction()).To(BeNumerically("~", 11.0/16.0))
		})

		It("sizes the histogram by the latest escape, not the budget", func() {
			res := &render.Result{
				Outcomes: []fractal.Outcome{
					{Escaped: true, Iteration: 2},
					{},
					{Escaped: true, Iteration: 0},
				},
				MaxIterations: 1 << 50,
			}
			stats := res.Stats()
			Expect(stats.Histogram).To(Equal([]int{1, 0, 1}))
			Expect(stats.Bounded).To(Equal(1))
			Expect(render.NewStats([]fractal.Outcome{{}, {}}).Histogram).To(BeEmpty())
		})

		It("is reproducible across renders", func() {
			r, err := render.New(thumbnail(), nil)
			Expect(err).NotTo(HaveOccurred())
			first, err := r.Render(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := r.Render(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(gridDiff(first.Grid, second.Grid)).To(BeEmpty())
		})
	})

	Context("across backends", func() {
		It("fills identical grids serially and in parallel", func() {
			cfg := config.DefaultConfig()
			cfg.Width, cfg.Height = 120, 90
			cfg.MaxIterations = 64
			cfg.ColorPolicy = fractal.PolicyInverse

			serial, err := render.New(cfg, compute.NewSerialBackend())
			Expect(err).NotTo(HaveOccurred())
			parallel, err := render.New(cfg, compute.NewCPUBackend(8))
			Expect(err).NotTo(HaveOccurred())

			a, err := serial.Render(ctx)
			Expect(err).NotTo(HaveOccurred())
			b, err := parallel.Render(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(a.Backend).To(Equal("serial"))
			Expect(b.Backend).To(Equal("cpu"))
			Expect(gridDiff(a.Grid, b.Grid)).To(BeEmpty())
			Expect(b.Outcomes).To(Equal(a.Outcomes))
		})
	})

	Context("with the symmetric divergence test", func() {
		It("escapes points the positive-side test keeps iterating", func() {
			cfg := thumbnail()
			cfg.Scale = 6
			wide, err := render.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			cfg.Divergence = "symmetric"
			symmetric, err := render.New(cfg, nil)
			Expect(err).NotTo(HaveOccurred())

			w, err := wide.Render(ctx)
			Expect(err).NotTo(HaveOccurred())
			s, err := symmetric.Render(ctx)
			Expect(err).NotTo(HaveOccurred())

			// Pixel (0,0) maps to (-3,-3); one step later b is 15.
			Expect(w.Outcomes[0]).To(Equal(fractal.Outcome{Escaped: true, Iteration: 1}))
			Expect(s.Outcomes[0]).To(Equal(fractal.Outcome{Escaped: true, Iteration: 0}))
		})
	})

	Context("with an invalid configuration", func() {
		DescribeTable("rejects it before rendering",
			func(edit func(*config.Config)) {
				cfg := thumbnail()
				edit(cfg)
				_, err := render.New(cfg, nil)
				Expect(errors.Is(err, fractal.ErrInvalidConfig)).To(BeTrue(), "got %v", err)
			},
			Entry("zero width", func(c *config.Config) { c.Width = 0 }),
			Entry("negative height", func(c *config.Config) { c.Height = -1 }),
			Entry("zero scale", func(c *config.Config) { c.Scale = 0 }),
			Entry("zero iterations", func(c *config.Config) { c.MaxIterations = 0 }),
		)

		It("rejects an unknown backend", func() {
			cfg := thumbnail()
			cfg.Render.Backend = "cuda"
			_, err := render.New(cfg, nil)
			Expect(err).To(MatchError(compute.ErrUnknownBackend))
		})
	})

	Context("when the context is canceled", func() {
		It("returns the context error and no grid", func() {
			cfg := config.DefaultConfig()
			cfg.Width, cfg.Height = 64, 64
			r, err := render.New(cfg, compute.NewCPUBackend(4))
			Expect(err).NotTo(HaveOccurred())

			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := r.Render(cctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res).To(BeNil())
		})
	})
})

var _ = Describe("Grid", func() {
	It("converts to an opaque image", func() {
		g := render.NewGrid(2, 1)
		g.Set(1, 0, fractal.Color{R: 10, G: 20, B: 30})
		img := g.Image()
		Expect(img.Bounds().Dx()).To(Equal(2))
		Expect(img.RGBAAt(1, 0).R).To(Equal(uint8(10)))
		Expect(img.RGBAAt(1, 0).B).To(Equal(uint8(30)))
		Expect(img.RGBAAt(0, 0).A).To(Equal(uint8(255)))
	})
})
