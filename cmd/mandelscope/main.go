package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/guptarohit/asciigraph"
	"github.com/mattn/go-isatty"
	"github.com/san-kum/mandelscope/internal/compute"
	"github.com/san-kum/mandelscope/internal/config"
	"github.com/san-kum/mandelscope/internal/console"
	"github.com/san-kum/mandelscope/internal/display"
	"github.com/san-kum/mandelscope/internal/fractal"
	"github.com/san-kum/mandelscope/internal/gui"
	"github.com/san-kum/mandelscope/internal/render"
	"github.com/san-kum/mandelscope/internal/storage"
	"github.com/san-kum/mandelscope/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	debug      bool

	width      int
	height     int
	scale      float64
	iterations int
	policy     string
	divergence string
	backend    string
	workers    int
	surface    string
	output     string

	columns   int
	trueColor bool
	save      bool
	plain     bool
	benchRuns int
	caption   string
	overlay   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mandelscope",
		Short:         "escape-time mandelbrot renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mandelscope", "data directory for saved renders")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "named preset (see 'presets')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log everything")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render the set and present it",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	addRasterFlags(renderCmd)
	addRenderFlags(renderCmd)
	renderCmd.Flags().StringVar(&surface, "display", config.DefaultDisplay, "display surface: terminal, braille, png, gif, svg, window, none")
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "output file for png, gif and svg")
	renderCmd.Flags().IntVar(&columns, "columns", 100, "maximum terminal columns (0 = one per pixel)")
	renderCmd.Flags().BoolVar(&trueColor, "truecolor", false, "force 24-bit color output")
	renderCmd.Flags().BoolVar(&save, "save", false, "store the render under the data directory")
	renderCmd.Flags().StringVar(&caption, "caption", "", "text drawn into png and gif output")

	evalCmd := &cobra.Command{
		Use:   "eval [a b iterations]",
		Short: "evaluate single points interactively",
		Long: "With three arguments, evaluates that point and exits. Otherwise reads a, b and\n" +
			"iterations from the console until end of input.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return fmt.Errorf("expected 0 or 3 arguments, got %d", len(args))
			}
			return nil
		},
		RunE: runEval,
	}
	evalCmd.Flags().StringVar(&policy, "policy", fractal.PolicyRed, "color policy")
	evalCmd.Flags().StringVar(&divergence, "divergence", config.DefaultDivergence, "divergence test: positive or symmetric")
	evalCmd.Flags().BoolVar(&plain, "plain", false, "line-based prompts even on a terminal")

	orbitCmd := &cobra.Command{
		Use:   "orbit [a] [b]",
		Short: "trace the orbit of one point",
		Args:  cobra.ExactArgs(2),
		RunE:  runOrbit,
	}
	addRasterFlags(orbitCmd)
	addRenderFlags(orbitCmd)
	orbitCmd.Flags().StringVar(&overlay, "overlay", "", "also draw the orbit over a render of the raster into this png")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "render and summarise escape iterations",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	addRasterFlags(statsCmd)
	addRenderFlags(statsCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every compute backend",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	addRasterFlags(benchCmd)
	benchCmd.Flags().IntVar(&workers, "workers", 0, "cpu workers (0 = one per CPU)")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 3, "renders per backend")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRASTER\tSCALE\tITER\tPOLICY\tDISPLAY\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%g\t%d\t%s\t%s\t%s\n",
					name, p.Width, p.Height, p.Scale, p.MaxIterations, p.ColorPolicy, p.Render.Display, config.DescribePreset(name))
			}
			return w.Flush()
		},
	}

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "list color policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDESCRIPTION")
			for _, name := range fractal.PolicyNames() {
				fmt.Fprintf(w, "%s\t%s\n", name, fractal.DescribePolicy(name))
			}
			return w.Flush()
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved renders",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the escape histogram of a saved render",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved render as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	rootCmd.AddCommand(renderCmd, evalCmd, orbitCmd, statsCmd, benchCmd, presetsCmd, policiesCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRasterFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "raster width in pixels")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "raster height in pixels")
	cmd.Flags().Float64Var(&scale, "scale", config.DefaultScale, "extent of the plane on each axis")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", config.DefaultMaxIterations, "maximum iterations")
	cmd.Flags().StringVar(&policy, "policy", config.DefaultPolicy, "color policy (see 'policies')")
	cmd.Flags().StringVar(&divergence, "divergence", config.DefaultDivergence, "divergence test: positive or symmetric")
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "compute backend: cpu or serial")
	cmd.Flags().IntVar(&workers, "workers", 0, "cpu workers (0 = one per CPU)")
}

func newLogger(name string) bslogger.Logger {
	switch {
	case debug:
		return bslogger.NewLogger(name, bslogger.All, nil)
	case verbose:
		return bslogger.NewLogger(name, bslogger.Normal, nil)
	}
	return bslogger.NewLogger(name, bslogger.Minimal, nil)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadConfig layers the preset, the config file and explicitly set flags, in that
// order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}
	if flags.Changed("iterations") {
		cfg.MaxIterations = iterations
	}
	if flags.Changed("policy") {
		cfg.ColorPolicy = policy
	}
	if flags.Changed("divergence") {
		cfg.Divergence = divergence
	}
	if flags.Changed("backend") {
		cfg.Render.Backend = backend
	}
	if flags.Changed("workers") {
		cfg.Render.Workers = workers
	}
	if flags.Changed("display") {
		cfg.Render.Display = surface
	}
	if flags.Changed("output") {
		cfg.Render.Output = output
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openSurface(cfg *config.Config) (display.Surface, error) {
	if cfg.Render.Display == "window" {
		win := gui.NewWindow("mandelscope")
		win.Caption = fmt.Sprintf("%s, %d iterations", cfg.ColorPolicy, cfg.MaxIterations)
		return win, nil
	}

	out := cfg.Render.Output
	switch cfg.Render.Display {
	case "png", "gif", "svg":
		if out == "" {
			out = "mandelbrot." + cfg.Render.Display
		}
	}
	return display.New(cfg.Render.Display, display.Options{
		Output:    out,
		Writer:    os.Stdout,
		Columns:   columns,
		TrueColor: trueColor,
		Caption:   caption,
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	logger := newLogger("Render")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	surf, err := openSurface(cfg)
	if err != nil {
		return err
	}

	r, err := render.New(cfg, nil, render.WithLogger(newLogger("Renderer")))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := r.Render(ctx)
	if err != nil {
		return err
	}
	logger.Infof("%dx%d on %s in %v", cfg.Width, cfg.Height, res.Backend, res.Elapsed.Round(time.Millisecond))

	if err := surf.Present(ctx, res.Grid); err != nil {
		return fmt.Errorf("%s: %w", surf.Name(), err)
	}
	if cfg.Render.Display == "png" || cfg.Render.Display == "gif" || cfg.Render.Display == "svg" {
		logger.Infof("wrote %s", outputPath(cfg))
	}

	if save {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "saved: %s\n", runID)
	}
	return nil
}

func outputPath(cfg *config.Config) string {
	if cfg.Render.Output != "" {
		return cfg.Render.Output
	}
	return "mandelbrot." + cfg.Render.Display
}

// evalConfig resolves the preset, config file and eval flags. Raster settings are
// not checked since eval never renders.
func evalConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("policy") {
		cfg.ColorPolicy = policy
	}
	if cmd.Flags().Changed("divergence") {
		cfg.Divergence = divergence
	}
	return cfg, nil
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := evalConfig(cmd)
	if err != nil {
		return err
	}
	eval, err := cfg.Evaluator()
	if err != nil {
		return err
	}

	if len(args) == 3 {
		req, err := parseRequest(args)
		if err != nil {
			return err
		}
		resp, err := console.Evaluate(eval, req)
		if err != nil {
			return err
		}
		fmt.Println(resp)
		return nil
	}

	if !plain && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		m, err := tui.FromConfig(cfg)
		if err != nil {
			return err
		}
		_, err = tui.Run(m)
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	session := console.NewSession(os.Stdin, os.Stdout, eval)
	session.SetLogger(newLogger("Console"))
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseRequest(args []string) (console.Request, error) {
	a, err := console.ParseCoordinate(args[0])
	if err != nil {
		return console.Request{}, fmt.Errorf("a: %w", err)
	}
	b, err := console.ParseCoordinate(args[1])
	if err != nil {
		return console.Request{}, fmt.Errorf("b: %w", err)
	}
	n, err := console.ParseIterations(args[2])
	if err != nil {
		return console.Request{}, fmt.Errorf("iterations: %w", err)
	}
	return console.Request{A: a, B: b, Iterations: n}, nil
}

func runOrbit(cmd *cobra.Command, args []string) error {
	a, err := console.ParseCoordinate(args[0])
	if err != nil {
		return fmt.Errorf("a: %w", err)
	}
	b, err := console.ParseCoordinate(args[1])
	if err != nil {
		return fmt.Errorf("b: %w", err)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eval, err := cfg.Evaluator()
	if err != nil {
		return err
	}

	start := fractal.Point{A: a, B: b}
	orbit, out, err := fractal.Orbit(start, cfg.MaxIterations, eval.Divergence)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "STEP\tA\tB\t")
	as := make([]float64, len(orbit))
	bs := make([]float64, len(orbit))
	for i, p := range orbit {
		fmt.Fprintf(w, "%d\t%s\t%s\t\n", i, strconv.FormatFloat(p.A, 'g', 6, 64), strconv.FormatFloat(p.B, 'g', 6, 64))
		as[i], bs[i] = p.A, p.B
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	if len(orbit) > 1 {
		graph := asciigraph.PlotMany([][]float64{as, bs},
			asciigraph.Height(10),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption("a (red), b (blue) per step"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	c := eval.Policy(out.Escaped, out.Iteration, cfg.MaxIterations)
	fmt.Printf("%s: %s, color %s\n", start, out, c)

	if overlay != "" {
		return drawOverlay(cfg, orbit)
	}
	return nil
}

func drawOverlay(cfg *config.Config, orbit []fractal.Point) error {
	r, err := render.New(cfg, nil, render.WithLogger(newLogger("Renderer")))
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	res, err := r.Render(ctx)
	if err != nil {
		return err
	}

	o := display.NewOverlay(res.Grid.Image())
	o.Orbit(r.Raster(), orbit, 2, color.RGBA{G: 220, B: 255, A: 255})
	o.Caption(fmt.Sprintf("orbit of %s", orbit[0]), color.White)

	f, err := os.Create(overlay)
	if err != nil {
		return err
	}
	if err := png.Encode(f, o.Image()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger := newLogger("Orbit")
	logger.Infof("wrote %s", overlay)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	r, err := render.New(cfg, nil, render.WithLogger(newLogger("Renderer")))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := r.Render(ctx)
	if err != nil {
		return err
	}
	printStats(res.Stats(), cfg.MaxIterations)
	fmt.Printf("  time      %v on %s\n", res.Elapsed.Round(time.Microsecond), res.Backend)
	return nil
}

func printStats(s render.Stats, maxIterations int) {
	fmt.Printf("\n  pixels    %d\n", s.Pixels)
	fmt.Printf("  escaped   %d\n", s.Escaped)
	fmt.Printf("  bounded   %d (%.1f%%)\n\n", s.Bounded, 100*s.BoundedFraction())

	if len(s.Histogram) > 1 {
		data := make([]float64, len(s.Histogram))
		for i, n := range s.Histogram {
			data[i] = float64(n)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Caption(fmt.Sprintf("pixels escaping at each of %d iterations", maxIterations)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if benchRuns < 1 {
		return fmt.Errorf("runs must be at least 1, got %d", benchRuns)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("benchmarking %dx%d, %d iterations\n\n", cfg.Width, cfg.Height, cfg.MaxIterations)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tWORKERS\tRUNS\tMEAN\tMPIXELS/SEC")

	for _, name := range compute.ListBackends() {
		b, err := compute.GetBackend(name, workers)
		if err != nil {
			return err
		}
		r, err := render.New(cfg, b)
		if err != nil {
			return err
		}

		var total time.Duration
		for i := 0; i < benchRuns; i++ {
			res, err := r.Render(ctx)
			if err != nil {
				return err
			}
			total += res.Elapsed
		}
		b.Cleanup()

		n := 1
		if cpu, ok := b.(*compute.CPUBackend); ok {
			n = cpu.Workers()
		}
		mean := total / time.Duration(benchRuns)
		rate := float64(cfg.Width*cfg.Height) / mean.Seconds() / 1e6
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.2f\n", name, n, benchRuns, mean.Round(time.Microsecond), rate)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no saved renders")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tRASTER\tSCALE\tITER\tPOLICY\tBOUNDED\tELAPSED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%g\t%d\t%s\t%d\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Width, run.Config.Height,
			run.Config.Scale,
			run.Config.MaxIterations,
			run.Config.ColorPolicy,
			run.Bounded,
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	hist, err := st.LoadHistogram(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s  %dx%d  %s\n", meta.ID, meta.Config.Width, meta.Config.Height, st.ImagePath(meta.ID))
	printStats(render.Stats{
		Pixels:    meta.Pixels,
		Escaped:   meta.Escaped,
		Bounded:   meta.Bounded,
		Histogram: hist,
	}, meta.Config.MaxIterations)
	return nil
}
