package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/softbody/config"
	"github.com/pthm-cable/softbody/game"
)

var (
	configPath  string
	outputDir   string
	logStats    bool
	statsWindow float64
	maxTicks    int
	frameDt     float64
	plotHeight  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "softbody",
		Short:         "XPBD deformable-body sandbox",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runViewer,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "output directory for CSV logs and config snapshot")
	rootCmd.PersistentFlags().BoolVar(&logStats, "log-stats", false, "output stats via slog")
	rootCmd.PersistentFlags().Float64Var(&statsWindow, "stats-window", 0, "stats window size in seconds (0 = use config)")
	rootCmd.PersistentFlags().IntVar(&maxTicks, "max-ticks", 0, "stop after N fixed steps (0 = unlimited)")

	headlessCmd := &cobra.Command{
		Use:   "headless",
		Short: "run the simulation without graphics",
		Args:  cobra.NoArgs,
		RunE:  runHeadless,
	}
	headlessCmd.Flags().Float64Var(&frameDt, "frame-dt", 1.0/60.0, "frame time fed to the solver per update, in seconds")
	headlessCmd.Flags().BoolVar(&plotHeight, "plot", true, "print a chart of the tracked particle's height on exit")

	rootCmd.AddCommand(headlessCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("softbody failed", "error", err)
		os.Exit(1)
	}
}

// setup loads config and installs the JSON logger.
func setup() (game.Options, error) {
	if err := config.Init(configPath); err != nil {
		return game.Options{}, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	return game.Options{
		LogStats:    logStats,
		StatsWindow: statsWindow,
		OutputDir:   outputDir,
	}, nil
}

func runViewer(cmd *cobra.Command, args []string) error {
	opts, err := setup()
	if err != nil {
		return err
	}
	cfg := config.Cfg()

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), game.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape deselects in the inspector
	rl.SetExitKey(0)

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

func runHeadless(cmd *cobra.Command, args []string) error {
	if frameDt <= 0 {
		return fmt.Errorf("--frame-dt must be positive, got %g", frameDt)
	}
	opts, err := setup()
	if err != nil {
		return err
	}
	opts.Headless = true

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	slog.Info("starting headless simulation",
		"frame_dt", frameDt,
		"max_ticks", maxTicks,
		"output_dir", outputDir,
	)

	var heights []float64
	for {
		g.UpdateHeadless(frameDt)
		if plotHeight {
			if pos, ok := g.TrackedPosition(); ok {
				heights = append(heights, pos.Y)
			}
		}

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick(), "sim_time", g.SimTime())
			break
		}
		if ctx.Err() != nil {
			slog.Info("interrupted", "tick", g.Tick(), "sim_time", g.SimTime())
			break
		}
	}

	if plotHeight && len(heights) > 1 {
		printHeights(heights)
	}
	return nil
}

// printHeights charts the tracked particle's height per frame.
func printHeights(heights []float64) {
	graph := asciigraph.Plot(heights,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("tracked particle height (y) per frame"),
	)
	fmt.Println(graph)
}
