package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/softbody/config"
)

// formatDuration formats a duration as HhMMmSSs or MmSSs for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	targetSag := flag.Float64("target-sag", 0.15, "Desired drop of the cloth center, in world units")
	settle := flag.Float64("settle", 1.5, "Simulated seconds before measuring")
	measure := flag.Float64("measure", 0.5, "Simulated seconds averaged over")
	width := flag.Int("width", 0, "Cloth width override (0 = use config)")
	height := flag.Int("height", 0, "Cloth height override (0 = use config)")
	windy := flag.Bool("wind", false, "Keep wind enabled during evaluation")
	maxEvals := flag.Int("max-evals", 60, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if *outputDir == "" {
		fatal("missing flag", fmt.Errorf("--output is required"))
	}
	if *targetSag <= 0 {
		fatal("invalid flag", fmt.Errorf("--target-sag must be positive, got %g", *targetSag))
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fatal("failed to create output directory", err)
	}

	baseCfg, err := config.Load(*configPath)
	if err != nil {
		fatal("failed to load config", err)
	}
	baseCfg.Scene.Cloth.Enabled = true
	if *width > 0 {
		baseCfg.Scene.Cloth.Width = *width
	}
	if *height > 0 {
		baseCfg.Scene.Cloth.Height = *height
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, baseCfg, *targetSag, *settle, *measure, !*windy)

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		fatal("failed to create log file", err)
	}
	defer logFile.Close()

	logWriter := csv.NewWriter(logFile)
	defer logWriter.Flush()

	header := []string{"eval", "fitness", "sag"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	if err := logWriter.Write(header); err != nil {
		fatal("failed to write log header", err)
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(raw)
			sag := evaluator.LastSag()
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append(bestParams[:0], raw...)
			}

			row := []string{strconv.Itoa(evalCount), fmt.Sprintf("%.6g", fitness), fmt.Sprintf("%.6f", sag)}
			for _, v := range raw {
				row = append(row, fmt.Sprintf("%.4f", v))
			}
			if err := logWriter.Write(row); err != nil {
				slog.Error("failed to write log row", "error", err)
			}
			logWriter.Flush()

			elapsed := time.Since(startTime)
			slog.Info("evaluation",
				"eval", evalCount,
				"max_evals", *maxEvals,
				"sag", sag,
				"fitness", fitness,
				"best", bestFitness,
				"elapsed", formatDuration(elapsed),
			)
			return fitness
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
	}
	method := &optimize.NelderMead{
		SimplexSize: 0.2,
	}

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	slog.Info("starting calibration",
		"params", params.Dim(),
		"target_sag", *targetSag,
		"cloth_width", baseCfg.Scene.Cloth.Width,
		"cloth_height", baseCfg.Scene.Cloth.Height,
		"max_evals", *maxEvals,
	)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Warn("optimization ended", "error", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		fatal("no evaluations completed", err)
	}

	slog.Info("calibration complete",
		"evaluations", evalCount,
		"duration", formatDuration(time.Since(startTime)),
		"best_fitness", bestFitness,
	)
	for i, spec := range params.Specs {
		slog.Info("best parameter", "name", spec.Name, "path", spec.Path, "log10", bestParams[i], "value", math.Pow(10, bestParams[i]))
	}

	bestCfg := *baseCfg
	params.ApplyToConfig(&bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		return
	}
	slog.Info("best config saved", "path", configOutPath)
}
