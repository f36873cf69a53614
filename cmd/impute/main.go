// Command impute runs the second analysis stage: it discovers the persisted
// missingness variants in the output directory and applies every configured
// imputation strategy to each of them, writing imputed CSVs, the
// missing-value count log, and a missingness heatmap per pair.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"msimpute/internal/config"
	"msimpute/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (optional)")
	outDir := flag.String("out", "", "output directory holding the variant datasets (overrides config)")
	k := flag.Int("k", 0, "neighbor count for knn (overrides config when positive)")
	flag.Parse()

	// The impute stage reads variants from disk; the raw input path is not
	// needed, so satisfy the required field when it is absent.
	if os.Getenv("MSIMPUTE_INPUT_RAW_PATH") == "" {
		os.Setenv("MSIMPUTE_INPUT_RAW_PATH", "unused")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *k > 0 {
		cfg.Imputation.KNeighbors = *k
	}

	state := pipeline.NewState(cfg, slog.Default())
	runner := pipeline.NewRunner(slog.Default(), pipeline.ImputationSteps()...)
	if err := runner.Run(context.Background(), state); err != nil {
		slog.Error("imputation stage failed", "error", err)
		os.Exit(1)
	}

	failed := 0
	if state.SweepResults != nil {
		failed = state.SweepResults.Failed()
	}
	slog.Info("imputation stage completed",
		"run_id", state.RunID,
		"failed_pairs", failed,
		"imputed_dir", state.Paths.ImputedDir)
	if failed > 0 {
		os.Exit(1)
	}
}
