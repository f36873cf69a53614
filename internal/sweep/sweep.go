// Package sweep applies every configured imputation strategy to every
// persisted missingness variant, writing one imputed CSV and one missingness
// heatmap per (dataset, strategy) pair. Pairs are independent, so the sweep
// can run them concurrently when configured to; failures are counted and
// logged without stopping the remaining pairs.
package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"msimpute/internal/dataset"
	"msimpute/internal/exporter"
	"msimpute/internal/impute"
	"msimpute/internal/report"
)

// Dataset pairs a missingness variant with its name (the variant file name
// without extension).
type Dataset struct {
	Name   string
	Matrix *dataset.Matrix
}

// PairResult records one (dataset, strategy) outcome.
type PairResult struct {
	Dataset     string
	Strategy    string
	ImputedPath string
	HeatmapPath string
	Err         error
}

// Results summarizes a sweep.
type Results struct {
	Pairs   []PairResult
	Skipped []string
	Counts  []report.MissingCount
}

// Failed counts the pairs that returned an error.
func (r Results) Failed() int {
	n := 0
	for _, p := range r.Pairs {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Sweep runs the imputation battery.
type Sweep struct {
	writer      *exporter.CSVWriter
	strategies  []impute.Strategy
	parallelism int
	logger      *slog.Logger
}

// New creates a sweep. parallelism bounds concurrent pairs; values below 1
// are treated as sequential.
func New(writer *exporter.CSVWriter, strategies []impute.Strategy, parallelism int, logger *slog.Logger) *Sweep {
	if logger == nil {
		logger = slog.Default()
	}
	if parallelism < 1 {
		parallelism = 1
	}
	return &Sweep{
		writer:      writer,
		strategies:  strategies,
		parallelism: parallelism,
		logger:      logger,
	}
}

// Run imputes every dataset with every strategy. Empty datasets are skipped
// with a warning. The returned error reflects only infrastructure failures
// (context cancellation); per-pair errors live in the results.
func (s *Sweep) Run(ctx context.Context, datasets []Dataset) (Results, error) {
	var results Results
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, ds := range datasets {
		if ds.Matrix == nil || ds.Matrix.IsEmpty() {
			s.logger.Warn("skipping empty dataset", slog.String("dataset", ds.Name))
			results.Skipped = append(results.Skipped, ds.Name)
			continue
		}
		results.Counts = append(results.Counts, report.Count(ds.Name, ds.Matrix))

		for _, strategy := range s.strategies {
			ds, strategy := ds, strategy
			g.Go(func() error {
				pair := s.runPair(gctx, ds, strategy)
				mu.Lock()
				results.Pairs = append(results.Pairs, pair)
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("imputation sweep: %w", err)
	}

	// Deterministic ordering regardless of completion order.
	sort.Slice(results.Pairs, func(a, b int) bool {
		if results.Pairs[a].Dataset != results.Pairs[b].Dataset {
			return results.Pairs[a].Dataset < results.Pairs[b].Dataset
		}
		return results.Pairs[a].Strategy < results.Pairs[b].Strategy
	})

	s.logger.Info("imputation sweep finished",
		slog.Int("pairs", len(results.Pairs)),
		slog.Int("failed", results.Failed()),
		slog.Int("skipped_datasets", len(results.Skipped)))
	return results, nil
}

func (s *Sweep) runPair(ctx context.Context, ds Dataset, strategy impute.Strategy) PairResult {
	pair := PairResult{Dataset: ds.Name, Strategy: strategy.Name()}
	logger := s.logger.With(
		slog.String("dataset", ds.Name),
		slog.String("strategy", strategy.Name()))

	imputed, err := strategy.Impute(ctx, ds.Matrix)
	if err != nil {
		logger.Warn("imputation failed", slog.Any("error", err))
		pair.Err = fmt.Errorf("impute %s with %s: %w", ds.Name, strategy.Name(), err)
		return pair
	}

	pair.ImputedPath, err = s.writer.WriteMatrix(exporter.ImputedFileName(ds.Name, strategy.Name()), imputed)
	if err != nil {
		logger.Warn("writing imputed matrix failed", slog.Any("error", err))
		pair.Err = fmt.Errorf("write imputed %s/%s: %w", ds.Name, strategy.Name(), err)
		return pair
	}

	heatmapPath := filepath.Join(s.writer.OutDir(), exporter.HeatmapFileName(ds.Name, strategy.Name()))
	if err := report.RenderMissingMap(ds.Matrix, ds.Name+" / "+strategy.Name(), heatmapPath); err != nil {
		logger.Warn("rendering missingness heatmap failed", slog.Any("error", err))
		pair.Err = fmt.Errorf("render heatmap %s/%s: %w", ds.Name, strategy.Name(), err)
		return pair
	}
	pair.HeatmapPath = heatmapPath

	logger.Info("pair imputed",
		slog.String("imputed_path", pair.ImputedPath))
	return pair
}
