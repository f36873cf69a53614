package pipeline

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"

	"golang.org/x/exp/rand"

	"msimpute/internal/config"
	"msimpute/internal/dataset"
	"msimpute/internal/exporter"
	"msimpute/internal/impute"
	"msimpute/internal/normalize"
	"msimpute/internal/quality"
	"msimpute/internal/report"
	"msimpute/internal/simulate"
	"msimpute/internal/sweep"
)

// LoadStep reads the raw intensity table and the optional sample metadata.
type LoadStep struct{}

func (LoadStep) ID() string   { return "load" }
func (LoadStep) Name() string { return "Data Loading" }

func (LoadStep) Validate(state *State) error {
	if state.Config.Input.RawPath == "" {
		return fmt.Errorf("no raw data path configured")
	}
	return nil
}

func (LoadStep) Run(ctx context.Context, state *State) error {
	in := state.Config.Input
	m, ann, err := dataset.Load(in.RawPath, dataset.LoadOptions{
		IDColumn:         in.IDColumn,
		IntensityPattern: in.IntensityPattern,
	}, state.Logger)
	if err != nil {
		return err
	}
	state.Raw = m
	state.Annotations = ann

	if in.MetadataPath != "" {
		md, err := dataset.LoadMetadata(in.MetadataPath, dataset.MetadataOptions{
			SampleColumn:    in.MetadataSampleColumn,
			ConditionColumn: in.MetadataConditionColumn,
			StripPrefix:     in.SamplePrefix,
		})
		if err != nil {
			return err
		}
		md.Align(m, in.SamplePrefix, state.Logger)
		state.Metadata = md
	}
	return nil
}

// FilterStep removes contaminant, decoy, and high-missingness rows.
type FilterStep struct{}

func (FilterStep) ID() string   { return "filter" }
func (FilterStep) Name() string { return "Quality Filtering" }

func (FilterStep) Validate(state *State) error {
	if state.Raw == nil {
		return fmt.Errorf("no raw matrix loaded")
	}
	return nil
}

func (FilterStep) Run(ctx context.Context, state *State) error {
	f := state.Config.Filter
	filtered, ann, _, err := quality.Filter(state.Raw, state.Annotations, quality.FilterOptions{
		ContaminantColumn:  f.ContaminantColumn,
		ReverseColumn:      f.ReverseColumn,
		Marker:             f.Marker,
		MaxMissingFraction: f.MaxMissingFraction,
	}, state.Logger)
	if err != nil {
		return err
	}
	state.Filtered = filtered
	state.Annotations = ann
	return nil
}

// NormalizeStep log2-transforms intensities and median-centers each sample.
type NormalizeStep struct{}

func (NormalizeStep) ID() string   { return "normalize" }
func (NormalizeStep) Name() string { return "Transformation and Normalization" }

func (NormalizeStep) Validate(state *State) error {
	if state.Filtered == nil {
		return fmt.Errorf("no filtered matrix available")
	}
	return nil
}

func (NormalizeStep) Run(ctx context.Context, state *State) error {
	logged, _ := dataset.Log2Transform(state.Filtered, state.Logger)
	normalized, _, err := normalize.MedianCenter(logged, state.Logger)
	if err != nil {
		return err
	}
	state.Normalized = normalized
	return nil
}

// SimulateStep builds one missingness variant per (mechanism, proportion)
// pair from the normalized matrix. Each pair draws from its own random
// source derived from the run seed, so pairs are independent and the whole
// set reproduces under a fixed seed regardless of execution order.
type SimulateStep struct{}

func (SimulateStep) ID() string   { return "simulate" }
func (SimulateStep) Name() string { return "Missingness Simulation" }

func (SimulateStep) Validate(state *State) error {
	if state.Normalized == nil {
		return fmt.Errorf("no normalized matrix available")
	}
	return nil
}

func (SimulateStep) Run(ctx context.Context, state *State) error {
	sim := state.Config.Simulation
	for _, mechName := range sim.Mechanisms {
		mech, err := simulate.ParseMechanism(mechName)
		if err != nil {
			return err
		}
		for _, p := range sim.Proportions {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(deriveSeed(sim.Seed, mechName, p)))
			variant, err := simulate.Apply(state.Normalized, mech, p, rng, state.Logger)
			if err != nil {
				return fmt.Errorf("simulate %s at %v: %w", mech, p, err)
			}
			name := exporter.VariantFileName(mech, p)
			state.Variants = append(state.Variants, sweep.Dataset{
				Name:   name[:len(name)-len(".csv")],
				Matrix: variant,
			})
		}
	}
	return nil
}

// deriveSeed mixes the run seed with the pair identity so every simulation
// call gets an independent, reproducible source.
func deriveSeed(base uint64, mechanism string, proportion float64) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.6f", mechanism, proportion)
	return base ^ h.Sum64()
}

// ExportStep persists the complete normalized matrix, every variant, and
// the QC summary.
type ExportStep struct{}

func (ExportStep) ID() string   { return "export" }
func (ExportStep) Name() string { return "Dataset Export" }

func (ExportStep) Validate(state *State) error {
	if state.Normalized == nil {
		return fmt.Errorf("no normalized matrix available")
	}
	return nil
}

func (ExportStep) Run(ctx context.Context, state *State) error {
	if err := state.Paths.EnsureDirs(); err != nil {
		return err
	}
	w := exporter.NewCSVWriter(state.Paths.DatasetsDir, state.Logger)

	path, err := w.WriteMatrix(config.CompleteMatrixFile, state.Normalized)
	if err != nil {
		return err
	}
	rows, cols := state.Normalized.Shape()
	state.Manifest.AddArtifact(Artifact{Kind: "complete", Path: path, Rows: rows, Cols: cols})

	for _, v := range state.Variants {
		path, err := w.WriteMatrix(v.Name+".csv", v.Matrix)
		if err != nil {
			return err
		}
		rows, cols := v.Matrix.Shape()
		state.Manifest.AddArtifact(Artifact{Kind: "variant", Path: path, Rows: rows, Cols: cols})
	}

	if frac := state.Config.Split.TestFraction; frac > 0 {
		rng := rand.New(rand.NewSource(state.Config.Split.Seed))
		train, test, err := dataset.Split(state.Normalized, frac, rng)
		if err != nil {
			return err
		}
		for _, part := range []struct {
			name string
			m    *dataset.Matrix
		}{
			{config.TrainMatrixFile, train},
			{config.TestMatrixFile, test},
		} {
			path, err := w.WriteMatrix(part.name, part.m)
			if err != nil {
				return err
			}
			rows, cols := part.m.Shape()
			state.Manifest.AddArtifact(Artifact{Kind: "split", Path: path, Rows: rows, Cols: cols})
		}
	}

	summaries, err := quality.Summarize(state.Normalized)
	if err != nil {
		return err
	}
	headers, records := quality.SummaryRecords(summaries)
	rw := exporter.NewCSVWriter(state.Paths.ReportsDir, state.Logger)
	path, err = rw.WriteRecords(config.QCReportFile, headers, records)
	if err != nil {
		return err
	}
	state.Manifest.AddArtifact(Artifact{Kind: "report", Path: path})
	return nil
}

// SweepStep imputes every variant with every configured strategy and writes
// the missing-count log. Variants come from the in-memory state when the
// full pipeline runs, or are discovered on disk when the impute stage runs
// standalone.
type SweepStep struct{}

func (SweepStep) ID() string   { return "sweep" }
func (SweepStep) Name() string { return "Imputation Sweep" }

func (SweepStep) Validate(state *State) error {
	if state.Config.Imputation.KNeighbors <= 0 {
		return fmt.Errorf("k for knn must be positive")
	}
	return nil
}

func (s SweepStep) Run(ctx context.Context, state *State) error {
	if len(state.Variants) == 0 {
		variants, err := sweep.DiscoverVariants(state.Paths.DatasetsDir, state.Logger)
		if err != nil {
			return err
		}
		state.Variants = variants
	}
	if len(state.Variants) == 0 {
		state.Logger.Warn("no missingness variants to impute")
		return nil
	}

	imp := state.Config.Imputation
	strategies, err := impute.ForNames(imp.Strategies, impute.Options{
		K:             imp.KNeighbors,
		MaxIterations: imp.MaxIterations,
		Tolerance:     imp.Tolerance,
	})
	if err != nil {
		return err
	}

	if err := state.Paths.EnsureDirs(); err != nil {
		return err
	}
	w := exporter.NewCSVWriter(state.Paths.ImputedDir, state.Logger)
	results, err := sweep.New(w, strategies, imp.Parallelism, state.Logger).Run(ctx, state.Variants)
	if err != nil {
		return err
	}
	state.SweepResults = &results

	for _, pair := range results.Pairs {
		if pair.Err != nil {
			continue
		}
		state.Manifest.AddArtifact(Artifact{Kind: "imputed", Path: pair.ImputedPath})
		state.Manifest.AddArtifact(Artifact{Kind: "heatmap", Path: pair.HeatmapPath})
	}

	report.LogCounts(results.Counts, state.Logger)
	rw := exporter.NewCSVWriter(state.Paths.ReportsDir, state.Logger)
	path, err := report.WriteCounts(rw, results.Counts)
	if err != nil {
		return err
	}
	state.Manifest.AddArtifact(Artifact{Kind: "report", Path: path})

	if failed := results.Failed(); failed > 0 {
		state.Logger.Warn("sweep finished with failed pairs", slog.Int("failed", failed))
	}
	return nil
}

// SimulationSteps are the steps of the simulation stage (stage A).
func SimulationSteps() []Step {
	return []Step{LoadStep{}, FilterStep{}, NormalizeStep{}, SimulateStep{}, ExportStep{}}
}

// ImputationSteps are the steps of the imputation stage (stage B).
func ImputationSteps() []Step {
	return []Step{SweepStep{}}
}

// AllSteps runs both stages in one process.
func AllSteps() []Step {
	return append(SimulationSteps(), ImputationSteps()...)
}
