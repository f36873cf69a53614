package pipeline

import (
	"log/slog"

	"github.com/google/uuid"

	"msimpute/internal/config"
	"msimpute/internal/dataset"
	"msimpute/internal/sweep"
)

// State is the shared context threaded through the steps of one run.
type State struct {
	RunID  string
	Config *config.Config
	Paths  *config.Paths
	Logger *slog.Logger

	// Matrices produced along the way.
	Raw         *dataset.Matrix
	Annotations dataset.Annotations
	Metadata    *dataset.Metadata
	Filtered    *dataset.Matrix
	Normalized  *dataset.Matrix

	// Variants feeding the imputation sweep.
	Variants []sweep.Dataset

	// SweepResults is populated by the sweep step.
	SweepResults *sweep.Results

	Manifest *Manifest
}

// NewState prepares the run state: a fresh run ID, the output path layout,
// and an empty manifest.
func NewState(cfg *config.Config, logger *slog.Logger) *State {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.NewString()
	return &State{
		RunID:    runID,
		Config:   cfg,
		Paths:    config.NewPaths(cfg.Output.Dir),
		Logger:   logger.With(slog.String("run_id", runID)),
		Manifest: NewManifest(runID, cfg),
	}
}
