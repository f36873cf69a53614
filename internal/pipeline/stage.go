package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Step is one unit of the pipeline.
type Step interface {
	// ID returns the step's unique identifier.
	ID() string

	// Name returns the human-readable step name.
	Name() string

	// Validate checks that the state carries what the step needs.
	Validate(state *State) error

	// Run executes the step against the shared state.
	Run(ctx context.Context, state *State) error
}

// Runner executes steps strictly in order.
type Runner struct {
	steps  []Step
	logger *slog.Logger
}

// NewRunner creates a runner over the given steps.
func NewRunner(logger *slog.Logger, steps ...Step) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{steps: steps, logger: logger}
}

// Run executes every step. The first failure stops the run; the manifest is
// saved either way so a failed run still documents what it produced.
func (r *Runner) Run(ctx context.Context, state *State) error {
	logger := state.Logger
	if logger == nil {
		logger = r.logger
	}

	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			state.Manifest.Fail(err)
			r.saveManifest(state)
			return fmt.Errorf("pipeline canceled before step %s: %w", step.ID(), err)
		}

		exec := StepExecution{StepID: step.ID(), Name: step.Name(), Start: time.Now()}
		logger.InfoContext(ctx, "step starting", slog.String("step", step.ID()))

		err := step.Validate(state)
		if err == nil {
			err = step.Run(ctx, state)
		}

		exec.End = time.Now()
		exec.Duration = exec.End.Sub(exec.Start).String()
		if err != nil {
			exec.Status = StatusFailed
			exec.Error = err.Error()
			state.Manifest.RecordStep(exec)
			state.Manifest.Fail(err)
			r.saveManifest(state)
			logger.ErrorContext(ctx, "step failed",
				slog.String("step", step.ID()),
				slog.Any("error", err))
			return fmt.Errorf("step %s: %w", step.ID(), err)
		}

		exec.Status = StatusCompleted
		state.Manifest.RecordStep(exec)
		logger.InfoContext(ctx, "step completed",
			slog.String("step", step.ID()),
			slog.String("duration", exec.Duration))
	}

	state.Manifest.Complete()
	r.saveManifest(state)
	return nil
}

func (r *Runner) saveManifest(state *State) {
	if state.Paths == nil {
		return
	}
	if err := state.Manifest.Save(state.Paths.ManifestPath()); err != nil {
		r.logger.Warn("saving run manifest failed", slog.Any("error", err))
	}
}
