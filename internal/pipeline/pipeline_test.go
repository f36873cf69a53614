package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msimpute/internal/config"
	"msimpute/internal/dataset"
)

type recordingStep struct {
	id    string
	log   *[]string
	fail  bool
	valid bool
}

func (s recordingStep) ID() string   { return s.id }
func (s recordingStep) Name() string { return s.id }

func (s recordingStep) Validate(state *State) error {
	if s.valid {
		return nil
	}
	return fmt.Errorf("step %s cannot run", s.id)
}

func (s recordingStep) Run(ctx context.Context, state *State) error {
	*s.log = append(*s.log, s.id)
	if s.fail {
		return errors.New("boom")
	}
	return nil
}

func testConfig(t *testing.T, rawPath string) *config.Config {
	t.Helper()
	t.Setenv("MSIMPUTE_INPUT_RAW_PATH", rawPath)
	t.Setenv("MSIMPUTE_OUTPUT_DIR", filepath.Join(t.TempDir(), "out"))
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestRunnerExecutesStepsInOrder(t *testing.T) {
	cfg := testConfig(t, "unused.csv")
	state := NewState(cfg, nil)

	var log []string
	r := NewRunner(nil,
		recordingStep{id: "a", log: &log, valid: true},
		recordingStep{id: "b", log: &log, valid: true},
	)
	require.NoError(t, r.Run(context.Background(), state))

	assert.Equal(t, []string{"a", "b"}, log)
	assert.Equal(t, StatusCompleted, state.Manifest.Status)
	require.Len(t, state.Manifest.Steps, 2)
	assert.Equal(t, "a", state.Manifest.Steps[0].StepID)
	assert.Equal(t, StatusCompleted, state.Manifest.Steps[0].Status)

	// manifest persisted
	_, err := os.Stat(state.Paths.ManifestPath())
	assert.NoError(t, err)
}

func TestRunnerStopsOnFailure(t *testing.T) {
	cfg := testConfig(t, "unused.csv")
	state := NewState(cfg, nil)

	var log []string
	r := NewRunner(nil,
		recordingStep{id: "a", log: &log, valid: true, fail: true},
		recordingStep{id: "b", log: &log, valid: true},
	)
	err := r.Run(context.Background(), state)
	require.Error(t, err)

	assert.Equal(t, []string{"a"}, log)
	assert.Equal(t, StatusFailed, state.Manifest.Status)
	assert.NotEmpty(t, state.Manifest.Error)
}

func TestRunnerFailsValidationBeforeRun(t *testing.T) {
	cfg := testConfig(t, "unused.csv")
	state := NewState(cfg, nil)

	var log []string
	r := NewRunner(nil, recordingStep{id: "a", log: &log, valid: false})
	err := r.Run(context.Background(), state)
	require.Error(t, err)
	assert.Empty(t, log, "a step failing validation must not run")
}

func TestNewStateAssignsUniqueRunIDs(t *testing.T) {
	cfg := testConfig(t, "unused.csv")
	a := NewState(cfg, nil)
	b := NewState(cfg, nil)
	assert.NotEmpty(t, a.RunID)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestDeriveSeedIsStableAndPairSpecific(t *testing.T) {
	a := deriveSeed(42, "MCAR", 0.1)
	assert.Equal(t, a, deriveSeed(42, "MCAR", 0.1))
	assert.NotEqual(t, a, deriveSeed(42, "MCAR", 0.2))
	assert.NotEqual(t, a, deriveSeed(42, "MAR", 0.1))
	assert.NotEqual(t, a, deriveSeed(43, "MCAR", 0.1))
}

func writeRawCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "proteins.csv")
	content := "Protein IDs,Reverse,Potential contaminant,Intensity S1,Intensity S2,Intensity S3\n"
	for i := 1; i <= 30; i++ {
		content += fmt.Sprintf("P%d,,,%d,%d,%d\n", i, 100*i, 110*i, 90*i)
	}
	content += "CON1,,+,500,500,500\n"
	content += "REV1,+,,500,500,500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFullPipelineEndToEnd(t *testing.T) {
	cfg := testConfig(t, writeRawCSV(t))
	cfg.Imputation.Strategies = []string{"mean", "median", "knn"}
	cfg.Imputation.KNeighbors = 3
	state := NewState(cfg, nil)

	r := NewRunner(nil, AllSteps()...)
	require.NoError(t, r.Run(context.Background(), state))

	// Filter removed the contaminant and the decoy row.
	require.NotNil(t, state.Filtered)
	assert.Len(t, state.Filtered.Rows, 30)

	// 3 mechanisms x 3 proportions.
	assert.Len(t, state.Variants, 9)

	// Complete matrix persisted and readable.
	complete, err := dataset.ReadMatrixCSV(state.Paths.CompleteMatrixPath())
	require.NoError(t, err)
	assert.Len(t, complete.Rows, 30)
	assert.Equal(t, 0, complete.MissingCount())

	// Train/test split of the complete matrix covers all rows.
	train, err := dataset.ReadMatrixCSV(filepath.Join(state.Paths.DatasetsDir, config.TrainMatrixFile))
	require.NoError(t, err)
	test, err := dataset.ReadMatrixCSV(filepath.Join(state.Paths.DatasetsDir, config.TestMatrixFile))
	require.NoError(t, err)
	assert.Equal(t, 30, len(train.Rows)+len(test.Rows))

	// Every pair produced a gap-free imputed matrix.
	require.NotNil(t, state.SweepResults)
	assert.Len(t, state.SweepResults.Pairs, 9*3)
	assert.Equal(t, 0, state.SweepResults.Failed())
	for _, pair := range state.SweepResults.Pairs {
		back, err := dataset.ReadMatrixCSV(pair.ImputedPath)
		require.NoError(t, err)
		assert.Equal(t, 0, back.MissingCount())
	}

	// Reports and manifest exist.
	_, err = os.Stat(filepath.Join(state.Paths.ReportsDir, "missing_counts.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(state.Paths.ReportsDir, config.QCReportFile))
	assert.NoError(t, err)
	_, err = os.Stat(state.Paths.ManifestPath())
	assert.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Manifest.Status)
}

func TestSimulationIsReproducibleAcrossRuns(t *testing.T) {
	raw := writeRawCSV(t)

	run := func() []string {
		cfg := testConfig(t, raw)
		state := NewState(cfg, nil)
		r := NewRunner(nil, SimulationSteps()...)
		require.NoError(t, r.Run(context.Background(), state))

		var shapes []string
		for _, v := range state.Variants {
			shapes = append(shapes, fmt.Sprintf("%s:%d", v.Name, v.Matrix.MissingCount()))
		}
		return shapes
	}

	assert.Equal(t, run(), run())
}
