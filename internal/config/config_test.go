package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MSIMPUTE_INPUT_RAW_PATH", "proteins.csv")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "proteins.csv", cfg.Input.RawPath)
	assert.Equal(t, "^Intensity ", cfg.Input.IntensityPattern)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, cfg.Simulation.Proportions)
	assert.Equal(t, []string{"MCAR", "MAR", "MNAR"}, cfg.Simulation.Mechanisms)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 5, cfg.Imputation.KNeighbors)
	assert.Equal(t, []string{"mean", "median", "knn"}, cfg.Imputation.Strategies)
	assert.Equal(t, 1, cfg.Imputation.Parallelism)
	assert.InDelta(t, 0.5, cfg.Filter.MaxMissingFraction, 1e-12)
	assert.InDelta(t, 0.3, cfg.Split.TestFraction, 1e-12)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input:
  raw_path: data/proteinGroups.txt
  intensity_pattern: "^LFQ intensity "
simulation:
  proportions: [0.25]
  mechanisms: [MNAR]
  seed: 7
imputation:
  strategies: [mean, knn, iterative]
  k_neighbors: 3
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/proteinGroups.txt", cfg.Input.RawPath)
	assert.Equal(t, "^LFQ intensity ", cfg.Input.IntensityPattern)
	assert.Equal(t, []float64{0.25}, cfg.Simulation.Proportions)
	assert.Equal(t, []string{"MNAR"}, cfg.Simulation.Mechanisms)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, 3, cfg.Imputation.KNeighbors)
	// untouched sections keep their defaults
	assert.Equal(t, "output", cfg.Output.Dir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing raw path",
			yaml: "output:\n  dir: out\n",
		},
		{
			name: "proportion above one",
			yaml: "input:\n  raw_path: a.csv\nsimulation:\n  proportions: [1.5]\n",
		},
		{
			name: "unknown mechanism",
			yaml: "input:\n  raw_path: a.csv\nsimulation:\n  mechanisms: [MAYBE]\n",
		},
		{
			name: "unknown strategy",
			yaml: "input:\n  raw_path: a.csv\nimputation:\n  strategies: [autoencoder]\n",
		},
		{
			name: "non-positive k",
			yaml: "input:\n  raw_path: a.csv\nimputation:\n  k_neighbors: 0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadFailsOnMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPathsLayout(t *testing.T) {
	dir := t.TempDir()
	p := NewPaths(filepath.Join(dir, "run1"))
	require.NoError(t, p.EnsureDirs())

	for _, d := range []string{p.OutDir, p.DatasetsDir, p.ImputedDir, p.ReportsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(p.DatasetsDir, CompleteMatrixFile), p.CompleteMatrixPath())
	assert.Equal(t, filepath.Join(p.OutDir, ManifestFile), p.ManifestPath())
}
