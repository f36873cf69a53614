package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msimpute/internal/dataset"
	"msimpute/internal/exporter"
)

func TestCount(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1", "P2"}, []string{"S1", "S2"})
	m.Set(0, 0, 1)
	m.Set(1, 1, 2)

	c := Count("missing_MCAR_10", m)
	assert.Equal(t, "missing_MCAR_10", c.Dataset)
	assert.Equal(t, 2, c.Missing)
	assert.Equal(t, 2, c.Present)
	assert.InDelta(t, 0.5, c.Fraction, 1e-12)
}

func TestWriteCounts(t *testing.T) {
	dir := t.TempDir()
	w := exporter.NewCSVWriter(dir, nil)

	path, err := WriteCounts(w, []MissingCount{
		{Dataset: "missing_MCAR_10", Missing: 4, Present: 12, Fraction: 0.25},
		{Dataset: "missing_MAR_20", Missing: 8, Present: 8, Fraction: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, MissingCountsFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "dataset,missing,present,fraction", lines[0])
	assert.Contains(t, lines[1], "missing_MCAR_10,4,12,0.25")
}

func TestRenderMissingMapWritesPNG(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1", "P2", "P3"}, []string{"S1", "S2"})
	m.Set(0, 0, 1)
	m.Set(1, 1, 2)
	m.Set(2, 0, 3)

	path := filepath.Join(t.TempDir(), "maps", "variant_mean_missingmap.png")
	require.NoError(t, RenderMissingMap(m, "variant / mean", path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRenderMissingMapRejectsEmptyMatrix(t *testing.T) {
	m := dataset.NewMatrix(nil, []string{"S1"})
	err := RenderMissingMap(m, "empty", filepath.Join(t.TempDir(), "x.png"))
	assert.Error(t, err)
}

func TestMaskGrid(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1", "P2"}, []string{"S1"})
	m.Set(0, 0, 5)

	g := maskGrid{m: m}
	c, r := g.Dims()
	assert.Equal(t, 1, c)
	assert.Equal(t, 2, r)
	// Row 0 of the matrix renders at the top of the grid.
	assert.Equal(t, 0.0, g.Z(0, 1))
	assert.Equal(t, 1.0, g.Z(0, 0))
}
