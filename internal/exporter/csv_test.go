package exporter

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"msimpute/internal/dataset"
	"msimpute/internal/simulate"
)

func TestArtifactNames(t *testing.T) {
	assert.Equal(t, "missing_MCAR_10.csv", VariantFileName(simulate.MechanismMCAR, 0.1))
	assert.Equal(t, "missing_MNAR_30.csv", VariantFileName(simulate.MechanismMNAR, 0.3))
	assert.Equal(t, "missing_MAR_20_knn_imputed.csv", ImputedFileName("missing_MAR_20.csv", "knn"))
	assert.Equal(t, "missing_MAR_20_knn_missingmap.png", HeatmapFileName("missing_MAR_20", "knn"))
}

func TestWriteMatrixRoundTrip(t *testing.T) {
	m := dataset.NewMatrix([]string{"P1", "P2"}, []string{"S1", "S2"})
	m.Set(0, 0, 1.0/3.0)
	m.Set(0, 1, -2.5)
	m.Set(1, 1, 1e-9)
	// (1,0) stays missing

	w := NewCSVWriter(t.TempDir(), nil)
	path, err := w.WriteMatrix("complete_normalized.csv", m)
	require.NoError(t, err)

	back, err := dataset.ReadMatrixCSV(path)
	require.NoError(t, err)

	assert.Equal(t, m.Rows, back.Rows)
	assert.Equal(t, m.Cols, back.Cols)
	for i := range m.Rows {
		for j := range m.Cols {
			if m.IsMissing(i, j) {
				assert.True(t, back.IsMissing(i, j))
			} else {
				assert.Equal(t, m.At(i, j), back.At(i, j),
					"cell (%d,%d) must survive the round trip exactly", i, j)
			}
		}
	}
}

// failingWriter rejects every write.
type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteCSVSurfacesFlushError(t *testing.T) {
	// A small record stays in the csv.Writer's buffer until the final
	// flush, so the write error only appears there.
	err := writeCSV(failingWriter{err: errors.New("disk full")}, "counts.csv",
		[]string{"dataset", "missing"},
		[][]string{{"missing_MCAR_10", "42"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush counts.csv")
	assert.Contains(t, err.Error(), "disk full")
}

func TestWriteCSVNamesFailingRecord(t *testing.T) {
	// A field larger than the internal buffer forces the error to surface
	// while the record itself is being written.
	wide := strings.Repeat("x", 1<<13)
	err := writeCSV(failingWriter{err: errors.New("broken pipe")}, "wide.csv",
		nil, [][]string{{wide}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write record 0 to wide.csv")
}

func TestWriteRecordsCreatesNestedDirectories(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	path, err := w.WriteRecords(filepath.Join("reports", "counts.csv"),
		[]string{"dataset", "missing"},
		[][]string{{"missing_MCAR_10", "42"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "dataset,missing", lines[0])
	assert.Equal(t, "missing_MCAR_10,42", lines[1])
}
