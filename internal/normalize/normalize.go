// Package normalize rescales sample columns to remove systematic offsets
// between runs. Median centering is the only method the pipeline needs:
// after log2 transformation a per-column median subtraction aligns the
// sample distributions without coupling columns to one another.
package normalize

import (
	"fmt"
	"log/slog"

	"github.com/montanaflynn/stats"

	"msimpute/internal/dataset"
)

// MedianCenter subtracts each column's median over present cells from every
// present cell in that column. Missing cells are untouched. The returned
// offsets hold the subtracted median per column; a fully missing column gets
// offset 0 and is left as is.
//
// The operation is idempotent: centering an already centered matrix changes
// nothing beyond floating-point noise.
func MedianCenter(m *dataset.Matrix, logger *slog.Logger) (*dataset.Matrix, []float64, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out := m.Clone()
	offsets := make([]float64, len(m.Cols))
	for j, col := range m.Cols {
		vals := m.ColumnPresent(j)
		if len(vals) == 0 {
			logger.Warn("column has no present cells, skipping normalization",
				slog.String("sample", col))
			continue
		}
		median, err := stats.Median(vals)
		if err != nil {
			return nil, nil, fmt.Errorf("median for sample %q: %w", col, err)
		}
		offsets[j] = median
		for i := range out.Rows {
			if !out.IsMissing(i, j) {
				out.Set(i, j, out.At(i, j)-median)
			}
		}
	}

	logger.Info("median centering applied", slog.Int("samples", len(m.Cols)))
	return out, offsets, nil
}
