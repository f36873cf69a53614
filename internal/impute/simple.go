package impute

import (
	"context"
	"fmt"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"msimpute/internal/dataset"
)

// Mean fills each absent cell with its column's mean over present values.
// A column with no present values falls back to the matrix-wide mean.
type Mean struct{}

func (Mean) Name() string { return "mean" }

func (Mean) Impute(ctx context.Context, m *dataset.Matrix) (*dataset.Matrix, error) {
	return fillColumns(ctx, "mean", m, func(vals []float64) (float64, error) {
		return stat.Mean(vals, nil), nil
	})
}

// Median fills each absent cell with its column's median over present
// values. A column with no present values falls back to the matrix-wide
// median.
type Median struct{}

func (Median) Name() string { return "median" }

func (Median) Impute(ctx context.Context, m *dataset.Matrix) (*dataset.Matrix, error) {
	return fillColumns(ctx, "median", m, func(vals []float64) (float64, error) {
		return mstats.Median(vals)
	})
}

// fillColumns applies a column statistic to every absent cell. The statistic
// sees only values that were present in the input, never previously filled
// cells.
func fillColumns(ctx context.Context, name string, m *dataset.Matrix, statFn func([]float64) (float64, error)) (*dataset.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	all := m.PresentValues()
	if len(all) == 0 {
		return nil, fmt.Errorf("%s imputation: matrix has no present values", name)
	}
	global, err := statFn(all)
	if err != nil {
		return nil, fmt.Errorf("%s imputation: global statistic: %w", name, err)
	}

	out := m.Clone()
	for j := range m.Cols {
		fill := global
		if vals := m.ColumnPresent(j); len(vals) > 0 {
			fill, err = statFn(vals)
			if err != nil {
				return nil, fmt.Errorf("%s imputation: column %q: %w", name, m.Cols[j], err)
			}
		}
		for i := range m.Rows {
			if out.IsMissing(i, j) {
				out.Set(i, j, fill)
			}
		}
	}

	if err := verifyComplete(name, out); err != nil {
		return nil, err
	}
	return out, nil
}
