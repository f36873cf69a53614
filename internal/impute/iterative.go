package impute

import (
	"context"
	"fmt"
	"math"

	"github.com/YuminosukeSato/GoML/linear"
	"gonum.org/v1/gonum/mat"

	"msimpute/internal/dataset"
)

// Iterative is a MICE-style imputer: absent cells are seeded with their
// column mean, then each column with missing values is repeatedly regressed
// on the remaining columns and its filled cells are replaced by the model's
// predictions, until the largest change in a sweep drops below Tolerance or
// MaxIterations is reached. Rows are the regression observations and sample
// columns the variables, so the strategy captures between-sample structure
// that column statistics ignore.
type Iterative struct {
	MaxIterations int
	Tolerance     float64
}

func (it Iterative) Name() string { return "iterative" }

func (it Iterative) Impute(ctx context.Context, m *dataset.Matrix) (*dataset.Matrix, error) {
	if it.MaxIterations <= 0 {
		return nil, fmt.Errorf("iterative imputation: max iterations must be positive, got %d", it.MaxIterations)
	}
	if it.Tolerance < 0 {
		return nil, fmt.Errorf("iterative imputation: tolerance must be non-negative, got %v", it.Tolerance)
	}

	// Column-mean seed fill; this is also the final answer when there is
	// only one column and no regression is possible.
	work, err := Mean{}.Impute(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("iterative imputation: seed fill: %w", err)
	}
	if len(m.Cols) < 2 {
		return work, nil
	}

	// Columns that actually need refinement, with their missing row sets,
	// in ascending column order so sweeps are deterministic.
	type target struct {
		col  int
		rows []int
	}
	var targets []target
	for j := range m.Cols {
		var rows []int
		for i := range m.Rows {
			if m.IsMissing(i, j) {
				rows = append(rows, i)
			}
		}
		if len(rows) > 0 {
			targets = append(targets, target{col: j, rows: rows})
		}
	}
	if len(targets) == 0 {
		return work, nil
	}

	for iter := 0; iter < it.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		maxChange := 0.0
		for _, tgt := range targets {
			change, err := it.refineColumn(m, work, tgt.col, tgt.rows)
			if err != nil {
				// A singular or degenerate fit keeps the current fill
				// for this column and the sweep continues.
				continue
			}
			maxChange = math.Max(maxChange, change)
		}
		if maxChange < it.Tolerance {
			break
		}
	}

	if err := verifyComplete(it.Name(), work); err != nil {
		return nil, err
	}
	return work, nil
}

// refineColumn regresses column j on the other columns over the rows where j
// was observed, predicts the rows where it was missing, and returns the
// largest absolute change among the updated cells.
func (it Iterative) refineColumn(orig, work *dataset.Matrix, j int, missing []int) (float64, error) {
	var trainRows []int
	for i := range orig.Rows {
		if !orig.IsMissing(i, j) {
			trainRows = append(trainRows, i)
		}
	}
	if len(trainRows) < 2 {
		return 0, fmt.Errorf("column %q: %d observed rows is too few to fit", orig.Cols[j], len(trainRows))
	}

	predictors := len(work.Cols) - 1
	x := mat.NewDense(len(trainRows), predictors, nil)
	y := mat.NewDense(len(trainRows), 1, nil)
	for r, i := range trainRows {
		x.SetRow(r, predictorRow(work, i, j))
		y.Set(r, 0, work.At(i, j))
	}

	model := linear.NewLinearRegression()
	if err := model.Fit(x, y); err != nil {
		return 0, fmt.Errorf("fit column %q: %w", orig.Cols[j], err)
	}

	query := mat.NewDense(len(missing), predictors, nil)
	for r, i := range missing {
		query.SetRow(r, predictorRow(work, i, j))
	}
	pred, err := model.Predict(query)
	if err != nil {
		return 0, fmt.Errorf("predict column %q: %w", orig.Cols[j], err)
	}

	maxChange := 0.0
	for r, i := range missing {
		v := pred.At(r, 0)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		maxChange = math.Max(maxChange, math.Abs(v-work.At(i, j)))
		work.Set(i, j, v)
	}
	return maxChange, nil
}

// predictorRow returns row i of the working matrix with column j dropped.
func predictorRow(work *dataset.Matrix, i, j int) []float64 {
	row := make([]float64, 0, len(work.Cols)-1)
	for c := range work.Cols {
		if c != j {
			row = append(row, work.At(i, c))
		}
	}
	return row
}
