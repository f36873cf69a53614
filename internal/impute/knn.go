package impute

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"msimpute/internal/dataset"
)

// knnEpsilon keeps similarity weights finite for zero-distance neighbors.
const knnEpsilon = 1e-9

// KNN fills each absent cell from the K most similar rows that observe the
// same column. Similarity is the Euclidean distance over the features both
// rows observe, scaled by the overlap size so rows with few shared features
// are not artificially close. Neighbor values are averaged with weight
// 1/(distance + eps). Cells with no usable neighbor fall back to the column
// mean.
type KNN struct {
	K int
}

func (k KNN) Name() string { return "knn" }

func (k KNN) Impute(ctx context.Context, m *dataset.Matrix) (*dataset.Matrix, error) {
	if k.K <= 0 {
		return nil, fmt.Errorf("knn imputation: k must be positive, got %d", k.K)
	}
	if len(m.PresentValues()) == 0 {
		return nil, fmt.Errorf("knn imputation: matrix has no present values")
	}

	// Column means as the fallback for cells no neighbor can explain.
	colMean := make([]float64, len(m.Cols))
	global := stat.Mean(m.PresentValues(), nil)
	for j := range m.Cols {
		if vals := m.ColumnPresent(j); len(vals) > 0 {
			colMean[j] = stat.Mean(vals, nil)
		} else {
			colMean[j] = global
		}
	}

	out := m.Clone()
	for i := range m.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range m.Cols {
			if !m.IsMissing(i, j) {
				continue
			}
			if v, ok := k.neighborAverage(m, i, j); ok {
				out.Set(i, j, v)
			} else {
				out.Set(i, j, colMean[j])
			}
		}
	}

	if err := verifyComplete(k.Name(), out); err != nil {
		return nil, err
	}
	return out, nil
}

type neighbor struct {
	dist  float64
	value float64
}

// neighborAverage returns the similarity-weighted average of column col over
// the k nearest rows that observe it, or ok=false when no row qualifies.
func (k KNN) neighborAverage(m *dataset.Matrix, row, col int) (float64, bool) {
	var neighbors []neighbor
	for other := range m.Rows {
		if other == row || m.IsMissing(other, col) {
			continue
		}
		dist, ok := rowDistance(m, row, other)
		if !ok {
			continue
		}
		neighbors = append(neighbors, neighbor{dist: dist, value: m.At(other, col)})
	}
	if len(neighbors) == 0 {
		return 0, false
	}

	sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })
	if len(neighbors) > k.K {
		neighbors = neighbors[:k.K]
	}

	var weighted, total float64
	for _, n := range neighbors {
		w := 1 / (n.dist + knnEpsilon)
		weighted += w * n.value
		total += w
	}
	return weighted / total, true
}

// rowDistance is the mean squared difference over co-present features,
// square-rooted. ok=false when the rows share no observed feature.
func rowDistance(m *dataset.Matrix, a, b int) (float64, bool) {
	var sum float64
	shared := 0
	for j := range m.Cols {
		if m.IsMissing(a, j) || m.IsMissing(b, j) {
			continue
		}
		d := m.At(a, j) - m.At(b, j)
		sum += d * d
		shared++
	}
	if shared == 0 {
		return 0, false
	}
	return math.Sqrt(sum / float64(shared)), true
}
