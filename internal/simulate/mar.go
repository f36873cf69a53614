package simulate

import (
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"msimpute/internal/dataset"
)

// marEpsilon keeps the row weight finite for rows with a zero mean.
const marEpsilon = 1e-6

// MAR raises the matrix's total missingness toward round(nObserved * p) by
// weighted sampling over present cells, where each cell carries its row's
// weight 1/(rowMean + eps). Low-mean rows are therefore preferentially
// targeted, mimicking non-detection of low-abundance proteins, while the
// selection stays random conditional on row mean.
//
// Rows with a non-finite or negative weight (all cells missing, or a mean at
// or below -eps) get weight zero and are never targeted. When fewer positive-
// weight candidates exist than the target count the target is clamped with a
// warning; existing missing cells are never restored to hit a lower target.
//
// Sampling is without replacement via sampleuv.Weighted: each draw removes
// the chosen cell and the remaining weights are renormalized, so selection
// probability is proportional to weight within the remaining pool at every
// draw.
func MAR(m *dataset.Matrix, p float64, rng *rand.Rand, logger *slog.Logger) (*dataset.Matrix, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out := m.Clone()
	observed := m.PresentCount()
	target := int(math.Round(float64(observed)*p)) - m.MissingCount()
	if target <= 0 {
		if p > 0 {
			logger.Warn("MAR target already met, returning matrix unchanged",
				slog.Int("observed_cells", observed),
				slog.Int("missing_cells", m.MissingCount()),
				slog.Float64("proportion", p))
		}
		return out, nil
	}

	rowWeight := make([]float64, len(m.Rows))
	for i := range m.Rows {
		vals := m.RowPresent(i)
		if len(vals) == 0 {
			continue
		}
		w := 1 / (stat.Mean(vals, nil) + marEpsilon)
		if math.IsInf(w, 0) || math.IsNaN(w) || w < 0 {
			w = 0
		}
		rowWeight[i] = w
	}

	var candidates []position
	var weights []float64
	for _, cell := range presentPositions(m) {
		if w := rowWeight[cell.row]; w > 0 {
			candidates = append(candidates, cell)
			weights = append(weights, w)
		}
	}

	if len(candidates) < target {
		logger.Warn("fewer valid MAR candidates than target, clamping",
			slog.Int("target", target),
			slog.Int("candidates", len(candidates)))
		target = len(candidates)
	}
	if target == 0 {
		return out, nil
	}
	if len(weights) != len(candidates) {
		return nil, fmt.Errorf("%w: %d weights for %d candidates", ErrInvariant, len(weights), len(candidates))
	}

	sampler := sampleuv.NewWeighted(weights, rng)
	for drawn := 0; drawn < target; drawn++ {
		idx, ok := sampler.Take()
		if !ok {
			return nil, fmt.Errorf("%w: weighted pool exhausted after %d of %d draws", ErrInvariant, drawn, target)
		}
		out.SetMissing(candidates[idx].row, candidates[idx].col)
	}

	logger.Info("MAR missingness applied",
		slog.Float64("proportion", p),
		slog.Int("cells_removed", target),
		slog.Int("candidates", len(candidates)))
	return out, nil
}
