package simulate

import (
	"log/slog"
	"math"

	"golang.org/x/exp/rand"

	"msimpute/internal/dataset"
)

// MCAR marks round(nPresent * p) uniformly chosen present cells as missing.
// Every present cell has the same selection probability regardless of its
// row, column, or value. A target that rounds to zero with p > 0 warns and
// returns the input unchanged.
func MCAR(m *dataset.Matrix, p float64, rng *rand.Rand, logger *slog.Logger) (*dataset.Matrix, error) {
	if logger == nil {
		logger = slog.Default()
	}

	out := m.Clone()
	present := presentPositions(m)
	target := int(math.Round(float64(len(present)) * p))
	if target == 0 {
		if p > 0 {
			logger.Warn("MCAR target rounds to zero, returning matrix unchanged",
				slog.Int("present_cells", len(present)),
				slog.Float64("proportion", p))
		}
		return out, nil
	}

	// Uniform sampling without replacement: a permutation prefix.
	perm := rng.Perm(len(present))
	for _, k := range perm[:target] {
		out.SetMissing(present[k].row, present[k].col)
	}

	logger.Info("MCAR missingness applied",
		slog.Float64("proportion", p),
		slog.Int("cells_removed", target))
	return out, nil
}
