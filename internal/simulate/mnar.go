package simulate

import (
	"log/slog"
	"sort"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat"

	"msimpute/internal/dataset"
)

// MNAR marks every present cell strictly below the p-quantile of present
// values as missing, modeling non-detection of low-abundance measurements.
// The quantile uses linear interpolation between order statistics. The
// realized missing fraction is set by the value distribution, not by p, and
// that is intentional: the quantile defines a value cutoff, not a count
// target. An undefined threshold (no present cells) warns and returns the
// input unchanged.
//
// The rng parameter keeps the mechanism signatures uniform; the value cutoff
// itself draws nothing.
func MNAR(m *dataset.Matrix, p float64, rng *rand.Rand, logger *slog.Logger) (*dataset.Matrix, error) {
	if logger == nil {
		logger = slog.Default()
	}
	_ = rng

	out := m.Clone()
	vals := m.PresentValues()
	if len(vals) == 0 {
		logger.Warn("MNAR threshold undefined, returning matrix unchanged",
			slog.Float64("proportion", p))
		return out, nil
	}

	sort.Float64s(vals)
	threshold := stat.Quantile(p, stat.LinInterp, vals, nil)

	removed := 0
	for i := range m.Rows {
		for j := range m.Cols {
			if !m.IsMissing(i, j) && m.At(i, j) < threshold {
				out.SetMissing(i, j)
				removed++
			}
		}
	}

	logger.Info("MNAR missingness applied",
		slog.Float64("proportion", p),
		slog.Float64("threshold", threshold),
		slog.Int("cells_removed", removed))
	return out, nil
}
