package simulate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/exp/rand"

	"msimpute/internal/dataset"
)

// Mechanism names a missingness mechanism.
type Mechanism string

const (
	MechanismMCAR Mechanism = "MCAR"
	MechanismMAR  Mechanism = "MAR"
	MechanismMNAR Mechanism = "MNAR"
)

// ErrInvariant marks an internal consistency violation: the computed weights
// and candidate positions went out of step. It indicates a bug, not a data
// condition, and must stop the run.
var ErrInvariant = errors.New("simulator invariant violated")

// ErrUnknownMechanism is returned by ParseMechanism for unrecognized names.
var ErrUnknownMechanism = errors.New("unknown missingness mechanism")

// ParseMechanism converts a configuration string to a Mechanism.
func ParseMechanism(s string) (Mechanism, error) {
	switch Mechanism(strings.ToUpper(strings.TrimSpace(s))) {
	case MechanismMCAR:
		return MechanismMCAR, nil
	case MechanismMAR:
		return MechanismMAR, nil
	case MechanismMNAR:
		return MechanismMNAR, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMechanism, s)
	}
}

// Apply dispatches to the named mechanism. p is the target proportion of
// additional missingness in [0, 1].
func Apply(m *dataset.Matrix, mech Mechanism, p float64, rng *rand.Rand, logger *slog.Logger) (*dataset.Matrix, error) {
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("proportion %v outside [0, 1]", p)
	}
	switch mech {
	case MechanismMCAR:
		return MCAR(m, p, rng, logger)
	case MechanismMAR:
		return MAR(m, p, rng, logger)
	case MechanismMNAR:
		return MNAR(m, p, rng, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMechanism, mech)
	}
}

// position addresses one cell of a matrix.
type position struct {
	row, col int
}

// presentPositions lists every present cell in row-major order.
func presentPositions(m *dataset.Matrix) []position {
	var cells []position
	for i := range m.Rows {
		for j := range m.Cols {
			if !m.IsMissing(i, j) {
				cells = append(cells, position{row: i, col: j})
			}
		}
	}
	return cells
}
