// Package impute fills absent cells of an intensity matrix. The strategy set
// is a closed enumeration: mean and median fill column-wise, knn fills from
// the most similar rows, and iterative refines a column-statistic seed fill
// with per-column linear regressions. Adding a strategy means adding a type
// here and a case to ForNames, checked at compile time rather than through a
// runtime lookup table.
package impute

import (
	"context"
	"errors"
	"fmt"

	"msimpute/internal/dataset"
)

// Strategy fills every absent cell of a matrix. Implementations never mutate
// their input and must preserve row and column identifiers.
type Strategy interface {
	Name() string
	Impute(ctx context.Context, m *dataset.Matrix) (*dataset.Matrix, error)
}

// ErrUnknownStrategy is returned by ForNames for unrecognized names.
var ErrUnknownStrategy = errors.New("unknown imputation strategy")

// ErrIncomplete reports that a strategy left absent cells behind.
var ErrIncomplete = errors.New("imputed matrix still has missing cells")

// Options carries the tunables shared by the strategy constructors.
type Options struct {
	// K is the neighbor count for the knn strategy.
	K int
	// MaxIterations bounds the iterative strategy's refinement sweeps.
	MaxIterations int
	// Tolerance stops the iterative strategy once the largest per-sweep
	// change of any filled cell drops below it.
	Tolerance float64
}

// ForNames builds the configured strategies in the given order.
func ForNames(names []string, opts Options) ([]Strategy, error) {
	strategies := make([]Strategy, 0, len(names))
	for _, name := range names {
		switch name {
		case "mean":
			strategies = append(strategies, Mean{})
		case "median":
			strategies = append(strategies, Median{})
		case "knn":
			strategies = append(strategies, KNN{K: opts.K})
		case "iterative":
			strategies = append(strategies, Iterative{
				MaxIterations: opts.MaxIterations,
				Tolerance:     opts.Tolerance,
			})
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
	}
	return strategies, nil
}

// verifyComplete enforces the strategy contract that no cell stays absent.
func verifyComplete(name string, m *dataset.Matrix) error {
	if missing := m.MissingCount(); missing > 0 {
		return fmt.Errorf("%w: strategy %s left %d cells", ErrIncomplete, name, missing)
	}
	return nil
}
