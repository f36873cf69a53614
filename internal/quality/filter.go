// Package quality removes contaminant, reverse-decoy, and high-missingness
// features from an intensity matrix and produces per-sample quality
// statistics.
package quality

import (
	"errors"
	"fmt"
	"log/slog"

	"msimpute/internal/dataset"
)

// ErrAnnotationMissing is returned when marker filtering is requested but the
// annotation column does not exist in the input. This is a fatal
// configuration error: silently skipping the filter would let decoy rows
// leak into every downstream dataset.
var ErrAnnotationMissing = errors.New("annotation column missing")

// FilterOptions configures the quality filter.
type FilterOptions struct {
	// ContaminantColumn names the annotation column flagging contaminant
	// rows. Empty disables contaminant filtering.
	ContaminantColumn string
	// ReverseColumn names the annotation column flagging reverse-decoy
	// rows. Empty disables decoy filtering.
	ReverseColumn string
	// Marker is the value marking a flagged row, typically "+".
	Marker string
	// MaxMissingFraction drops rows whose fraction of absent cells exceeds
	// it.
	MaxMissingFraction float64
}

// FilterResult counts what the filter removed.
type FilterResult struct {
	Contaminants int
	Decoys       int
	HighMissing  int
	Kept         int
}

// Filter removes flagged and high-missingness rows. The returned matrix and
// annotations contain only the surviving rows, in input order.
func Filter(m *dataset.Matrix, ann dataset.Annotations, opts FilterOptions, logger *slog.Logger) (*dataset.Matrix, dataset.Annotations, FilterResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	contaminant, err := markerColumn(ann, opts.ContaminantColumn, len(m.Rows))
	if err != nil {
		return nil, dataset.Annotations{}, FilterResult{}, fmt.Errorf("contaminant filter: %w", err)
	}
	reverse, err := markerColumn(ann, opts.ReverseColumn, len(m.Rows))
	if err != nil {
		return nil, dataset.Annotations{}, FilterResult{}, fmt.Errorf("reverse-decoy filter: %w", err)
	}

	var result FilterResult
	var keep []int
	for i := range m.Rows {
		switch {
		case contaminant != nil && contaminant[i] == opts.Marker:
			result.Contaminants++
		case reverse != nil && reverse[i] == opts.Marker:
			result.Decoys++
		case m.RowMissingFraction(i) > opts.MaxMissingFraction:
			result.HighMissing++
		default:
			keep = append(keep, i)
		}
	}
	result.Kept = len(keep)

	filtered, err := m.SelectRows(keep)
	if err != nil {
		return nil, dataset.Annotations{}, FilterResult{}, fmt.Errorf("select surviving rows: %w", err)
	}

	logger.Info("quality filter applied",
		slog.Int("input_rows", len(m.Rows)),
		slog.Int("contaminants_removed", result.Contaminants),
		slog.Int("decoys_removed", result.Decoys),
		slog.Int("high_missing_removed", result.HighMissing),
		slog.Int("rows_kept", result.Kept))

	return filtered, ann.SelectRows(keep), result, nil
}

func markerColumn(ann dataset.Annotations, name string, rows int) ([]string, error) {
	if name == "" {
		return nil, nil
	}
	vals, ok := ann.Values(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAnnotationMissing, name)
	}
	if len(vals) != rows {
		return nil, fmt.Errorf("annotation column %q has %d values for %d rows", name, len(vals), rows)
	}
	return vals, nil
}
