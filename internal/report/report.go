// Package report emits the per-dataset missing-value count table and the
// missingness-position heatmaps rendered before each imputation.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"msimpute/internal/dataset"
	"msimpute/internal/exporter"
)

// MissingCountsFileName is the missing-value count log written per run.
const MissingCountsFileName = "missing_counts.csv"

// MissingCount records the missingness of one dataset entering the sweep.
type MissingCount struct {
	Dataset  string
	Missing  int
	Present  int
	Fraction float64
}

// Count measures a dataset.
func Count(name string, m *dataset.Matrix) MissingCount {
	return MissingCount{
		Dataset:  name,
		Missing:  m.MissingCount(),
		Present:  m.PresentCount(),
		Fraction: m.MissingFraction(),
	}
}

// WriteCounts writes the missing-value count log and returns its path.
func WriteCounts(w *exporter.CSVWriter, counts []MissingCount) (string, error) {
	records := make([][]string, 0, len(counts))
	for _, c := range counts {
		records = append(records, []string{
			c.Dataset,
			strconv.Itoa(c.Missing),
			strconv.Itoa(c.Present),
			strconv.FormatFloat(c.Fraction, 'g', 6, 64),
		})
	}
	path, err := w.WriteRecords(MissingCountsFileName,
		[]string{"dataset", "missing", "present", "fraction"}, records)
	if err != nil {
		return "", fmt.Errorf("write missing counts: %w", err)
	}
	return path, nil
}

// LogCounts mirrors the count table into the structured log.
func LogCounts(counts []MissingCount, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, c := range counts {
		logger.Info("dataset missingness",
			slog.String("dataset", c.Dataset),
			slog.Int("missing", c.Missing),
			slog.Int("present", c.Present),
			slog.Float64("fraction", c.Fraction))
	}
}

// ensureDir creates the parent directory of an artifact path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	return nil
}
