package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"msimpute/internal/dataset"
	"msimpute/internal/simulate"
)

// CSVWriter writes pipeline artifacts beneath a single output directory.
type CSVWriter struct {
	outDir string
	logger *slog.Logger
}

// NewCSVWriter creates a writer rooted at outDir.
func NewCSVWriter(outDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{outDir: outDir, logger: logger}
}

// OutDir returns the writer's root output directory.
func (w *CSVWriter) OutDir() string { return w.outDir }

// VariantFileName names a missingness variant CSV, e.g. missing_MCAR_10.csv
// for MCAR at proportion 0.1.
func VariantFileName(mech simulate.Mechanism, proportion float64) string {
	return fmt.Sprintf("missing_%s_%d.csv", mech, int(proportion*100+0.5))
}

// ImputedFileName names an imputed result CSV for a variant dataset and a
// strategy, e.g. missing_MCAR_10_knn_imputed.csv.
func ImputedFileName(variant, strategy string) string {
	return fmt.Sprintf("%s_%s_imputed.csv", strings.TrimSuffix(variant, ".csv"), strategy)
}

// HeatmapFileName names the missingness-position image for a variant dataset
// and a strategy.
func HeatmapFileName(variant, strategy string) string {
	return fmt.Sprintf("%s_%s_missingmap.png", strings.TrimSuffix(variant, ".csv"), strategy)
}

// WriteMatrix writes a matrix as CSV: header row of sample identifiers after
// an "id" cell, one record per feature, missing cells left empty. It returns
// the full path of the written file.
func (w *CSVWriter) WriteMatrix(name string, m *dataset.Matrix) (string, error) {
	headers := append([]string{"id"}, m.Cols...)
	records := make([][]string, 0, len(m.Rows))
	for i, id := range m.Rows {
		rec := make([]string, 0, len(m.Cols)+1)
		rec = append(rec, id)
		for j := range m.Cols {
			if m.IsMissing(i, j) {
				rec = append(rec, "")
			} else {
				rec = append(rec, strconv.FormatFloat(m.At(i, j), 'g', -1, 64))
			}
		}
		records = append(records, rec)
	}
	return w.WriteRecords(name, headers, records)
}

// WriteRecords writes a generic CSV file beneath the output directory and
// returns its full path.
func (w *CSVWriter) WriteRecords(name string, headers []string, records [][]string) (string, error) {
	fullPath := filepath.Join(w.outDir, name)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}
	defer file.Close()

	if err := writeCSV(file, fullPath, headers, records); err != nil {
		return "", err
	}

	w.logger.Info("wrote CSV artifact",
		slog.String("path", fullPath),
		slog.Int("records", len(records)))
	return fullPath, nil
}

// writeCSV streams headers and records through a csv.Writer. The flush runs
// before the error check so failures that only surface when the buffer hits
// the underlying writer are not dropped.
func writeCSV(dst io.Writer, path string, headers []string, records [][]string) error {
	writer := csv.NewWriter(dst)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return fmt.Errorf("write headers to %s: %w", path, err)
		}
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write record %d to %s: %w", i, path, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
