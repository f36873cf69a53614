package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoIntensityColumns is returned when the intensity column pattern matches
// nothing in the input header. This is a fatal configuration error.
var ErrNoIntensityColumns = errors.New("no intensity columns matched")

// Annotations holds the non-intensity feature columns (contaminant and
// reverse-decoy markers among them), aligned row-for-row with a Matrix.
type Annotations struct {
	Columns map[string][]string
}

// Has reports whether the annotation column exists.
func (a Annotations) Has(name string) bool {
	_, ok := a.Columns[name]
	return ok
}

// Values returns the per-row values of the annotation column.
func (a Annotations) Values(name string) ([]string, bool) {
	v, ok := a.Columns[name]
	return v, ok
}

// SelectRows returns annotations restricted to the listed row indices, in the
// given order. Indices must be valid for the matrix the annotations were
// built against.
func (a Annotations) SelectRows(indices []int) Annotations {
	sel := Annotations{Columns: make(map[string][]string, len(a.Columns))}
	for name, vals := range a.Columns {
		picked := make([]string, 0, len(indices))
		for _, i := range indices {
			picked = append(picked, vals[i])
		}
		sel.Columns[name] = picked
	}
	return sel
}

// LoadOptions controls how a raw intensity table is turned into a Matrix.
type LoadOptions struct {
	// IDColumn names the unique row identifier column. Empty means the
	// first column of the table.
	IDColumn string

	// IntensityPattern is a regular expression matched against header names
	// to select the sample intensity columns.
	IntensityPattern string

	// Sheet names the worksheet to read from an Excel input. Empty means
	// the first sheet.
	Sheet string
}

// Load reads a raw intensity table from path and builds the intensity matrix
// plus the feature annotations. CSV, TSV/TXT and XLSX inputs are supported,
// chosen by file extension.
func Load(path string, opts LoadOptions, logger *slog.Logger) (*Matrix, Annotations, error) {
	if logger == nil {
		logger = slog.Default()
	}
	headers, records, err := LoadTable(path, opts.Sheet)
	if err != nil {
		return nil, Annotations{}, fmt.Errorf("load table %s: %w", path, err)
	}
	logger.Info("loaded raw table",
		slog.String("path", path),
		slog.Int("columns", len(headers)),
		slog.Int("rows", len(records)))
	m, ann, err := BuildMatrix(headers, records, opts, logger)
	if err != nil {
		return nil, Annotations{}, fmt.Errorf("build matrix from %s: %w", path, err)
	}
	return m, ann, nil
}

// LoadTable reads a delimited text or Excel file and returns the header row
// and the data records.
func LoadTable(path, sheet string) ([]string, [][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xls":
		return loadExcel(path, sheet)
	case ".tsv", ".txt":
		return loadDelimited(path, '\t')
	default:
		return loadDelimited(path, ',')
	}
}

func loadDelimited(path string, delim rune) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read delimited data: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}
	return rows[0], rows[1:], nil
}

func loadExcel(path, sheet string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}
	// GetRows trims trailing empty cells per row; pad to header width so
	// column indices stay aligned.
	width := len(rows[0])
	for i := range rows {
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows[0], rows[1:], nil
}

// BuildMatrix splits a raw table into the intensity matrix and the annotation
// columns. Columns whose names match opts.IntensityPattern become matrix
// columns; every other column except the identifier becomes an annotation.
func BuildMatrix(headers []string, records [][]string, opts LoadOptions, logger *slog.Logger) (*Matrix, Annotations, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(headers) == 0 {
		return nil, Annotations{}, fmt.Errorf("table has no header row")
	}

	pattern, err := regexp.Compile(opts.IntensityPattern)
	if err != nil {
		return nil, Annotations{}, fmt.Errorf("compile intensity pattern %q: %w", opts.IntensityPattern, err)
	}

	idIdx := 0
	if opts.IDColumn != "" {
		idIdx = -1
		for i, h := range headers {
			if h == opts.IDColumn {
				idIdx = i
				break
			}
		}
		if idIdx < 0 {
			return nil, Annotations{}, fmt.Errorf("identifier column %q not found", opts.IDColumn)
		}
	}

	var intensityIdx []int
	var annotationIdx []int
	for i, h := range headers {
		if i == idIdx {
			continue
		}
		if opts.IntensityPattern != "" && pattern.MatchString(h) {
			intensityIdx = append(intensityIdx, i)
		} else {
			annotationIdx = append(annotationIdx, i)
		}
	}
	if len(intensityIdx) == 0 {
		return nil, Annotations{}, fmt.Errorf("%w: pattern %q against %d header columns", ErrNoIntensityColumns, opts.IntensityPattern, len(headers))
	}

	cols := make([]string, 0, len(intensityIdx))
	for _, i := range intensityIdx {
		cols = append(cols, headers[i])
	}

	rowIDs := make([]string, 0, len(records))
	for r, rec := range records {
		if idIdx < len(rec) && strings.TrimSpace(rec[idIdx]) != "" {
			rowIDs = append(rowIDs, strings.TrimSpace(rec[idIdx]))
		} else {
			rowIDs = append(rowIDs, fmt.Sprintf("feature_%d", r+1))
		}
	}

	m := NewMatrix(rowIDs, cols)
	unparsable := 0
	for r, rec := range records {
		for c, i := range intensityIdx {
			if i >= len(rec) {
				continue
			}
			v, ok := parseCell(rec[i])
			if !ok {
				unparsable++
				continue
			}
			m.Set(r, c, v)
		}
	}
	if unparsable > 0 {
		logger.Warn("unparsable intensity cells treated as missing",
			slog.Int("count", unparsable))
	}

	ann := Annotations{Columns: make(map[string][]string, len(annotationIdx))}
	for _, i := range annotationIdx {
		vals := make([]string, len(records))
		for r, rec := range records {
			if i < len(rec) {
				vals[r] = strings.TrimSpace(rec[i])
			}
		}
		ann.Columns[headers[i]] = vals
	}

	logger.Info("built intensity matrix",
		slog.Int("features", len(m.Rows)),
		slog.Int("samples", len(m.Cols)),
		slog.Int("annotation_columns", len(ann.Columns)))
	return m, ann, nil
}

// parseCell converts a raw table cell to a value. Empty cells and the common
// not-a-number spellings are missing.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// ReadMatrixCSV reads back a matrix CSV written by the exporter: first column
// holds the row identifiers, the header row holds the sample identifiers, and
// empty cells are missing.
func ReadMatrixCSV(path string) (*Matrix, error) {
	headers, records, err := loadDelimited(path, ',')
	if err != nil {
		return nil, fmt.Errorf("read matrix csv %s: %w", path, err)
	}
	if len(headers) < 1 {
		return nil, fmt.Errorf("read matrix csv %s: missing header row", path)
	}
	cols := headers[1:]
	rows := make([]string, 0, len(records))
	for _, rec := range records {
		if len(rec) == 0 {
			continue
		}
		rows = append(rows, rec[0])
	}
	m := NewMatrix(rows, cols)
	for r, rec := range records {
		for c := range cols {
			if c+1 >= len(rec) {
				continue
			}
			if v, ok := parseCell(rec[c+1]); ok {
				m.Set(r, c, v)
			}
		}
	}
	return m, nil
}

// Log2Transform returns a copy of the matrix with every positive cell
// replaced by its base-2 logarithm. Non-positive cells cannot be
// log-transformed and become missing; the count of such cells is returned.
func Log2Transform(m *Matrix, logger *slog.Logger) (*Matrix, int) {
	if logger == nil {
		logger = slog.Default()
	}
	out := m.Clone()
	dropped := 0
	for i := range out.Data {
		for j := range out.Data[i] {
			if out.IsMissing(i, j) {
				continue
			}
			if v := out.At(i, j); v > 0 {
				out.Set(i, j, math.Log2(v))
			} else {
				out.SetMissing(i, j)
				dropped++
			}
		}
	}
	if dropped > 0 {
		logger.Warn("non-positive intensities set to missing during log2 transform",
			slog.Int("count", dropped))
	}
	return out, dropped
}
