package dataset

import (
	"fmt"
	"math"
)

// Matrix is a feature-by-sample intensity table. Rows are protein group
// identifiers, Cols are sample identifiers, and Data is row-major with NaN
// marking a missing cell.
type Matrix struct {
	Rows []string
	Cols []string
	Data [][]float64
}

// NewMatrix creates a matrix of the given shape with every cell missing.
func NewMatrix(rows, cols []string) *Matrix {
	data := make([][]float64, len(rows))
	for i := range data {
		data[i] = make([]float64, len(cols))
		for j := range data[i] {
			data[i][j] = math.NaN()
		}
	}
	return &Matrix{
		Rows: append([]string(nil), rows...),
		Cols: append([]string(nil), cols...),
		Data: data,
	}
}

// Shape returns the number of rows and columns.
func (m *Matrix) Shape() (int, int) {
	return len(m.Rows), len(m.Cols)
}

// IsEmpty reports whether the matrix has no rows or no columns.
func (m *Matrix) IsEmpty() bool {
	return len(m.Rows) == 0 || len(m.Cols) == 0
}

// At returns the value at (i, j). NaN means missing.
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i][j]
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.Data[i][j] = v
}

// IsMissing reports whether the cell at (i, j) is absent.
func (m *Matrix) IsMissing(i, j int) bool {
	return math.IsNaN(m.Data[i][j])
}

// SetMissing marks the cell at (i, j) as absent.
func (m *Matrix) SetMissing(i, j int) {
	m.Data[i][j] = math.NaN()
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		Rows: append([]string(nil), m.Rows...),
		Cols: append([]string(nil), m.Cols...),
		Data: make([][]float64, len(m.Data)),
	}
	for i, row := range m.Data {
		c.Data[i] = append([]float64(nil), row...)
	}
	return c
}

// PresentCount returns the number of cells holding a measured value.
func (m *Matrix) PresentCount() int {
	n := 0
	for i := range m.Data {
		for j := range m.Data[i] {
			if !m.IsMissing(i, j) {
				n++
			}
		}
	}
	return n
}

// MissingCount returns the number of absent cells.
func (m *Matrix) MissingCount() int {
	rows, cols := m.Shape()
	return rows*cols - m.PresentCount()
}

// MissingFraction returns the fraction of absent cells, or 0 for an empty
// matrix.
func (m *Matrix) MissingFraction() float64 {
	rows, cols := m.Shape()
	total := rows * cols
	if total == 0 {
		return 0
	}
	return float64(m.MissingCount()) / float64(total)
}

// RowMissingFraction returns the fraction of absent cells in row i.
func (m *Matrix) RowMissingFraction(i int) float64 {
	if len(m.Cols) == 0 {
		return 0
	}
	missing := 0
	for j := range m.Cols {
		if m.IsMissing(i, j) {
			missing++
		}
	}
	return float64(missing) / float64(len(m.Cols))
}

// RowPresent returns the present values of row i in column order.
func (m *Matrix) RowPresent(i int) []float64 {
	var vals []float64
	for j := range m.Cols {
		if !m.IsMissing(i, j) {
			vals = append(vals, m.Data[i][j])
		}
	}
	return vals
}

// ColumnPresent returns the present values of column j in row order.
func (m *Matrix) ColumnPresent(j int) []float64 {
	var vals []float64
	for i := range m.Rows {
		if !m.IsMissing(i, j) {
			vals = append(vals, m.Data[i][j])
		}
	}
	return vals
}

// PresentValues returns every present cell value in row-major order.
func (m *Matrix) PresentValues() []float64 {
	var vals []float64
	for i := range m.Data {
		for j := range m.Data[i] {
			if !m.IsMissing(i, j) {
				vals = append(vals, m.Data[i][j])
			}
		}
	}
	return vals
}

// SelectRows returns a new matrix containing only the rows whose indices are
// listed, in the given order.
func (m *Matrix) SelectRows(indices []int) (*Matrix, error) {
	sel := &Matrix{
		Cols: append([]string(nil), m.Cols...),
	}
	for _, i := range indices {
		if i < 0 || i >= len(m.Rows) {
			return nil, fmt.Errorf("select rows: index %d out of range [0, %d)", i, len(m.Rows))
		}
		sel.Rows = append(sel.Rows, m.Rows[i])
		sel.Data = append(sel.Data, append([]float64(nil), m.Data[i]...))
	}
	return sel, nil
}
