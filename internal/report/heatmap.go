package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"msimpute/internal/dataset"
)

// maskGrid adapts a matrix's missingness mask to plotter.GridXYZ. Z is 1 for
// a missing cell and 0 for a present one; row 0 renders at the top so the
// image reads like the CSV.
type maskGrid struct {
	m *dataset.Matrix
}

func (g maskGrid) Dims() (c, r int) { return len(g.m.Cols), len(g.m.Rows) }

func (g maskGrid) Z(c, r int) float64 {
	if g.m.IsMissing(len(g.m.Rows)-1-r, c) {
		return 1
	}
	return 0
}

func (g maskGrid) X(c int) float64 { return float64(c) }
func (g maskGrid) Y(r int) float64 { return float64(r) }

// RenderMissingMap renders the missingness positions of a matrix as a PNG
// heatmap at path.
func RenderMissingMap(m *dataset.Matrix, title, path string) error {
	if m.IsEmpty() {
		return fmt.Errorf("render missing map %s: matrix is empty", path)
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "feature"

	hm := plotter.NewHeatMap(maskGrid{m: m}, moreland.SmoothBlueRed().Palette(255))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	if err := p.Save(16*vg.Centimeter, 12*vg.Centimeter, path); err != nil {
		return fmt.Errorf("save heatmap %s: %w", path, err)
	}
	return nil
}
