package report

import (
	"fmt"
	"math"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	diErrors "github.com/ezoic/docimportance/pkg/errors"
	"github.com/ezoic/docimportance/treestats"
)

// PlotLeafValues saves a scatter plot of the final-iteration leaf values of
// every tree to path; the format follows the file extension (png, svg, pdf).
// Non-finite values are left out.
func PlotLeafValues(stats []treestats.TreeStatistics, path string) error {
	var pts plotter.XYs
	skipped := 0
	for treeID := range stats {
		ts := &stats[treeID]
		if ts.Iterations() == 0 {
			continue
		}
		for _, v := range ts.LeafValues[ts.Iterations()-1] {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				skipped++
				continue
			}
			pts = append(pts, plotter.XY{X: float64(treeID), Y: v})
		}
	}
	if len(pts) == 0 {
		return diErrors.NewModelError("report.PlotLeafValues", "no finite leaf values", diErrors.ErrEmptyData)
	}

	p := plot.New()
	p.Title.Text = "Final leaf values per tree"
	if skipped > 0 {
		p.Title.Text += fmt.Sprintf(" (%d non-finite omitted)", skipped)
	}
	p.X.Label.Text = "Tree"
	p.Y.Label.Text = "Leaf value"
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return diErrors.Wrap(err, "create scatter plot")
	}
	scatter.Color = plotter.DefaultLineStyle.Color
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, filepath.Clean(path)); err != nil {
		return diErrors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
