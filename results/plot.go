package results

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotSuccessRate draws success rate against environment steps for a
// set of runs, one line per run, and saves the figure as PNG.
func PlotSuccessRate(runs map[string][]Record, plotPath string) error {
	p := plot.New()
	p.Title.Text = "Success rate"
	p.X.Label.Text = "Environment steps"
	p.Y.Label.Text = "Success rate"
	p.Y.Min, p.Y.Max = 0, 1

	i := 0
	for name, records := range runs {
		points := make(plotter.XYs, len(records))
		for j, rec := range records {
			points[j] = plotter.XY{
				X: float64(rec.NSteps),
				Y: rec.SuccessRate,
			}
		}
		line, err := plotter.NewLine(points)
		if err != nil {
			return fmt.Errorf("plotting %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
		i++
	}

	if err := p.Save(8*vg.Inch, 8*vg.Inch, plotPath); err != nil {
		return fmt.Errorf("saving plot: %w", err)
	}
	return nil
}
