// Package trajplot renders rolled-out trajectories, either as a PNG of the
// planar position trace or as a terminal graph of a single state channel.
package trajplot

import (
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ltvtools/dyngame/simulate"
)

// SavePNG writes the XY position trace of the trajectory to path, pulling
// the position out of the state through the xy indices (see
// dynsys.LTISystem.XYIndex).
func SavePNG(path string, tr *simulate.Trajectory, xy [2]int) error {
	p := plot.New()
	p.Title.Text = "trajectory"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	xs, ys := tr.XY(xy)
	pts := make(plotter.XYs, len(xs))
	for i := range pts {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

// Ascii renders one state channel of the trajectory as a terminal graph.
func Ascii(tr *simulate.Trajectory, channel int, caption string) string {
	return asciigraph.Plot(tr.Channel(channel),
		asciigraph.Height(10),
		asciigraph.Width(72),
		asciigraph.Caption(caption),
	)
}
