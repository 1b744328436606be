/*
 * plot.go, part of gomembrane.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/


//Package render draws the histograms and fits, the moduli, and a movie of
//the membrane surface.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rmera/gomembrane/moduli"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

//FitPlot saves to filename a plot of the histogram of F as a probability
//density, and the fitted curve, if the fit succeeded. The x values are multiplied
//by xscale (e.g. to plot angles in degrees) while the density remains per unscaled unit.
func FitPlot(F *moduli.Fit, xscale float64, xlabel, filename string) error {
	if F == nil || F.Histogram == nil {
		return fmt.Errorf("gomembrane/render: nothing to plot in %s", filename)
	}
	if xscale == 0 {
		xscale = 1
	}
	x := F.Histogram.BinCenters()
	y := F.Histogram.Density()
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i] * xscale
		pts[i].Y = y[i]
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s (%s)", F.Kind, F.Label, F.Status)
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "P"
	p.Add(plotter.NewGrid())
	if err := plotutil.AddLinePoints(p, "histogram", pts); err != nil {
		return err
	}
	if F.Status == moduli.OK {
		f := plotter.NewFunction(func(v float64) float64 { return F.Model(v / xscale) })
		f.XMin, f.XMax = pts[0].X, pts[len(pts)-1].X
		f.Samples = 4 * len(pts)
		f.Color = color.RGBA{R: 255, A: 255}
		f.Width = vg.Points(2)
		p.Add(f)
		p.Legend.Add(fmt.Sprintf("fit %.3g", F.Modulus), f)
	}
	if max := maxFinite(y); max > 0 {
		p.Y.Min, p.Y.Max = 0, 1.1*max
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, filename)
}

func maxFinite(v []float64) float64 {
	max := math.Inf(-1)
	for _, f := range v {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f > max {
			max = f
		}
	}
	return max
}
