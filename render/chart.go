/*
 * chart.go, part of gomembrane.
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


package render

import (
	"fmt"
	"math"
	"os"

	"github.com/rmera/gomembrane/moduli"
	chart "github.com/wcharczuk/go-chart/v2"
)

//ModuliChart saves a bar chart of the successful tilt fits, and the overall tilt
//modulus, to filename. It returns false, and writes nothing, if there is no finite modulus to show.
func ModuliChart(R *moduli.Report, filename string) (bool, error) {
	var bars []chart.Value
	for _, k := range R.TiltLabels() {
		F := R.Tilt[k]
		if F.Status == moduli.OK {
			bars = append(bars, chart.Value{Value: F.Modulus, Label: k})
		}
	}
	if O := R.Overall; O.Status == moduli.OK && !math.IsInf(O.Modulus, 0) {
		bars = append(bars, chart.Value{Value: O.Modulus, Label: "overall"})
	}
	if len(bars) == 0 {
		return false, nil
	}
	if len(bars) == 1 {
		//go-chart needs a range to draw.
		bars = append(bars, chart.Value{Value: 0, Label: " "})
	}
	graph := chart.BarChart{
		Title:      "Tilt moduli (kBT/rad^2)",
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		Height:     400,
		Width:      120 * (len(bars) + 1),
		BarWidth:   60,
		Bars:       bars,
	}
	f, err := os.Create(filename)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return false, fmt.Errorf("gomembrane/render: moduli chart: %w", err)
	}
	return true, nil
}
